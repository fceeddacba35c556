// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mode

import (
	"fmt"
	"sort"
)

// Category classifies a tool by the data source it needs.
type Category string

const (
	// CategoryLive marks tools that operate on the live backend and have
	// no documentation fallback.
	CategoryLive Category = "live"

	// CategoryDocs marks tools answered entirely from static or remote
	// documentation data.
	CategoryDocs Category = "docs"

	// CategoryHybrid marks tools that can combine both sources. Names
	// absent from the registry are treated as hybrid-eligible so the
	// router degrades gracefully instead of rejecting unknown tools.
	CategoryHybrid Category = "hybrid"
)

// Registry is the static classification of tool names into categories.
// It is populated at startup and validated before the coordinator starts
// routing, so a misclassified name fails early instead of silently
// defaulting at runtime.
type Registry struct {
	categories map[string]Category
}

// liveTools are CRUD, admin, configuration and cache operations against
// the Drupal backend.
var liveTools = []string{
	"get_node",
	"create_node",
	"update_node",
	"delete_node",
	"list_nodes",
	"get_user",
	"create_user",
	"update_user",
	"delete_user",
	"get_taxonomy_term",
	"create_taxonomy_term",
	"list_content_types",
	"get_site_info",
	"get_module_list",
	"enable_module",
	"disable_module",
	"clear_cache",
	"execute_query",
	"get_watchdog_logs",
}

// docsTools are search, lookup, analysis and scaffolding operations over
// static or remote documentation sources.
var docsTools = []string{
	"search_drupal_functions",
	"search_drupal_hooks",
	"search_drupal_classes",
	"search_drupal_topics",
	"get_function_details",
	"get_hook_details",
	"get_class_details",
	"search_contrib_modules",
	"analyze_module",
	"analyze_theme",
	"find_code_examples",
	"generate_module_skeleton",
	"generate_hook_implementation",
}

// NewRegistry builds the default tool registry.
func NewRegistry() *Registry {
	r := &Registry{categories: make(map[string]Category, len(liveTools)+len(docsTools))}
	for _, name := range liveTools {
		r.categories[name] = CategoryLive
	}
	for _, name := range docsTools {
		r.categories[name] = CategoryDocs
	}
	return r
}

// Register adds or reclassifies a tool name.
func (r *Registry) Register(name string, cat Category) error {
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	switch cat {
	case CategoryLive, CategoryDocs, CategoryHybrid:
	default:
		return fmt.Errorf("unknown category %q for tool %s", cat, name)
	}
	r.categories[name] = cat
	return nil
}

// Category returns the classification for a tool name. Unregistered
// names are hybrid-eligible.
func (r *Registry) Category(name string) Category {
	if cat, ok := r.categories[name]; ok {
		return cat
	}
	return CategoryHybrid
}

// Tools returns the sorted names registered under a category.
func (r *Registry) Tools(cat Category) []string {
	var names []string
	for name, c := range r.categories {
		if c == cat {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.categories)
}

// Validate checks every entry for an empty name or an unknown category.
// The live and docs sets are disjoint by construction (one map), so only
// the value domain needs checking.
func (r *Registry) Validate() error {
	for name, cat := range r.categories {
		if name == "" {
			return fmt.Errorf("registry contains an empty tool name")
		}
		switch cat {
		case CategoryLive, CategoryDocs, CategoryHybrid:
		default:
			return fmt.Errorf("tool %s has unknown category %q", name, cat)
		}
	}
	return nil
}
