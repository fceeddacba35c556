// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package docs

import (
	"sort"
	"strings"
)

// DefaultSearchLimit caps result sets when the caller passes limit <= 0.
const DefaultSearchLimit = 20

// SearchFunctions returns functions whose name or description matches
// the query, exact name matches first.
func (idx *Index) SearchFunctions(query string, limit int) []FunctionDoc {
	q := normalize(query)
	var out []FunctionDoc
	for _, f := range idx.functions {
		if matches(q, f.Name, f.Description, f.Module) {
			out = append(out, f)
		}
	}
	sortByNameMatch(q, out, func(f FunctionDoc) string { return f.Name })
	return capped(out, limit)
}

// SearchHooks returns hooks matching the query. A bare query like
// "form_alter" also matches "hook_form_alter".
func (idx *Index) SearchHooks(query string, limit int) []HookDoc {
	q := normalize(query)
	var out []HookDoc
	for _, h := range idx.hooks {
		if matches(q, h.Name, h.Group, h.Description) ||
			matches("hook_"+q, h.Name) {
			out = append(out, h)
		}
	}
	sortByNameMatch(q, out, func(h HookDoc) string { return h.Name })
	return capped(out, limit)
}

// SearchClasses returns classes and interfaces matching the query by
// name, namespace or description.
func (idx *Index) SearchClasses(query string, limit int) []ClassDoc {
	q := normalize(query)
	var out []ClassDoc
	for _, c := range idx.classes {
		if matches(q, c.Name, c.Namespace, c.Description) {
			out = append(out, c)
		}
	}
	sortByNameMatch(q, out, func(c ClassDoc) string { return c.Name })
	return capped(out, limit)
}

// SearchTopics returns guide topics matching the query.
func (idx *Index) SearchTopics(query string, limit int) []Topic {
	q := normalize(query)
	var out []Topic
	for _, t := range idx.topics {
		if matches(q, t.Slug, t.Title, t.Summary, t.Body) {
			out = append(out, t)
		}
	}
	return capped(out, limit)
}

// SearchContribModules returns contributed modules matching the query.
// An empty query lists the recommended set.
func (idx *Index) SearchContribModules(query string, limit int) []ContribModule {
	q := normalize(query)
	var out []ContribModule
	for _, m := range idx.contrib {
		if q == "" {
			if m.Recommended {
				out = append(out, m)
			}
			continue
		}
		if matches(q, m.Machine, m.Name, m.Description) {
			out = append(out, m)
		}
	}
	return capped(out, limit)
}

// FunctionDetails returns the full entry for an exact function name.
func (idx *Index) FunctionDetails(name string) (*FunctionDoc, bool) {
	f, ok := idx.functionsByName[strings.TrimSpace(name)]
	return f, ok
}

// HookDetails returns the full entry for an exact hook name. The
// "hook_" prefix may be omitted.
func (idx *Index) HookDetails(name string) (*HookDoc, bool) {
	name = strings.TrimSpace(name)
	if h, ok := idx.hooksByName[name]; ok {
		return h, true
	}
	h, ok := idx.hooksByName["hook_"+name]
	return h, ok
}

// ClassDetails returns the full entry for an exact class name. The
// name may be bare or fully namespace-qualified.
func (idx *Index) ClassDetails(name string) (*ClassDoc, bool) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "\\"); i >= 0 {
		name = name[i+1:]
	}
	c, ok := idx.classesByName[name]
	return c, ok
}

// FindCodeExamples returns examples related to the given API element or
// whose title matches the query.
func (idx *Index) FindCodeExamples(query string, limit int) []CodeExample {
	q := normalize(query)
	var out []CodeExample
	for _, e := range idx.examples {
		if matches(q, e.Title) {
			out = append(out, e)
			continue
		}
		for _, rel := range e.Related {
			if normalize(rel) == q || strings.Contains(normalize(rel), q) {
				out = append(out, e)
				break
			}
		}
	}
	return capped(out, limit)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matches reports whether any haystack contains the query. An empty
// query matches nothing.
func matches(q string, haystacks ...string) bool {
	if q == "" {
		return false
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), q) {
			return true
		}
	}
	return false
}

// sortByNameMatch moves exact and prefix name matches ahead of
// substring matches, preserving index order within each class.
func sortByNameMatch[T any](q string, items []T, name func(T) string) {
	rank := func(t T) int {
		n := strings.ToLower(name(t))
		switch {
		case n == q:
			return 0
		case strings.HasPrefix(n, q):
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return rank(items[i]) < rank(items[j]) })
}

func capped[T any](items []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
