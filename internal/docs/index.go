// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package docs serves the offline Drupal API documentation: a static
// index of core functions, hooks, classes and topics embedded into the
// binary, plus an optional SQLite-backed cache for rendered pages.
package docs

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// FunctionDoc describes one documented core API function.
type FunctionDoc struct {
	Name        string   `yaml:"name" json:"name"`
	Signature   string   `yaml:"signature" json:"signature"`
	Module      string   `yaml:"module" json:"module"`
	Since       string   `yaml:"since" json:"since"`
	Description string   `yaml:"description" json:"description"`
	Deprecated  string   `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	SeeAlso     []string `yaml:"see-also,omitempty" json:"see_also,omitempty"`
}

// HookDoc describes one documented hook.
type HookDoc struct {
	Name        string `yaml:"name" json:"name"`
	Group       string `yaml:"group" json:"group"`
	Description string `yaml:"description" json:"description"`
	Example     string `yaml:"example,omitempty" json:"example,omitempty"`
}

// ClassDoc describes one documented core class or interface.
type ClassDoc struct {
	Name        string   `yaml:"name" json:"name"`
	Namespace   string   `yaml:"namespace" json:"namespace"`
	Kind        string   `yaml:"kind" json:"kind"`
	Description string   `yaml:"description" json:"description"`
	Methods     []string `yaml:"methods,omitempty" json:"methods,omitempty"`
}

// Topic is a documentation guide page.
type Topic struct {
	Slug    string `yaml:"slug" json:"slug"`
	Title   string `yaml:"title" json:"title"`
	Summary string `yaml:"summary" json:"summary"`
	Body    string `yaml:"body" json:"body"`
}

// ContribModule describes a contributed module known to the index.
type ContribModule struct {
	Machine     string `yaml:"machine" json:"machine"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Recommended bool   `yaml:"recommended" json:"recommended"`
}

// CodeExample is a small runnable snippet tied to an API element.
type CodeExample struct {
	Title   string   `yaml:"title" json:"title"`
	Related []string `yaml:"related" json:"related"`
	Code    string   `yaml:"code" json:"code"`
}

// Index is the in-memory documentation index. It is immutable after
// load and safe for concurrent use.
type Index struct {
	functions []FunctionDoc
	hooks     []HookDoc
	classes   []ClassDoc
	topics    []Topic
	contrib   []ContribModule
	examples  []CodeExample

	functionsByName map[string]*FunctionDoc
	hooksByName     map[string]*HookDoc
	classesByName   map[string]*ClassDoc
}

// LoadIndex parses the embedded documentation data.
func LoadIndex() (*Index, error) {
	idx := &Index{
		functionsByName: make(map[string]*FunctionDoc),
		hooksByName:     make(map[string]*HookDoc),
		classesByName:   make(map[string]*ClassDoc),
	}

	if err := loadYAML("data/functions.yaml", &idx.functions); err != nil {
		return nil, err
	}
	if err := loadYAML("data/hooks.yaml", &idx.hooks); err != nil {
		return nil, err
	}
	if err := loadYAML("data/classes.yaml", &idx.classes); err != nil {
		return nil, err
	}
	if err := loadYAML("data/topics.yaml", &idx.topics); err != nil {
		return nil, err
	}
	if err := loadYAML("data/contrib.yaml", &idx.contrib); err != nil {
		return nil, err
	}
	if err := loadYAML("data/examples.yaml", &idx.examples); err != nil {
		return nil, err
	}

	for i := range idx.functions {
		idx.functionsByName[idx.functions[i].Name] = &idx.functions[i]
	}
	for i := range idx.hooks {
		idx.hooksByName[idx.hooks[i].Name] = &idx.hooks[i]
	}
	for i := range idx.classes {
		idx.classesByName[idx.classes[i].Name] = &idx.classes[i]
	}

	return idx, nil
}

func loadYAML(path string, out interface{}) error {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("docs: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("docs: parse %s: %w", path, err)
	}
	return nil
}

// DeprecatedFunctions lists the names of indexed functions carrying a
// deprecation notice. The source scanner flags calls to these.
func (idx *Index) DeprecatedFunctions() []string {
	var out []string
	for _, f := range idx.functions {
		if f.Deprecated != "" {
			out = append(out, f.Name)
		}
	}
	return out
}

// Counts reports the number of entries per section, keyed by section name.
func (idx *Index) Counts() map[string]int {
	return map[string]int{
		"functions": len(idx.functions),
		"hooks":     len(idx.hooks),
		"classes":   len(idx.classes),
		"topics":    len(idx.topics),
		"contrib":   len(idx.contrib),
		"examples":  len(idx.examples),
	}
}
