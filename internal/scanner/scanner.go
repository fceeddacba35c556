// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scanner analyzes Drupal module and theme source trees with
// regular expressions. It extracts hook implementations, function
// definitions, declared services and routes, and flags calls to known
// deprecated functions.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// phpExtensions are the file types scanned for PHP-level constructs.
var phpExtensions = map[string]bool{
	".module":  true,
	".install": true,
	".inc":     true,
	".php":     true,
	".theme":   true,
}

var (
	functionPattern = regexp.MustCompile(`(?m)^\s*function\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	classPattern    = regexp.MustCompile(`(?m)^\s*(?:final\s+|abstract\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// HookImplementation is a detected MODULE_hook() function.
type HookImplementation struct {
	Hook     string `json:"hook"`
	Function string `json:"function"`
	File     string `json:"file"`
}

// DeprecatedCall flags a call site of a function the docs index marks
// as deprecated.
type DeprecatedCall struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Info mirrors the subset of the .info.yml file the analyzer reports.
type Info struct {
	Name         string   `yaml:"name" json:"name"`
	Type         string   `yaml:"type" json:"type"`
	Description  string   `yaml:"description" json:"description"`
	Package      string   `yaml:"package" json:"package,omitempty"`
	CoreVersion  string   `yaml:"core_version_requirement" json:"core_version_requirement,omitempty"`
	Dependencies []string `yaml:"dependencies" json:"dependencies,omitempty"`
}

// Report is the analysis result for one extension directory.
type Report struct {
	Machine         string               `json:"machine"`
	Info            *Info                `json:"info,omitempty"`
	Hooks           []HookImplementation `json:"hooks"`
	Functions       []string             `json:"functions"`
	Classes         []string             `json:"classes"`
	Services        []string             `json:"services"`
	Routes          []string             `json:"routes"`
	Permissions     []string             `json:"permissions"`
	DeprecatedCalls []DeprecatedCall     `json:"deprecated_calls"`
	FilesScanned    int                  `json:"files_scanned"`

	fnFiles map[string]string
}

// Analyzer scans extension source trees. Deprecated holds function
// names whose call sites should be flagged.
type Analyzer struct {
	deprecated     []string
	deprecatedCall *regexp.Regexp
}

// NewAnalyzer builds an analyzer. deprecated may be empty.
func NewAnalyzer(deprecated []string) *Analyzer {
	a := &Analyzer{deprecated: deprecated}
	if len(deprecated) > 0 {
		quoted := make([]string, len(deprecated))
		for i, name := range deprecated {
			quoted[i] = regexp.QuoteMeta(name)
		}
		a.deprecatedCall = regexp.MustCompile(`(?m)(?:^|[^a-zA-Z0-9_>$])(` + strings.Join(quoted, "|") + `)\s*\(`)
	}
	return a
}

// AnalyzeDir walks an extension directory and produces a report. The
// extension's machine name is taken from the .info.yml file name.
func (a *Analyzer) AnalyzeDir(root string) (*Report, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}

	report := &Report{
		Machine: filepath.Base(root),
		fnFiles: make(map[string]string),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Vendored code inside an extension is not the extension's own.
			if d.Name() == "vendor" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		name := d.Name()

		switch {
		case strings.HasSuffix(name, ".info.yml"):
			report.Machine = strings.TrimSuffix(name, ".info.yml")
			a.scanInfoFile(path, report)
		case strings.HasSuffix(name, ".services.yml"):
			a.scanTopLevelKeys(path, "services", &report.Services)
			report.FilesScanned++
		case strings.HasSuffix(name, ".routing.yml"):
			a.scanRootKeys(path, &report.Routes)
			report.FilesScanned++
		case strings.HasSuffix(name, ".permissions.yml"):
			a.scanRootKeys(path, &report.Permissions)
			report.FilesScanned++
		case phpExtensions[filepath.Ext(name)]:
			a.scanPHPFile(path, rel, report)
			report.FilesScanned++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanner: walk %s: %w", root, err)
	}

	a.classifyHooks(report)
	sort.Strings(report.Functions)
	sort.Strings(report.Classes)
	sort.Strings(report.Services)
	sort.Strings(report.Routes)
	sort.Strings(report.Permissions)
	return report, nil
}

func (a *Analyzer) scanInfoFile(path string, report *Report) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("scanner: read %s: %v", path, err)
		return
	}
	var info Info
	if err := yaml.Unmarshal(data, &info); err != nil {
		log.Debugf("scanner: parse %s: %v", path, err)
		return
	}
	report.Info = &info
	report.FilesScanned++
}

// scanRootKeys collects the top-level mapping keys of a YAML file,
// which is how routing and permissions files name their entries.
func (a *Analyzer) scanRootKeys(path string, out *[]string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("scanner: read %s: %v", path, err)
		return
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Debugf("scanner: parse %s: %v", path, err)
		return
	}
	for key := range doc {
		*out = append(*out, key)
	}
}

// scanTopLevelKeys collects the keys nested under one top-level section,
// e.g. the service IDs under "services:".
func (a *Analyzer) scanTopLevelKeys(path, section string, out *[]string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("scanner: read %s: %v", path, err)
		return
	}
	var doc map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Debugf("scanner: parse %s: %v", path, err)
		return
	}
	for key := range doc[section] {
		*out = append(*out, key)
	}
}

func (a *Analyzer) scanPHPFile(path, rel string, report *Report) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("scanner: read %s: %v", path, err)
		return
	}
	src := string(data)

	for _, m := range functionPattern.FindAllStringSubmatch(src, -1) {
		report.Functions = append(report.Functions, m[1])
		report.fnFiles[m[1]] = rel
	}
	for _, m := range classPattern.FindAllStringSubmatch(src, -1) {
		report.Classes = append(report.Classes, m[1])
	}

	if a.deprecatedCall != nil {
		defined := make(map[string]bool)
		for _, m := range functionPattern.FindAllStringSubmatch(src, -1) {
			defined[m[1]] = true
		}
		for _, loc := range a.deprecatedCall.FindAllStringSubmatchIndex(src, -1) {
			name := src[loc[2]:loc[3]]
			if defined[name] {
				continue
			}
			report.DeprecatedCalls = append(report.DeprecatedCalls, DeprecatedCall{
				Function: name,
				File:     rel,
				Line:     1 + strings.Count(src[:loc[2]], "\n"),
			})
		}
	}
}

// classifyHooks splits the collected function names into hook
// implementations (MODULE_hook pattern) and plain functions.
func (a *Analyzer) classifyHooks(report *Report) {
	prefix := report.Machine + "_"
	var plain []string
	seen := make(map[string]bool)
	for _, fn := range report.Functions {
		if seen[fn] {
			continue
		}
		seen[fn] = true
		if strings.HasPrefix(fn, prefix) && len(fn) > len(prefix) {
			report.Hooks = append(report.Hooks, HookImplementation{
				Hook:     "hook_" + strings.TrimPrefix(fn, prefix),
				Function: fn,
				File:     report.fnFiles[fn],
			})
			continue
		}
		plain = append(plain, fn)
	}
	report.Functions = plain
	sort.Slice(report.Hooks, func(i, j int) bool { return report.Hooks[i].Hook < report.Hooks[j].Hook })
}
