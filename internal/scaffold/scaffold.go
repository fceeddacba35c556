// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scaffold generates Drupal module skeletons: the .info.yml
// metadata file, a .module stub with requested hook implementations,
// and optional routing and services definitions.
package scaffold

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/template"

	yaml "github.com/goccy/go-yaml"
)

// machineNamePattern is Drupal's extension machine name rule.
var machineNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reserved machine names that would shadow core extensions.
var reservedNames = map[string]bool{
	"system": true, "node": true, "user": true, "field": true,
	"views": true, "taxonomy": true, "file": true, "text": true,
}

// Options describe the module to generate.
type Options struct {
	// Machine is the module machine name, e.g. "my_module".
	Machine string
	// Name is the human-readable name. Defaults to a title-cased Machine.
	Name string
	// Description is the .info.yml description line.
	Description string
	// Package groups the module on the extensions page.
	Package string
	// CoreVersion is the core_version_requirement constraint.
	CoreVersion string
	// Dependencies lists required modules, e.g. "drupal:node".
	Dependencies []string
	// Hooks lists hook names to stub, with or without the "hook_" prefix.
	Hooks []string
	// WithRouting adds a settings route and controller-less form stub.
	WithRouting bool
	// WithServices adds a services.yml with one injectable service.
	WithServices bool
}

// infoFile is the marshal shape of the .info.yml file.
type infoFile struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	Description  string   `yaml:"description,omitempty"`
	Package      string   `yaml:"package,omitempty"`
	CoreVersion  string   `yaml:"core_version_requirement"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

var moduleTemplate = template.Must(template.New("module").Parse(`<?php

/**
 * @file
 * Hook implementations for the {{.Name}} module.
 */

{{range .Hooks}}/**
 * Implements {{.Hook}}().
 */
function {{.Function}}({{.Params}}) {
  // TODO: implement {{.Hook}} for {{$.Machine}}.
}

{{end}}`))

var routingTemplate = template.Must(template.New("routing").Parse(`{{.Machine}}.settings:
  path: '/admin/config/system/{{.Machine}}'
  defaults:
    _form: '\Drupal\{{.Machine}}\Form\SettingsForm'
    _title: '{{.Name}} settings'
  requirements:
    _permission: 'administer site configuration'
`))

var servicesTemplate = template.Must(template.New("services").Parse(`services:
  {{.Machine}}.manager:
    class: Drupal\{{.Machine}}\{{.ClassName}}Manager
    arguments: ['@entity_type.manager', '@logger.factory']
`))

// hookParams maps well-known hooks to their stub signatures. Hooks not
// listed here get an empty parameter list.
var hookParams = map[string]string{
	"hook_form_alter":     `&$form, \Drupal\Core\Form\FormStateInterface $form_state, $form_id`,
	"hook_entity_presave": `\Drupal\Core\Entity\EntityInterface $entity`,
	"hook_entity_insert":  `\Drupal\Core\Entity\EntityInterface $entity`,
	"hook_entity_update":  `\Drupal\Core\Entity\EntityInterface $entity`,
	"hook_entity_delete":  `\Drupal\Core\Entity\EntityInterface $entity`,
	"hook_theme":          `$existing, $type, $theme, $path`,
	"hook_help":           `$route_name, \Drupal\Core\Routing\RouteMatchInterface $route_match`,
}

// Generate produces the skeleton as a map of relative file path to
// content.
func Generate(opts Options) (map[string]string, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = titleCase(opts.Machine)
	}
	core := opts.CoreVersion
	if core == "" {
		core = "^10 || ^11"
	}

	files := make(map[string]string)

	info, err := yaml.Marshal(infoFile{
		Name:         name,
		Type:         "module",
		Description:  opts.Description,
		Package:      opts.Package,
		CoreVersion:  core,
		Dependencies: opts.Dependencies,
	})
	if err != nil {
		return nil, fmt.Errorf("scaffold: marshal info file: %w", err)
	}
	files[opts.Machine+".info.yml"] = string(info)

	if len(opts.Hooks) > 0 {
		body, err := renderModuleFile(opts.Machine, name, opts.Hooks)
		if err != nil {
			return nil, err
		}
		files[opts.Machine+".module"] = body
	}

	ctx := struct {
		Machine, Name, ClassName string
	}{opts.Machine, name, strings.ReplaceAll(titleCase(opts.Machine), " ", "")}

	if opts.WithRouting {
		var buf bytes.Buffer
		if err := routingTemplate.Execute(&buf, ctx); err != nil {
			return nil, fmt.Errorf("scaffold: render routing: %w", err)
		}
		files[opts.Machine+".routing.yml"] = buf.String()
	}

	if opts.WithServices {
		var buf bytes.Buffer
		if err := servicesTemplate.Execute(&buf, ctx); err != nil {
			return nil, fmt.Errorf("scaffold: render services: %w", err)
		}
		files[opts.Machine+".services.yml"] = buf.String()
	}

	return files, nil
}

// GenerateHookImplementation renders a single hook stub for an existing
// module, e.g. for pasting into its .module file.
func GenerateHookImplementation(machine, hook string) (string, error) {
	if !machineNamePattern.MatchString(machine) {
		return "", fmt.Errorf("scaffold: invalid machine name %q", machine)
	}
	h := normalizeHook(hook)
	var buf bytes.Buffer
	err := moduleTemplate.Execute(&buf, struct {
		Name    string
		Machine string
		Hooks   []hookStub
	}{titleCase(machine), machine, []hookStub{newHookStub(machine, h)}})
	if err != nil {
		return "", fmt.Errorf("scaffold: render hook: %w", err)
	}
	// Drop the @file header; the caller pastes into an existing file.
	body := buf.String()
	if i := strings.Index(body, "/**\n * Implements"); i >= 0 {
		body = body[i:]
	}
	return body, nil
}

type hookStub struct {
	Hook     string
	Function string
	Params   string
}

func newHookStub(machine, hook string) hookStub {
	return hookStub{
		Hook:     hook,
		Function: machine + "_" + strings.TrimPrefix(hook, "hook_"),
		Params:   hookParams[hook],
	}
}

func renderModuleFile(machine, name string, hooks []string) (string, error) {
	stubs := make([]hookStub, 0, len(hooks))
	seen := make(map[string]bool)
	for _, h := range hooks {
		h = normalizeHook(h)
		if seen[h] {
			continue
		}
		seen[h] = true
		stubs = append(stubs, newHookStub(machine, h))
	}
	sort.Slice(stubs, func(i, j int) bool { return stubs[i].Hook < stubs[j].Hook })

	var buf bytes.Buffer
	err := moduleTemplate.Execute(&buf, struct {
		Name    string
		Machine string
		Hooks   []hookStub
	}{name, machine, stubs})
	if err != nil {
		return "", fmt.Errorf("scaffold: render module file: %w", err)
	}
	return buf.String(), nil
}

func validate(opts Options) error {
	if !machineNamePattern.MatchString(opts.Machine) {
		return fmt.Errorf("scaffold: invalid machine name %q (lowercase letters, digits and underscores, starting with a letter)", opts.Machine)
	}
	if len(opts.Machine) > 50 {
		return fmt.Errorf("scaffold: machine name %q exceeds 50 characters", opts.Machine)
	}
	if reservedNames[opts.Machine] {
		return fmt.Errorf("scaffold: machine name %q is reserved by core", opts.Machine)
	}
	return nil
}

func normalizeHook(hook string) string {
	hook = strings.TrimSpace(hook)
	if !strings.HasPrefix(hook, "hook_") {
		hook = "hook_" + hook
	}
	return hook
}

func titleCase(machine string) string {
	words := strings.Split(machine, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
