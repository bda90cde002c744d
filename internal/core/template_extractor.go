package core

import (
	"regexp"
	"slices"
	"strings"

	"ccpatch/internal/core/domain"
)

// BuiltinVariable is provided by the topology controller and never declared.
const BuiltinVariable = "builtin"

// actionRegex matches a template action such as {{ .foo }} or {{- range .foo }}.
var actionRegex = regexp.MustCompile(`(?s)\{\{-?(.*?)-?\}\}`)

// fieldRegex matches a field of dot, e.g. .kubeAPIOptions in (index .kubeAPIOptions 0).
var fieldRegex = regexp.MustCompile(`(?:^|[\s(|])\.([A-Za-z_][A-Za-z0-9_]*)`)

// rootFieldRegex matches a field of the root data, e.g. $.kubeAPIOptions.
var rootFieldRegex = regexp.MustCompile(`\$\.([A-Za-z_][A-Za-z0-9_]*)`)

// ExtractTemplateVariables returns the top level variables a template reads,
// sorted. Inside range and with blocks dot is rebound, so only $ references
// count there.
func ExtractTemplateVariables(template string) []string {
	seen := make(map[string]bool)
	var rebinding []bool

	for _, match := range actionRegex.FindAllStringSubmatch(template, -1) {
		action := strings.TrimSpace(match[1])
		first := ""
		if fields := strings.Fields(action); len(fields) > 0 {
			first = fields[0]
		}

		if first == "end" {
			if len(rebinding) > 0 {
				rebinding = rebinding[:len(rebinding)-1]
			}
			continue
		}

		if !slices.Contains(rebinding, true) {
			for _, field := range fieldRegex.FindAllStringSubmatch(action, -1) {
				seen[field[1]] = true
			}
		}
		for _, field := range rootFieldRegex.FindAllStringSubmatch(action, -1) {
			seen[field[1]] = true
		}

		switch first {
		case "range", "with":
			rebinding = append(rebinding, true)
		case "if", "block", "define":
			rebinding = append(rebinding, false)
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ExtractPatchVariables returns the top level variables a patch reads through
// enabledIf, templates and variable references, sorted.
func ExtractPatchVariables(patch domain.Patch) []string {
	seen := make(map[string]bool)
	collect := func(names ...string) {
		for _, name := range names {
			seen[name] = true
		}
	}

	if patch.EnabledIf != nil {
		collect(ExtractTemplateVariables(*patch.EnabledIf)...)
	}
	for _, definition := range patch.Definitions {
		for _, op := range definition.JSONPatches {
			switch payload := op.Payload.(type) {
			case domain.Template:
				collect(ExtractTemplateVariables(payload.Template)...)
			case domain.VariableRef:
				if name, _, _ := strings.Cut(payload.Variable, "."); name != "" {
					name, _, _ = strings.Cut(name, "[")
					collect(name)
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// UndeclaredVariables lists, per patch name, the variables the patch reads that
// none of variables declares.
func UndeclaredVariables(patches []domain.Patch, variables []domain.Variable) map[string][]string {
	declared := map[string]bool{BuiltinVariable: true}
	for _, v := range variables {
		declared[v.Name] = true
	}

	result := make(map[string][]string)
	for _, patch := range patches {
		for _, name := range ExtractPatchVariables(patch) {
			if !declared[name] {
				result[patch.Name] = append(result[patch.Name], name)
			}
		}
	}
	return result
}
