package handler

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"ccpatch/internal/cli/output"
	"ccpatch/internal/core"
	"ccpatch/internal/core/domain"
	"ccpatch/internal/features"
)

type FeaturesCommandHandler struct {
	configRepository core.ConfigRepository
	registry         *features.Registry
}

func ProvideFeaturesCommandHandler(
	configRepository core.ConfigRepository,
	registry *features.Registry,
) FeaturesCommandHandler {
	return FeaturesCommandHandler{
		configRepository: configRepository,
		registry:         registry,
	}
}

// Handle lists every registered feature with its variables and patches,
// marking the ones enabled by the configuration.
func (h *FeaturesCommandHandler) Handle(out io.Writer) error {
	config, err := h.configRepository.LoadConfig()
	if err != nil {
		return err
	}
	selected, err := h.registry.Select(config.Features)
	if err != nil {
		return err
	}

	all := h.registry.All()
	output.PrintHeader(out, fmt.Sprintf("%d %s registered", len(all), output.Plural(len(all), "feature", "features")))
	for _, f := range all {
		status := output.Dim("(disabled)")
		if _, ok := selected.Lookup(f.Name()); ok {
			status = output.Success("(enabled)")
		}
		fmt.Fprintf(out, "\n%s %s\n", output.Bold(f.Name()), status)

		variables := f.Variables()
		output.PrintItem(out, 1, fmt.Sprintf("%d %s", len(variables), output.Plural(len(variables), "variable", "variables")))
		for _, v := range variables {
			output.PrintItem(out, 2, describeVariable(v))
			if v.Schema.Description != "" {
				output.PrintSecondary(out, 3, v.Schema.Description)
			}
		}

		patches := f.Patches()
		output.PrintItem(out, 1, fmt.Sprintf("%d %s", len(patches), output.Plural(len(patches), "patch", "patches")))
		for _, p := range patches {
			output.PrintItem(out, 2, describePatch(p))
		}
	}

	warnings := compositionWarnings(selected)
	if len(warnings) > 0 {
		fmt.Fprintln(out)
	}
	for _, warning := range warnings {
		output.PrintWarning(out, warning)
	}
	return nil
}

// compositionWarnings reports paths replaced by several features and
// variables read by a patch that no selected feature declares.
func compositionWarnings(selected *features.Registry) []string {
	var warnings []string
	for _, conflict := range selected.Conflicts() {
		warnings = append(warnings, conflict.String())
	}

	undeclared := core.UndeclaredVariables(selected.Patches(), selected.Variables())
	names := make([]string, 0, len(undeclared))
	for name := range undeclared {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		warnings = append(warnings, fmt.Sprintf("patch %s reads undeclared %s %s",
			name, output.Plural(len(undeclared[name]), "variable", "variables"), strings.Join(undeclared[name], ", ")))
	}
	return warnings
}

func describeVariable(v domain.Variable) string {
	required := "optional"
	if v.Required {
		required = "required"
	}
	description := fmt.Sprintf("%s (%s, %s)", v.Name, v.Schema.Type, required)
	if v.Schema.Type == "object" && len(v.Schema.Properties) > 0 {
		var names []string
		for name := range v.Schema.Properties {
			names = append(names, name)
		}
		slices.Sort(names)
		description += fmt.Sprintf(" %v", names)
	}
	return description
}

func describePatch(p domain.Patch) string {
	ops := 0
	var targets []string
	for _, definition := range p.Definitions {
		ops += len(definition.JSONPatches)
		targets = append(targets, definition.Selector.Kind)
	}
	description := fmt.Sprintf("%s: %d %s on %v", p.Name, ops, output.Plural(ops, "operation", "operations"), targets)
	if p.EnabledIf != nil {
		description += fmt.Sprintf(", enabledIf %s", *p.EnabledIf)
	}
	return description
}
