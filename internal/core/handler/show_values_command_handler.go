package handler

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"ccpatch/internal/core"
)

type ShowValuesCommandHandler struct {
	configRepository core.ConfigRepository
}

func ProvideShowValuesCommandHandler(
	configRepository core.ConfigRepository,
) ShowValuesCommandHandler {
	return ShowValuesCommandHandler{
		configRepository: configRepository,
	}
}

// Handle prints the variable values preview would use.
func (h *ShowValuesCommandHandler) Handle(out io.Writer, valuesPath string) error {
	values, err := h.configRepository.LoadValues(valuesPath)
	if err != nil {
		return err
	}

	prettyPrintMap(out, values, 0)
	return nil
}

func prettyPrintMap(out io.Writer, values map[string]interface{}, indent int) {
	indentString := strings.Repeat(" ", indent)
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		switch value := values[key].(type) {
		case map[string]interface{}:
			fmt.Fprintf(out, "%s%s:\n", indentString, key)
			prettyPrintMap(out, value, indent+2)
		case []interface{}:
			if len(value) == 0 {
				fmt.Fprintf(out, "%s%s: []\n", indentString, key)
				continue
			}
			fmt.Fprintf(out, "%s%s:\n", indentString, key)
			for _, item := range value {
				fmt.Fprintf(out, "%s  - %v\n", indentString, item)
			}
		default:
			fmt.Fprintf(out, "%s%s: %v\n", indentString, key, value)
		}
	}
}
