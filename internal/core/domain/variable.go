package domain

import (
	"fmt"
	"reflect"
	"strings"
)

// Variable is a typed input a feature exposes on the ClusterClass.
type Variable struct {
	Name     string
	Required bool
	Schema   Schema
}

// Schema is the OpenAPI v3 subset used by feature variables.
type Schema struct {
	Type        string            `json:"type" yaml:"type"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Items       *Schema           `json:"items,omitempty" yaml:"items,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string          `json:"required,omitempty" yaml:"required,omitempty"`
	Pattern     string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Default     interface{}       `json:"default,omitempty" yaml:"default,omitempty"`
}

func (v Variable) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("variable name is empty")
	}
	if v.Schema.Type == "" {
		return fmt.Errorf("variable %q has no schema type", v.Name)
	}
	if v.Schema.Type == "array" && v.Schema.Items == nil {
		return fmt.Errorf("variable %q is an array without items", v.Name)
	}
	for _, name := range v.Schema.Required {
		if _, ok := v.Schema.Properties[name]; !ok {
			return fmt.Errorf("variable %q requires unknown property %q", v.Name, name)
		}
	}
	return nil
}

// VariableNamesOf returns the json names of the exported fields of a values
// struct, in declaration order.
func VariableNamesOf(values interface{}) []string {
	t := reflect.TypeOf(values)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		names = append(names, name)
	}
	return names
}
