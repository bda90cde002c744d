package templater

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"ccpatch/internal/ports"

	"github.com/Masterminds/sprig/v3"
)

var _ ports.Templater = (*TextTemplater)(nil)

// TextTemplater renders Go templates with the hermetic sprig functions, the
// same function set the ClusterClass topology controller exposes.
type TextTemplater struct {
	warn func(err error)
}

func ProvideTextTemplater() ports.Templater {
	return NewTextTemplater(func(err error) {
		fmt.Fprintf(os.Stderr, "WARN: %v\n", err)
	})
}

// NewTextTemplater returns a templater reporting missing keys to warn.
func NewTextTemplater(warn func(err error)) *TextTemplater {
	if warn == nil {
		warn = func(error) {}
	}
	return &TextTemplater{warn: warn}
}

// Render executes the template strictly first. A missing key is reported as a
// warning and the template is rendered again with missing keys left empty.
func (t TextTemplater) Render(templateText string, templateName string, values map[string]interface{}) (string, error) {
	tmpl, err := parse(templateName, templateText, "missingkey=error")
	if err != nil {
		return "", err
	}
	var result strings.Builder
	err = tmpl.Execute(&result, values)
	if err == nil {
		return result.String(), nil
	}

	originalErr := err
	tmpl, err = parse(templateName, templateText, "missingkey=default")
	if err != nil {
		return "", err
	}
	var resultWithMissingKeys strings.Builder
	if err := tmpl.Execute(&resultWithMissingKeys, values); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", templateName, err)
	}
	t.warn(originalErr)

	return resultWithMissingKeys.String(), nil
}

func parse(name, text, missingKey string) (*template.Template, error) {
	tmpl, err := template.New(name).Option(missingKey).Funcs(sprig.HermeticTxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}
