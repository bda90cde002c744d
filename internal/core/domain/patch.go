package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	kerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Operation is an RFC 6902 operation name.
type Operation string

const (
	OpAdd     Operation = "add"
	OpRemove  Operation = "remove"
	OpReplace Operation = "replace"
	OpMove    Operation = "move"
	OpCopy    Operation = "copy"
	OpTest    Operation = "test"
)

func (o Operation) Valid() bool {
	switch o {
	case OpAdd, OpRemove, OpReplace, OpMove, OpCopy, OpTest:
		return true
	}
	return false
}

func (o Operation) needsPayload() bool {
	return o == OpAdd || o == OpReplace || o == OpTest
}

func (o Operation) needsFrom() bool {
	return o == OpMove || o == OpCopy
}

// Payload is the value source of a JSONPatch. It is one of Literal, Template
// or VariableRef; a nil Payload means the operation carries no value.
type Payload interface {
	isPayload()
}

// Literal is a value written verbatim into the target document.
type Literal struct {
	Value interface{}
}

// Template is text rendered against the cluster variables at instantiation.
// The rendered output is read as YAML and converted to JSON.
type Template struct {
	Template string
}

// VariableRef names a variable whose value becomes the operation value.
// Nested fields and list items are addressed as "a.b[0].c".
type VariableRef struct {
	Variable string
}

func (Literal) isPayload()     {}
func (Template) isPayload()    {}
func (VariableRef) isPayload() {}

// JSONPatch is a single ordered operation of a Definition.
type JSONPatch struct {
	Op      Operation
	Path    string
	From    string
	Payload Payload
}

type jsonPatchWire struct {
	Op        Operation       `json:"op"`
	Path      string          `json:"path"`
	From      string          `json:"from,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	ValueFrom *valueFromWire  `json:"valueFrom,omitempty"`
}

type valueFromWire struct {
	Variable *string `json:"variable,omitempty"`
	Template *string `json:"template,omitempty"`
}

func (p JSONPatch) MarshalJSON() ([]byte, error) {
	wire := jsonPatchWire{Op: p.Op, Path: p.Path, From: p.From}

	switch payload := p.Payload.(type) {
	case nil:
	case Literal:
		raw, err := json.Marshal(payload.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value of %s %s: %w", p.Op, p.Path, err)
		}
		wire.Value = raw
	case Template:
		template := payload.Template
		wire.ValueFrom = &valueFromWire{Template: &template}
	case VariableRef:
		variable := payload.Variable
		wire.ValueFrom = &valueFromWire{Variable: &variable}
	default:
		return nil, fmt.Errorf("unsupported payload %T", p.Payload)
	}

	return json.Marshal(wire)
}

func (p *JSONPatch) UnmarshalJSON(data []byte) error {
	var wire jsonPatchWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	patch := JSONPatch{Op: wire.Op, Path: wire.Path, From: wire.From}

	hasValue := len(wire.Value) > 0 && string(wire.Value) != "null"
	switch {
	case hasValue && wire.ValueFrom != nil:
		return fmt.Errorf("%s %s: value and valueFrom are mutually exclusive", wire.Op, wire.Path)
	case hasValue:
		var value interface{}
		if err := json.Unmarshal(wire.Value, &value); err != nil {
			return fmt.Errorf("failed to parse value of %s %s: %w", wire.Op, wire.Path, err)
		}
		patch.Payload = Literal{Value: value}
	case wire.ValueFrom != nil:
		from := wire.ValueFrom
		switch {
		case from.Template != nil && from.Variable != nil:
			return fmt.Errorf("%s %s: valueFrom.template and valueFrom.variable are mutually exclusive", wire.Op, wire.Path)
		case from.Template != nil:
			patch.Payload = Template{Template: *from.Template}
		case from.Variable != nil:
			patch.Payload = VariableRef{Variable: *from.Variable}
		default:
			return fmt.Errorf("%s %s: valueFrom needs either template or variable", wire.Op, wire.Path)
		}
	}

	*p = patch
	return nil
}

func (p JSONPatch) Validate() error {
	if !p.Op.Valid() {
		return fmt.Errorf("unknown operation %q", p.Op)
	}
	if !strings.HasPrefix(p.Path, "/") {
		return fmt.Errorf("%s: path %q is not a JSON pointer", p.Op, p.Path)
	}
	if p.Op.needsPayload() && p.Payload == nil {
		return fmt.Errorf("%s %s: a value is required", p.Op, p.Path)
	}
	if !p.Op.needsPayload() && p.Payload != nil {
		return fmt.Errorf("%s %s: a value is not allowed", p.Op, p.Path)
	}
	if p.Op.needsFrom() && !strings.HasPrefix(p.From, "/") {
		return fmt.Errorf("%s %s: from %q is not a JSON pointer", p.Op, p.Path, p.From)
	}
	if !p.Op.needsFrom() && p.From != "" {
		return fmt.Errorf("%s %s: from is only valid for move and copy", p.Op, p.Path)
	}
	return nil
}

// ClassNames lists machine deployment classes. Entries may be "*", "prefix*"
// or "*suffix".
type ClassNames struct {
	Names []string `json:"names,omitempty"`
}

type MatchResources struct {
	ControlPlane           bool        `json:"controlPlane,omitempty"`
	InfrastructureCluster  bool        `json:"infrastructureCluster,omitempty"`
	MachineDeploymentClass *ClassNames `json:"machineDeploymentClass,omitempty"`
}

// Selector identifies the templates a Definition applies to.
type Selector struct {
	APIVersion     string         `json:"apiVersion"`
	Kind           string         `json:"kind"`
	MatchResources MatchResources `json:"matchResources"`
}

// Definition is an ordered list of operations applied to every template
// matching its Selector.
type Definition struct {
	Selector    Selector    `json:"selector"`
	JSONPatches []JSONPatch `json:"jsonPatches"`
}

// Patch is a named, optionally conditional, set of definitions contributed
// by a feature. A nil EnabledIf means the patch is always active.
type Patch struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	EnabledIf   *string      `json:"enabledIf,omitempty"`
	Definitions []Definition `json:"definitions,omitempty"`
}

func (s Selector) Validate() error {
	var errs []error
	if s.APIVersion == "" {
		errs = append(errs, fmt.Errorf("selector apiVersion is empty"))
	}
	if s.Kind == "" {
		errs = append(errs, fmt.Errorf("selector kind is empty"))
	}
	m := s.MatchResources
	if !m.ControlPlane && !m.InfrastructureCluster && (m.MachineDeploymentClass == nil || len(m.MachineDeploymentClass.Names) == 0) {
		errs = append(errs, fmt.Errorf("selector for %s matches no resources", s.Kind))
	}
	return kerrors.NewAggregate(errs)
}

func (p Patch) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, fmt.Errorf("patch name is empty"))
	}
	if p.EnabledIf != nil && strings.TrimSpace(*p.EnabledIf) == "" {
		errs = append(errs, fmt.Errorf("patch %q: enabledIf is set but empty", p.Name))
	}
	for i, definition := range p.Definitions {
		if err := definition.Selector.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("patch %q definition %d: %w", p.Name, i, err))
		}
		for j, op := range definition.JSONPatches {
			if err := op.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("patch %q definition %d op %d: %w", p.Name, i, j, err))
			}
		}
	}
	return kerrors.NewAggregate(errs)
}
