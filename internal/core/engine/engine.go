package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ccpatch/internal/core/domain"
	"ccpatch/internal/ports"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

// Engine evaluates ClusterClass patches against a set of templates the way
// the topology controller does for inline patches.
type Engine struct {
	templater ports.Templater
}

func ProvideEngine(templater ports.Templater) *Engine {
	return &Engine{templater: templater}
}

// Generated is the RFC 6902 document a patch produced for one resource.
type Generated struct {
	Patch string
	// Resource is the index of the target in the resources passed in.
	Resource int
	Document []byte
}

// Generate evaluates a single patch. A disabled patch generates nothing.
func (e *Engine) Generate(ctx context.Context, patch domain.Patch, resources []Resource, values interface{}) ([]Generated, error) {
	vars, err := normalizeValues(values)
	if err != nil {
		return nil, err
	}
	return e.generate(ctx, patch, resources, vars)
}

// Apply runs the patches in order on copies of the resources. Each patch sees
// the output of the previous one; the inputs are never modified.
func (e *Engine) Apply(ctx context.Context, patches []domain.Patch, resources []Resource, values interface{}) ([]Resource, error) {
	vars, err := normalizeValues(values)
	if err != nil {
		return nil, err
	}

	result := make([]Resource, len(resources))
	for i, resource := range resources {
		result[i] = resource.deepCopy()
	}

	for _, patch := range patches {
		generated, err := e.generate(ctx, patch, result, vars)
		if err != nil {
			return nil, err
		}
		for _, g := range generated {
			target := result[g.Resource].Object
			doc, err := target.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("failed to marshal %s: %w", target.GetKind(), err)
			}
			patched, err := applyDocument(doc, g.Document)
			if err != nil {
				return nil, fmt.Errorf("failed to apply patch %q to %s: %w", patch.Name, target.GetKind(), err)
			}
			updated := &unstructured.Unstructured{}
			if err := updated.UnmarshalJSON(patched); err != nil {
				return nil, fmt.Errorf("failed to read patched %s: %w", target.GetKind(), err)
			}
			result[g.Resource].Object = updated
		}
	}

	return result, nil
}

func (e *Engine) generate(ctx context.Context, patch domain.Patch, resources []Resource, vars map[string]interface{}) ([]Generated, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("patch", patch.Name)

	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("patch %q is invalid: %w", patch.Name, err)
	}

	enabled, err := e.enabled(patch, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate enabledIf of patch %q: %w", patch.Name, err)
	}
	if !enabled {
		log.V(4).Info("Skipping disabled patch")
		return nil, nil
	}
	log.V(4).Info("Generating patch")

	var generated []Generated
	for i, resource := range resources {
		var ops []domain.JSONPatch
		for _, definition := range patch.Definitions {
			if !matchesSelector(definition.Selector, resource) {
				continue
			}
			for j, op := range definition.JSONPatches {
				resolved, err := e.resolve(patch.Name, op, vars)
				if err != nil {
					return nil, fmt.Errorf("failed to compute value of patch %q op %d (%s %s): %w", patch.Name, j, op.Op, op.Path, err)
				}
				ops = append(ops, resolved)
			}
		}
		if len(ops) == 0 {
			continue
		}

		document, err := json.Marshal(ops)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal patch %q: %w", patch.Name, err)
		}
		log.V(5).Info("Generated patch", "kind", resource.Object.GetKind(), "document", string(document))
		generated = append(generated, Generated{Patch: patch.Name, Resource: i, Document: document})
	}

	return generated, nil
}

// enabled renders enabledIf. Only output reading as the YAML value true
// enables the patch; empty output is null.
func (e *Engine) enabled(patch domain.Patch, vars map[string]interface{}) (bool, error) {
	if patch.EnabledIf == nil {
		return true, nil
	}

	rendered, err := e.templater.Render(*patch.EnabledIf, patch.Name+"-enabledIf", vars)
	if err != nil {
		return false, err
	}
	value, err := yaml.YAMLToJSON([]byte(rendered))
	if err != nil {
		return false, fmt.Errorf("failed to read rendered enabledIf %q: %w", rendered, err)
	}
	return strings.TrimSpace(string(value)) == "true", nil
}

// resolve replaces the payload of op with the literal JSON it stands for.
func (e *Engine) resolve(patchName string, op domain.JSONPatch, vars map[string]interface{}) (domain.JSONPatch, error) {
	var raw []byte
	switch payload := op.Payload.(type) {
	case nil, domain.Literal:
		return op, nil
	case domain.VariableRef:
		value, err := lookupVariable(vars, payload.Variable)
		if err != nil {
			return domain.JSONPatch{}, err
		}
		raw, err = json.Marshal(value)
		if err != nil {
			return domain.JSONPatch{}, fmt.Errorf("failed to marshal variable %q: %w", payload.Variable, err)
		}
	case domain.Template:
		rendered, err := e.templater.Render(payload.Template, patchName+"-"+op.Path, vars)
		if err != nil {
			return domain.JSONPatch{}, err
		}
		raw, err = yaml.YAMLToJSON([]byte(rendered))
		if err != nil {
			return domain.JSONPatch{}, fmt.Errorf("failed to convert rendered template to JSON: %w", err)
		}
	default:
		return domain.JSONPatch{}, fmt.Errorf("unsupported payload %T", op.Payload)
	}

	op.Payload = domain.Literal{Value: json.RawMessage(raw)}
	return op, nil
}

// ApplyOperations applies resolved operations to a JSON document. Every
// payload must be a Literal or nil.
func ApplyOperations(doc []byte, ops []domain.JSONPatch) ([]byte, error) {
	for i, op := range ops {
		switch op.Payload.(type) {
		case nil, domain.Literal:
		default:
			return nil, fmt.Errorf("operation %d (%s %s) is not resolved", i, op.Op, op.Path)
		}
	}

	document, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operations: %w", err)
	}
	return applyDocument(doc, document)
}

func applyDocument(doc, document []byte) ([]byte, error) {
	patch, err := jsonpatch.DecodePatch(document)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON patch: %w", err)
	}
	patched, err := patch.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to apply JSON patch: %w", err)
	}
	return patched, nil
}
