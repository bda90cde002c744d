package clusterclass

import (
	"encoding/json"
	"fmt"

	"ccpatch/internal/core/domain"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/utils/ptr"
	clusterv1 "sigs.k8s.io/cluster-api/api/v1beta1"
)

func ToClusterClassVariable(v domain.Variable) (clusterv1.ClusterClassVariable, error) {
	if err := v.Validate(); err != nil {
		return clusterv1.ClusterClassVariable{}, err
	}

	props, err := toJSONSchemaProps(v.Schema)
	if err != nil {
		return clusterv1.ClusterClassVariable{}, fmt.Errorf("failed to convert schema of variable %q: %w", v.Name, err)
	}

	return clusterv1.ClusterClassVariable{
		Name:     v.Name,
		Required: v.Required,
		Schema: clusterv1.VariableSchema{
			OpenAPIV3Schema: props,
		},
	}, nil
}

func toJSONSchemaProps(s domain.Schema) (clusterv1.JSONSchemaProps, error) {
	props := clusterv1.JSONSchemaProps{
		Type:        s.Type,
		Description: s.Description,
		Required:    s.Required,
		Pattern:     s.Pattern,
	}

	if s.Items != nil {
		items, err := toJSONSchemaProps(*s.Items)
		if err != nil {
			return clusterv1.JSONSchemaProps{}, err
		}
		props.Items = &items
	}

	if len(s.Properties) > 0 {
		props.Properties = make(map[string]clusterv1.JSONSchemaProps, len(s.Properties))
		for name, property := range s.Properties {
			converted, err := toJSONSchemaProps(property)
			if err != nil {
				return clusterv1.JSONSchemaProps{}, fmt.Errorf("property %s: %w", name, err)
			}
			props.Properties[name] = converted
		}
	}

	if s.Default != nil {
		raw, err := json.Marshal(s.Default)
		if err != nil {
			return clusterv1.JSONSchemaProps{}, fmt.Errorf("failed to marshal default: %w", err)
		}
		props.Default = &apiextensionsv1.JSON{Raw: raw}
	}

	return props, nil
}

// ToClusterClassPatch converts a patch to the ClusterClass API. Only the
// operations the topology controller accepts can be converted.
func ToClusterClassPatch(p domain.Patch) (clusterv1.ClusterClassPatch, error) {
	if err := p.Validate(); err != nil {
		return clusterv1.ClusterClassPatch{}, err
	}

	patch := clusterv1.ClusterClassPatch{
		Name:        p.Name,
		Description: p.Description,
		EnabledIf:   p.EnabledIf,
	}

	for i, definition := range p.Definitions {
		converted := clusterv1.PatchDefinition{
			Selector: clusterv1.PatchSelector{
				APIVersion: definition.Selector.APIVersion,
				Kind:       definition.Selector.Kind,
				MatchResources: clusterv1.PatchSelectorMatch{
					ControlPlane:          definition.Selector.MatchResources.ControlPlane,
					InfrastructureCluster: definition.Selector.MatchResources.InfrastructureCluster,
				},
			},
			JSONPatches: make([]clusterv1.JSONPatch, 0, len(definition.JSONPatches)),
		}
		if classes := definition.Selector.MatchResources.MachineDeploymentClass; classes != nil {
			converted.Selector.MatchResources.MachineDeploymentClass = &clusterv1.PatchSelectorMatchMachineDeploymentClass{
				Names: classes.Names,
			}
		}

		for j, op := range definition.JSONPatches {
			jsonPatch, err := toJSONPatch(op)
			if err != nil {
				return clusterv1.ClusterClassPatch{}, fmt.Errorf("patch %q definition %d op %d: %w", p.Name, i, j, err)
			}
			converted.JSONPatches = append(converted.JSONPatches, jsonPatch)
		}
		patch.Definitions = append(patch.Definitions, converted)
	}

	return patch, nil
}

func toJSONPatch(op domain.JSONPatch) (clusterv1.JSONPatch, error) {
	switch op.Op {
	case domain.OpAdd, domain.OpReplace, domain.OpRemove:
	default:
		return clusterv1.JSONPatch{}, fmt.Errorf("operation %q is not supported by ClusterClass patches", op.Op)
	}

	patch := clusterv1.JSONPatch{Op: string(op.Op), Path: op.Path}
	switch payload := op.Payload.(type) {
	case nil:
	case domain.Literal:
		raw, err := json.Marshal(payload.Value)
		if err != nil {
			return clusterv1.JSONPatch{}, fmt.Errorf("failed to marshal value: %w", err)
		}
		patch.Value = &apiextensionsv1.JSON{Raw: raw}
	case domain.Template:
		patch.ValueFrom = &clusterv1.JSONPatchValue{Template: ptr.To(payload.Template)}
	case domain.VariableRef:
		patch.ValueFrom = &clusterv1.JSONPatchValue{Variable: ptr.To(payload.Variable)}
	default:
		return clusterv1.JSONPatch{}, fmt.Errorf("unsupported payload %T", op.Payload)
	}
	return patch, nil
}
