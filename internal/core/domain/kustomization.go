package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Kustomization is the kustomization.yml written onto nodes. Patch texts are
// kept opaque; they may still contain template directives.
type Kustomization struct {
	Resources []string             `yaml:"resources"`
	Patches   []KustomizationPatch `yaml:"patches"`
}

type KustomizationPatch struct {
	Target KustomizationTarget `yaml:"target"`
	Patch  string              `yaml:"patch"`
}

type KustomizationTarget struct {
	Group   string `yaml:"group"`
	Version string `yaml:"version"`
	Kind    string `yaml:"kind"`
	Name    string `yaml:"name"`
}

func (k Kustomization) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(k)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal kustomization: %w", err)
	}
	return data, nil
}

func ParseKustomization(data []byte) (Kustomization, error) {
	var k Kustomization
	if err := yaml.Unmarshal(data, &k); err != nil {
		return Kustomization{}, fmt.Errorf("failed to parse kustomization: %w", err)
	}
	return k, nil
}

// ParseOperations reads an expanded kustomize JSON6902 patch text, a YAML
// list of {op, path, value}, into operations with literal payloads.
func ParseOperations(patch string) ([]JSONPatch, error) {
	data, err := sigsyaml.YAMLToJSON([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("failed to convert patch to JSON: %w", err)
	}
	if string(data) == "null" {
		return []JSONPatch{}, nil
	}

	var ops []JSONPatch
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("failed to parse patch operations: %w", err)
	}
	for i, op := range ops {
		if err := op.Validate(); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return ops, nil
}
