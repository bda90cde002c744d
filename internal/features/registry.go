package features

import (
	"fmt"
	"slices"
	"strings"

	"ccpatch/internal/core/domain"
)

// Registry holds features in registration order. It is filled while the
// application is wired and sealed before use; reads after Seal need no lock.
type Registry struct {
	features []Feature
	sealed   bool
}

// Conflict reports a target path replaced by more than one feature. The last
// registered feature wins.
type Conflict struct {
	APIVersion string
	Kind       string
	Path       string
	Features   []string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s %s %s is replaced by %s", c.APIVersion, c.Kind, c.Path, strings.Join(c.Features, ", "))
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Builtin returns the sealed registry of all features shipped with ccpatch.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(&KubeAPIOptionsFeature{})
	r.Register(&APIServerLoadBalancerFeature{})
	return r.Seal()
}

func ProvideRegistry() *Registry {
	return Builtin()
}

// Register appends a feature. Registering the same feature twice contributes
// its patches twice.
func (r *Registry) Register(f Feature) {
	if r.sealed {
		panic(fmt.Sprintf("feature %s registered after the registry was sealed", f.Name()))
	}
	r.features = append(r.features, f)
}

func (r *Registry) Seal() *Registry {
	r.sealed = true
	return r
}

func (r *Registry) All() []Feature {
	return append([]Feature(nil), r.features...)
}

func (r *Registry) Lookup(name string) (Feature, bool) {
	for _, f := range r.features {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Select returns a sealed registry holding the named features in registry
// order. No names keeps every feature.
func (r *Registry) Select(names []string) (*Registry, error) {
	if len(names) == 0 {
		return &Registry{features: r.All(), sealed: true}, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := r.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown feature '%s'", name)
		}
		wanted[name] = true
	}

	selected := &Registry{}
	for _, f := range r.features {
		if wanted[f.Name()] {
			selected.features = append(selected.features, f)
		}
	}
	return selected.Seal(), nil
}

func (r *Registry) Patches() []domain.Patch {
	var patches []domain.Patch
	for _, f := range r.features {
		patches = append(patches, f.Patches()...)
	}
	return patches
}

func (r *Registry) Variables() []domain.Variable {
	var variables []domain.Variable
	for _, f := range r.features {
		variables = append(variables, f.Variables()...)
	}
	return variables
}

// Conflicts lists paths written with replace by more than one feature on the
// same selector.
func (r *Registry) Conflicts() []Conflict {
	type target struct {
		apiVersion, kind, match, path string
	}

	writers := map[target][]string{}
	var order []target
	for _, f := range r.features {
		for _, patch := range f.Patches() {
			for _, definition := range patch.Definitions {
				for _, op := range definition.JSONPatches {
					if op.Op != domain.OpReplace {
						continue
					}
					key := target{
						apiVersion: definition.Selector.APIVersion,
						kind:       definition.Selector.Kind,
						match:      matchKey(definition.Selector.MatchResources),
						path:       op.Path,
					}
					if _, seen := writers[key]; !seen {
						order = append(order, key)
					}
					if !slices.Contains(writers[key], f.Name()) {
						writers[key] = append(writers[key], f.Name())
					}
				}
			}
		}
	}

	var conflicts []Conflict
	for _, key := range order {
		if len(writers[key]) < 2 {
			continue
		}
		conflicts = append(conflicts, Conflict{
			APIVersion: key.apiVersion,
			Kind:       key.kind,
			Path:       key.path,
			Features:   writers[key],
		})
	}
	return conflicts
}

func matchKey(m domain.MatchResources) string {
	parts := []string{fmt.Sprintf("cp=%t", m.ControlPlane), fmt.Sprintf("infra=%t", m.InfrastructureCluster)}
	if m.MachineDeploymentClass != nil {
		names := append([]string(nil), m.MachineDeploymentClass.Names...)
		slices.Sort(names)
		parts = append(parts, "md="+strings.Join(names, ","))
	}
	return strings.Join(parts, ";")
}
