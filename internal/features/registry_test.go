package features

import (
	"context"
	"sync"
	"testing"

	"ccpatch/internal/adapters/templater"
	"ccpatch/internal/core/clusterclass"
	"ccpatch/internal/core/domain"
	"ccpatch/internal/core/engine"
	"ccpatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replaceFeature struct {
	name string
	path string
}

func (f replaceFeature) Name() string { return f.name }

func (f replaceFeature) Variables() []domain.Variable { return nil }

func (f replaceFeature) Patches() []domain.Patch {
	return []domain.Patch{
		{
			Name: f.name,
			Definitions: []domain.Definition{
				{
					Selector: domain.Selector{
						APIVersion:     clusterclass.InfrastructureAPIVersion,
						Kind:           clusterclass.OpenStackClusterTemplateKind,
						MatchResources: domain.MatchResources{InfrastructureCluster: true},
					},
					JSONPatches: []domain.JSONPatch{
						{Op: domain.OpReplace, Path: f.path, Payload: domain.Literal{Value: f.name}},
					},
				},
			},
		},
	}
}

func TestBuiltin(t *testing.T) {
	sut := Builtin()

	var names []string
	for _, f := range sut.All() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"kubeAPIOptions", "apiServerLoadBalancer"}, names)
	assert.Len(t, sut.Patches(), 2)
	assert.Len(t, sut.Variables(), 2)
	assert.Empty(t, sut.Conflicts())
}

func TestRegistry_RegisterAfterSealPanics(t *testing.T) {
	sut := NewRegistry().Seal()

	assert.Panics(t, func() { sut.Register(&KubeAPIOptionsFeature{}) })
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	sut := Builtin()

	all := sut.All()
	all[0] = nil

	assert.NotNil(t, sut.All()[0])
}

func TestRegistry_DoubleRegistrationDoublesContribution(t *testing.T) {
	sut := NewRegistry()
	sut.Register(&KubeAPIOptionsFeature{})
	sut.Register(&KubeAPIOptionsFeature{})
	sut.Seal()

	assert.Len(t, sut.Patches(), 2)
	assert.Len(t, sut.Variables(), 2)

	resources := testutil.NewClusterResources()
	resources.ApplyPatches(t, sut.Patches(), KubeAPIOptionsValues{KubeAPIOptions: []string{"--foo=1"}})
	spec := resources.KubeadmControlPlaneTemplate.Spec.Template.Spec.KubeadmConfigSpec
	assert.Len(t, findFile(spec.Files, kustomizationPath), 2)
	assert.Len(t, spec.PostKubeadmCommands, 5)
}

func TestRegistry_PatchesKeepRegistrationOrder(t *testing.T) {
	sut := NewRegistry()
	sut.Register(replaceFeature{name: "b", path: "/spec/b"})
	sut.Register(replaceFeature{name: "a", path: "/spec/a"})
	sut.Register(replaceFeature{name: "c", path: "/spec/c"})

	var names []string
	for _, p := range sut.Seal().Patches() {
		names = append(names, p.Name)
	}

	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestRegistry_Select(t *testing.T) {
	sut := Builtin()

	selected, err := sut.Select([]string{"apiServerLoadBalancer", "kubeAPIOptions"})
	require.NoError(t, err)
	require.Len(t, selected.All(), 2)
	assert.Equal(t, "kubeAPIOptions", selected.All()[0].Name(), "registry order wins over selection order")
	assert.Panics(t, func() { selected.Register(&KubeAPIOptionsFeature{}) })

	selected, err = sut.Select([]string{"apiServerLoadBalancer"})
	require.NoError(t, err)
	assert.Len(t, selected.All(), 1)

	selected, err = sut.Select(nil)
	require.NoError(t, err)
	assert.Len(t, selected.All(), 2)

	_, err = sut.Select([]string{"unknown"})
	assert.ErrorContains(t, err, "unknown feature 'unknown'")
}

func TestRegistry_Lookup(t *testing.T) {
	sut := Builtin()

	f, ok := sut.Lookup("kubeAPIOptions")
	require.True(t, ok)
	assert.IsType(t, &KubeAPIOptionsFeature{}, f)

	_, ok = sut.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_Conflicts(t *testing.T) {
	sut := NewRegistry()
	sut.Register(replaceFeature{name: "first", path: "/spec/template/spec/flavor"})
	sut.Register(replaceFeature{name: "second", path: "/spec/template/spec/flavor"})
	sut.Register(replaceFeature{name: "third", path: "/spec/template/spec/image"})
	sut.Seal()

	conflicts := sut.Conflicts()

	require.Len(t, conflicts, 1)
	assert.Equal(t, "/spec/template/spec/flavor", conflicts[0].Path)
	assert.Equal(t, []string{"first", "second"}, conflicts[0].Features)
	assert.Contains(t, conflicts[0].String(), "first, second")
}

func TestRegistry_LastWriterWins(t *testing.T) {
	sut := NewRegistry()
	sut.Register(replaceFeature{name: "first", path: "/spec/template/spec/identityRef/cloudName"})
	sut.Register(replaceFeature{name: "second", path: "/spec/template/spec/identityRef/cloudName"})
	sut.Seal()

	resources := testutil.NewClusterResources()
	resources.ApplyPatches(t, sut.Patches(), nil)

	spec := resources.OpenStackClusterTemplate.Object["spec"].(map[string]interface{})["template"].(map[string]interface{})["spec"].(map[string]interface{})
	assert.Equal(t, "second", spec["identityRef"].(map[string]interface{})["cloudName"])
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	sut := Builtin()
	e := engine.ProvideEngine(templater.NewTextTemplater(nil))
	values := map[string]interface{}{
		"kubeAPIOptions":        []interface{}{"--foo=1"},
		"apiServerLoadBalancer": map[string]interface{}{"enabled": true},
	}
	expected := sut.Patches()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, expected, sut.Patches())
			resources, err := clusterclass.DefaultResources()
			if !assert.NoError(t, err) {
				return
			}
			_, err = e.Apply(context.Background(), sut.Patches(), resources, values)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
