package handler

import (
	"bytes"
	"testing"

	"ccpatch/internal/core/domain"
	"ccpatch/internal/features"
	"ccpatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

func TestFeaturesCommandHandler_Handle(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	configRepository := new(testutil.MockConfigRepository)
	configRepository.On("LoadConfig").Return(testConfig("kubeAPIOptions"), nil)
	sut := ProvideFeaturesCommandHandler(configRepository, features.Builtin())
	var out bytes.Buffer

	err := sut.Handle(&out)

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "2 features registered")
	assert.Contains(t, text, "kubeAPIOptions (enabled)")
	assert.Contains(t, text, "apiServerLoadBalancer (disabled)")
	assert.Contains(t, text, "  - 1 variable\n")
	assert.Contains(t, text, "    - kubeAPIOptions (array, optional)\n      -> Extra command line flags for kube-apiserver, such as --audit-log-maxage=30.\n")
	assert.Contains(t, text, "    - apiServerLoadBalancer (object, required) [enabled provider]")
	assert.Contains(t, text, "    - kubeAPIOptions: 4 operations on [KubeadmControlPlaneTemplate], enabledIf")
	assert.Contains(t, text, "    - apiServerLoadBalancer: 1 operation on [OpenStackClusterTemplate]")
	assert.NotContains(t, text, "!")
}

func TestFeaturesCommandHandler_Handle_UnknownFeature(t *testing.T) {
	configRepository := new(testutil.MockConfigRepository)
	configRepository.On("LoadConfig").Return(testConfig("nope"), nil)
	sut := ProvideFeaturesCommandHandler(configRepository, features.Builtin())

	err := sut.Handle(&bytes.Buffer{})

	assert.ErrorContains(t, err, "unknown feature 'nope'")
}

type undeclaredFeature struct{}

func (undeclaredFeature) Name() string { return "undeclared" }

func (undeclaredFeature) Variables() []domain.Variable { return nil }

func (undeclaredFeature) Patches() []domain.Patch {
	return []domain.Patch{{Name: "undeclared", EnabledIf: ptr.To("{{ .missing }}")}}
}

func TestCompositionWarnings(t *testing.T) {
	registry := features.NewRegistry()
	registry.Register(&features.KubeAPIOptionsFeature{})
	registry.Register(undeclaredFeature{})
	registry.Seal()

	warnings := compositionWarnings(registry)

	assert.Equal(t, []string{"patch undeclared reads undeclared variable missing"}, warnings)
	assert.Empty(t, compositionWarnings(features.Builtin()))
}
