package features

import (
	"testing"

	"ccpatch/internal/core/domain"
	"ccpatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestAPIServerLoadBalancerFeature_ApplyPatches(t *testing.T) {
	tests := []struct {
		name     string
		values   APIServerLoadBalancerValues
		expected map[string]interface{}
	}{
		{
			name:     "enabled with provider",
			values:   APIServerLoadBalancerValues{APIServerLoadBalancer: APIServerLoadBalancer{Enabled: true, Provider: "ovn"}},
			expected: map[string]interface{}{"enabled": true, "provider": "ovn"},
		},
		{
			name:     "disabled",
			values:   APIServerLoadBalancerValues{APIServerLoadBalancer: APIServerLoadBalancer{Enabled: false}},
			expected: map[string]interface{}{"enabled": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feature := &APIServerLoadBalancerFeature{}
			resources := testutil.NewClusterResources()
			base := testutil.NewClusterResources()

			resources.ApplyPatches(t, feature.Patches(), tt.values)

			actual, found, err := unstructured.NestedMap(resources.OpenStackClusterTemplate.Object, "spec", "template", "spec", "apiServerLoadBalancer")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.expected, actual)
			assert.Equal(t, base.KubeadmControlPlaneTemplate.Spec, resources.KubeadmControlPlaneTemplate.Spec)
		})
	}
}

func TestAPIServerLoadBalancerFeature_VariablesMatchValues(t *testing.T) {
	feature := &APIServerLoadBalancerFeature{}

	variables := feature.Variables()

	require.Len(t, variables, 1)
	require.NoError(t, variables[0].Validate())
	assert.True(t, variables[0].Required)
	assert.Equal(t, domain.VariableNamesOf(APIServerLoadBalancerValues{}), []string{variables[0].Name})
	assert.ElementsMatch(t, domain.VariableNamesOf(APIServerLoadBalancer{}), keys(variables[0].Schema.Properties))
}

func TestAPIServerLoadBalancerFeature_UsesVariablePayload(t *testing.T) {
	feature := &APIServerLoadBalancerFeature{}

	ops := feature.Patches()[0].Definitions[0].JSONPatches

	require.Len(t, ops, 1)
	assert.Equal(t, domain.VariableRef{Variable: "apiServerLoadBalancer"}, ops[0].Payload)
}

func keys(m map[string]domain.Schema) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
