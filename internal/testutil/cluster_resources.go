package testutil

import (
	"context"
	"embed"
	"encoding/json"
	"reflect"
	"testing"

	"ccpatch/internal/adapters/templater"
	"ccpatch/internal/core/clusterclass"
	"ccpatch/internal/core/domain"
	"ccpatch/internal/core/engine"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/kubernetes/scheme"
	controlplanev1 "sigs.k8s.io/cluster-api/controlplane/kubeadm/api/v1beta1"
)

//go:embed fixtures
var fixtures embed.FS

// ClusterResources holds the base templates a feature's patches are
// checked against.
type ClusterResources struct {
	KubeadmControlPlaneTemplate controlplanev1.KubeadmControlPlaneTemplate
	OpenStackClusterTemplate    *unstructured.Unstructured
}

func NewClusterResources() *ClusterResources {
	return &ClusterResources{
		KubeadmControlPlaneTemplate: clusterclass.DefaultKubeadmControlPlaneTemplate(),
		OpenStackClusterTemplate:    clusterclass.DefaultOpenStackClusterTemplate(),
	}
}

// ApplyPatches evaluates the patches with values, as the topology controller
// would, and stores the patched templates.
func (r *ClusterResources) ApplyPatches(t *testing.T, patches []domain.Patch, values interface{}) {
	t.Helper()

	controlPlane, err := clusterclass.ToUnstructured(&r.KubeadmControlPlaneTemplate)
	require.NoError(t, err)
	resources := []engine.Resource{
		{Role: engine.RoleControlPlane, Object: controlPlane},
		{Role: engine.RoleInfrastructureCluster, Object: r.OpenStackClusterTemplate},
	}

	sut := engine.ProvideEngine(templater.NewTextTemplater(func(err error) { t.Logf("template: %v", err) }))
	result, err := sut.Apply(context.Background(), patches, resources, values)
	require.NoError(t, err, "failed to apply patches")

	var patched controlplanev1.KubeadmControlPlaneTemplate
	require.NoError(t, clusterclass.FromUnstructured(result[0].Object, &patched))
	r.KubeadmControlPlaneTemplate = patched
	r.OpenStackClusterTemplate = result[1].Object
}

// ApplyPatch applies resolved operations to a typed object in place.
func ApplyPatch(t *testing.T, obj interface{}, ops []domain.JSONPatch) {
	t.Helper()

	doc, err := json.Marshal(obj)
	require.NoError(t, err)
	patched, err := engine.ApplyOperations(doc, ops)
	require.NoError(t, err, "failed to apply operations")

	target := reflect.ValueOf(obj).Elem()
	target.Set(reflect.Zero(target.Type()))
	require.NoError(t, json.Unmarshal(patched, obj))
}

// LoadPod decodes fixtures/<name>.yaml.
func LoadPod(t *testing.T, name string) *corev1.Pod {
	t.Helper()

	data, err := fixtures.ReadFile("fixtures/" + name + ".yaml")
	require.NoError(t, err)

	obj, _, err := scheme.Codecs.UniversalDeserializer().Decode(data, nil, nil)
	require.NoError(t, err)
	pod, ok := obj.(*corev1.Pod)
	require.True(t, ok, "fixture %s is a %T, not a Pod", name, obj)
	return pod
}
