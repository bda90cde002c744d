package features

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"ccpatch/internal/core/domain"
	"ccpatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bootstrapv1 "sigs.k8s.io/cluster-api/bootstrap/kubeadm/api/v1beta1"
)

const (
	kustomizationPath   = "/etc/kubernetes/kustomizations/kubeapi_options/kustomization.yml"
	mkdirCommand        = "mkdir -p /etc/kubernetes/kustomizations/kubeapi_options"
	copyManifestCommand = "cp /etc/kubernetes/manifests/kube-apiserver.yaml /etc/kubernetes/kustomizations/kubeapi_options/kube-apiserver.yaml"
	kustomizeCommand    = "kubectl kustomize /etc/kubernetes/kustomizations/kubeapi_options -o /etc/kubernetes/manifests/kube-apiserver.yaml"
)

func findFile(files []bootstrapv1.File, path string) []bootstrapv1.File {
	var found []bootstrapv1.File
	for _, f := range files {
		if f.Path == path {
			found = append(found, f)
		}
	}
	return found
}

func TestKubeAPIOptionsFeature_Inert(t *testing.T) {
	tests := []struct {
		name   string
		values interface{}
	}{
		{"empty list", KubeAPIOptionsValues{KubeAPIOptions: []string{}}},
		{"nil list", KubeAPIOptionsValues{}},
		{"single empty entry", KubeAPIOptionsValues{KubeAPIOptions: []string{""}}},
		{"variable not provided", map[string]interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feature := &KubeAPIOptionsFeature{}
			resources := testutil.NewClusterResources()
			base := testutil.NewClusterResources()

			resources.ApplyPatches(t, feature.Patches(), tt.values)

			spec := resources.KubeadmControlPlaneTemplate.Spec.Template.Spec.KubeadmConfigSpec
			assert.Empty(t, findFile(spec.Files, kustomizationPath))
			assert.NotContains(t, spec.PreKubeadmCommands, mkdirCommand)
			assert.NotContains(t, spec.PostKubeadmCommands, copyManifestCommand)
			assert.NotContains(t, spec.PostKubeadmCommands, kustomizeCommand)
			assert.Equal(t, base.KubeadmControlPlaneTemplate.Spec, resources.KubeadmControlPlaneTemplate.Spec)
		})
	}
}

func TestKubeAPIOptionsFeature_ApplyPatches(t *testing.T) {
	feature := &KubeAPIOptionsFeature{}
	values := KubeAPIOptionsValues{KubeAPIOptions: []string{"--foo=1", "--bar=2"}}
	resources := testutil.NewClusterResources()

	resources.ApplyPatches(t, feature.Patches(), values)

	spec := resources.KubeadmControlPlaneTemplate.Spec.Template.Spec.KubeadmConfigSpec
	files := findFile(spec.Files, kustomizationPath)
	require.Len(t, files, 1)
	file := files[0]
	assert.Equal(t, "0644", file.Permissions)
	assert.Equal(t, "root:root", file.Owner)
	require.NotEmpty(t, file.Content)

	kustomization, err := domain.ParseKustomization([]byte(file.Content))
	require.NoError(t, err)
	assert.Equal(t, []string{"kube-apiserver.yaml"}, kustomization.Resources)
	require.Len(t, kustomization.Patches, 1)
	assert.Equal(t, domain.KustomizationTarget{Group: "", Version: "v1", Kind: "Pod", Name: "kube-apiserver"}, kustomization.Patches[0].Target)

	ops, err := domain.ParseOperations(kustomization.Patches[0].Patch)
	require.NoError(t, err)
	assert.Equal(t, []domain.JSONPatch{
		{Op: domain.OpAdd, Path: "/spec/containers/0/command/-", Payload: domain.Literal{Value: "--foo=1"}},
		{Op: domain.OpAdd, Path: "/spec/containers/0/command/-", Payload: domain.Literal{Value: "--bar=2"}},
	}, ops)

	pod := testutil.LoadPod(t, "kube-apiserver")
	baseCommand := append([]string(nil), pod.Spec.Containers[0].Command...)
	testutil.ApplyPatch(t, pod, ops)
	command := pod.Spec.Containers[0].Command
	assert.Equal(t, append(baseCommand, "--foo=1", "--bar=2"), command)

	assert.Equal(t, 1, strings.Count(strings.Join(spec.PreKubeadmCommands, "\n"), mkdirCommand))
	assert.Equal(t, "rm -rf /var/lib/etcd/lost+found", spec.PreKubeadmCommands[0], "base commands stay first")

	post := spec.PostKubeadmCommands
	require.Len(t, post, 3)
	assert.Equal(t, []string{copyManifestCommand, kustomizeCommand}, post[1:], "the manifest is copied before it is rebuilt")
}

func TestKubeAPIOptionsFeature_SingleFlag(t *testing.T) {
	tests := []struct {
		name string
		flag string
	}{
		{"plain", "--audit-log-maxage=30"},
		{"trailing colon", "--oidc-username-prefix=oidc:"},
		{"colon and space", "--oidc-groups-prefix=oidc: "},
		{"nested equals", "--runtime-config=api/all=true"},
		{"yaml boolean", "true"},
		{"comment marker", "--feature #1"},
		{"single quotes", "--service-account-issuer='https://kubernetes.default.svc'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feature := &KubeAPIOptionsFeature{}
			resources := testutil.NewClusterResources()

			resources.ApplyPatches(t, feature.Patches(), KubeAPIOptionsValues{KubeAPIOptions: []string{tt.flag}})

			files := findFile(resources.KubeadmControlPlaneTemplate.Spec.Template.Spec.KubeadmConfigSpec.Files, kustomizationPath)
			require.Len(t, files, 1)
			kustomization, err := domain.ParseKustomization([]byte(files[0].Content))
			require.NoError(t, err)
			ops, err := domain.ParseOperations(kustomization.Patches[0].Patch)
			require.NoError(t, err)
			require.Len(t, ops, 1)
			assert.Equal(t, domain.Literal{Value: tt.flag}, ops[0].Payload)

			pod := testutil.LoadPod(t, "kube-apiserver")
			testutil.ApplyPatch(t, pod, ops)
			command := pod.Spec.Containers[0].Command
			assert.Equal(t, tt.flag, command[len(command)-1])
		})
	}
}

func TestKubeAPIOptionsFeature_FlagPattern(t *testing.T) {
	variables := (&KubeAPIOptionsFeature{}).Variables()
	require.Len(t, variables, 1)
	require.NotNil(t, variables[0].Schema.Items)
	pattern := regexp.MustCompile(variables[0].Schema.Items.Pattern)

	tests := []struct {
		flag     string
		expected bool
	}{
		{"--audit-log-maxage=30", true},
		{"--oidc-username-prefix=oidc:", true},
		{"--service-account-issuer='https://kubernetes.default.svc'", true},
		{`--audit-policy-file="/etc/kubernetes/audit.yaml"`, false},
		{`--token-auth-file=C:\tokens.csv`, false},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.expected, pattern.MatchString(tt.flag))
		})
	}
}

func TestKubeAPIOptionsFeature_DoesNotTouchInfrastructure(t *testing.T) {
	feature := &KubeAPIOptionsFeature{}
	resources := testutil.NewClusterResources()
	base := testutil.NewClusterResources()

	resources.ApplyPatches(t, feature.Patches(), KubeAPIOptionsValues{KubeAPIOptions: []string{"--foo=1"}})

	assert.Equal(t, base.OpenStackClusterTemplate.Object, resources.OpenStackClusterTemplate.Object)
}

func TestKubeAPIOptionsFeature_OperationOrder(t *testing.T) {
	feature := &KubeAPIOptionsFeature{}

	patches := feature.Patches()

	require.Len(t, patches, 1)
	require.Len(t, patches[0].Definitions, 1)
	var paths []string
	for _, op := range patches[0].Definitions[0].JSONPatches {
		assert.Equal(t, domain.OpAdd, op.Op)
		paths = append(paths, op.Path)
	}
	assert.Equal(t, []string{
		"/spec/template/spec/kubeadmConfigSpec/files/-",
		"/spec/template/spec/kubeadmConfigSpec/preKubeadmCommands/-",
		"/spec/template/spec/kubeadmConfigSpec/postKubeadmCommands/-",
		"/spec/template/spec/kubeadmConfigSpec/postKubeadmCommands/-",
	}, paths)
	assert.Equal(t, domain.Literal{Value: copyManifestCommand}, patches[0].Definitions[0].JSONPatches[2].Payload)
	assert.Equal(t, domain.Literal{Value: kustomizeCommand}, patches[0].Definitions[0].JSONPatches[3].Payload)
	assert.NoError(t, patches[0].Validate())
}

func TestKubeAPIOptionsFeature_FileTemplateIsAFile(t *testing.T) {
	var file bootstrapv1.File

	require.NoError(t, json.Unmarshal([]byte(kubeAPIOptionsFile()), &file))

	assert.Equal(t, kustomizationPath, file.Path)
	assert.Contains(t, file.Content, "{{- range .kubeAPIOptions }}")
}

func TestKubeAPIOptionsFeature_VariablesMatchValues(t *testing.T) {
	feature := &KubeAPIOptionsFeature{}

	var names []string
	for _, v := range feature.Variables() {
		require.NoError(t, v.Validate())
		names = append(names, v.Name)
	}

	assert.ElementsMatch(t, domain.VariableNamesOf(KubeAPIOptionsValues{}), names)
}

func TestKubeAPIOptionsFeature_ReturnsFreshValues(t *testing.T) {
	feature := &KubeAPIOptionsFeature{}

	first := feature.Patches()
	first[0].Definitions[0].JSONPatches[1].Path = "/changed"

	assert.Equal(t, "/spec/template/spec/kubeadmConfigSpec/preKubeadmCommands/-", feature.Patches()[0].Definitions[0].JSONPatches[1].Path)
}
