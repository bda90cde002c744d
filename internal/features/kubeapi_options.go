package features

import (
	"ccpatch/internal/core/domain"

	"k8s.io/utils/ptr"
	bootstrapv1 "sigs.k8s.io/cluster-api/bootstrap/kubeadm/api/v1beta1"
	controlplanev1 "sigs.k8s.io/cluster-api/controlplane/kubeadm/api/v1beta1"
)

const (
	kubeAPIOptionsDir           = "/etc/kubernetes/kustomizations/kubeapi_options"
	kubeAPIOptionsKustomization = kubeAPIOptionsDir + "/kustomization.yml"
	kubeAPIServerManifest       = "/etc/kubernetes/manifests/kube-apiserver.yaml"

	kubeadmConfigSpecPath = "/spec/template/spec/kubeadmConfigSpec"
)

// kubeAPIOptionsPatch expands to one add operation per flag. It is rendered
// together with the file it is embedded in, so the node only sees plain ops.
// Each flag becomes a single-quoted YAML scalar. The template sits inside a
// JSON string when it is rendered, so its string literals are raw strings.
const kubeAPIOptionsPatch = `{{- range .kubeAPIOptions }}
- op: add
  path: /spec/containers/0/command/-
  value: '{{ . | replace ` + "`'` `''`" + ` }}'
{{ end -}}
`

// kubeAPIOptionPattern keeps flags out of reach of JSON escaping: the file
// payload is a JSON string, so a double quote or backslash in a flag would
// end it early.
const kubeAPIOptionPattern = `^[^"\\]*$`

// KubeAPIOptionsValues are the inputs of the kubeAPIOptions feature.
type KubeAPIOptionsValues struct {
	KubeAPIOptions []string `json:"kubeAPIOptions"`
}

// KubeAPIOptionsFeature appends extra command line flags to the kube-apiserver
// static pod. Kubeadm owns that manifest, so the flags are applied after
// kubeadm has run by rebuilding the manifest with kustomize on the node.
type KubeAPIOptionsFeature struct{}

var _ Feature = (*KubeAPIOptionsFeature)(nil)

func (f *KubeAPIOptionsFeature) Name() string {
	return "kubeAPIOptions"
}

func (f *KubeAPIOptionsFeature) Variables() []domain.Variable {
	return []domain.Variable{
		{
			Name:     "kubeAPIOptions",
			Required: false,
			Schema: domain.Schema{
				Type:        "array",
				Description: "Extra command line flags for kube-apiserver, such as --audit-log-maxage=30.",
				Items:       &domain.Schema{Type: "string", Pattern: kubeAPIOptionPattern},
				Default:     []interface{}{},
			},
		},
	}
}

func (f *KubeAPIOptionsFeature) Patches() []domain.Patch {
	return []domain.Patch{
		{
			Name:        "kubeAPIOptions",
			Description: "Adds kubeAPIOptions to the kube-apiserver command.",
			EnabledIf:   ptr.To(`{{ if and .kubeAPIOptions (index .kubeAPIOptions 0) }}true{{ end }}`),
			Definitions: []domain.Definition{
				{
					Selector: domain.Selector{
						APIVersion: controlplanev1.GroupVersion.String(),
						Kind:       "KubeadmControlPlaneTemplate",
						MatchResources: domain.MatchResources{
							ControlPlane: true,
						},
					},
					JSONPatches: []domain.JSONPatch{
						{
							Op:      domain.OpAdd,
							Path:    kubeadmConfigSpecPath + "/files/-",
							Payload: domain.Template{Template: kubeAPIOptionsFile()},
						},
						{
							Op:      domain.OpAdd,
							Path:    kubeadmConfigSpecPath + "/preKubeadmCommands/-",
							Payload: domain.Literal{Value: "mkdir -p " + kubeAPIOptionsDir},
						},
						{
							Op:      domain.OpAdd,
							Path:    kubeadmConfigSpecPath + "/postKubeadmCommands/-",
							Payload: domain.Literal{Value: "cp " + kubeAPIServerManifest + " " + kubeAPIOptionsDir + "/kube-apiserver.yaml"},
						},
						{
							Op:      domain.OpAdd,
							Path:    kubeadmConfigSpecPath + "/postKubeadmCommands/-",
							Payload: domain.Literal{Value: "kubectl kustomize " + kubeAPIOptionsDir + " -o " + kubeAPIServerManifest},
						},
					},
				},
			},
		},
	}
}

// kubeAPIOptionsFile is the kubeadm file holding the kustomization, encoded
// as JSON so it can be used as a template payload.
func kubeAPIOptionsFile() string {
	kustomization := domain.Kustomization{
		Resources: []string{"kube-apiserver.yaml"},
		Patches: []domain.KustomizationPatch{
			{
				Target: domain.KustomizationTarget{
					Group:   "",
					Version: "v1",
					Kind:    "Pod",
					Name:    "kube-apiserver",
				},
				Patch: kubeAPIOptionsPatch,
			},
		},
	}
	content, err := kustomization.Marshal()
	if err != nil {
		panic(err)
	}

	return mustMarshalJSON(bootstrapv1.File{
		Path:        kubeAPIOptionsKustomization,
		Owner:       "root:root",
		Permissions: "0644",
		Content:     string(content),
	})
}
