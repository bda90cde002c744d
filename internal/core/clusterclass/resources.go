package clusterclass

import (
	"fmt"
	"strings"

	"ccpatch/internal/core/engine"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	bootstrapv1 "sigs.k8s.io/cluster-api/bootstrap/kubeadm/api/v1beta1"
	controlplanev1 "sigs.k8s.io/cluster-api/controlplane/kubeadm/api/v1beta1"
)

// OpenStack infrastructure provider templates.
const (
	InfrastructureAPIVersion     = "infrastructure.cluster.x-k8s.io/v1beta1"
	OpenStackClusterTemplateKind = "OpenStackClusterTemplate"
	OpenStackMachineTemplateKind = "OpenStackMachineTemplate"
)

const templateName = "ccpatch"

// DefaultKubeadmControlPlaneTemplate is the base control plane template
// features patch. Lists features append to are never empty.
func DefaultKubeadmControlPlaneTemplate() controlplanev1.KubeadmControlPlaneTemplate {
	return controlplanev1.KubeadmControlPlaneTemplate{
		TypeMeta: metav1.TypeMeta{
			APIVersion: controlplanev1.GroupVersion.String(),
			Kind:       "KubeadmControlPlaneTemplate",
		},
		ObjectMeta: metav1.ObjectMeta{Name: templateName},
		Spec: controlplanev1.KubeadmControlPlaneTemplateSpec{
			Template: controlplanev1.KubeadmControlPlaneTemplateResource{
				Spec: controlplanev1.KubeadmControlPlaneTemplateResourceSpec{
					KubeadmConfigSpec: kubeadmConfigSpec(),
				},
			},
		},
	}
}

// DefaultKubeadmConfigTemplate is the base bootstrap template of workers.
func DefaultKubeadmConfigTemplate() bootstrapv1.KubeadmConfigTemplate {
	return bootstrapv1.KubeadmConfigTemplate{
		TypeMeta: metav1.TypeMeta{
			APIVersion: bootstrapv1.GroupVersion.String(),
			Kind:       "KubeadmConfigTemplate",
		},
		ObjectMeta: metav1.ObjectMeta{Name: templateName},
		Spec: bootstrapv1.KubeadmConfigTemplateSpec{
			Template: bootstrapv1.KubeadmConfigTemplateResource{
				Spec: kubeadmConfigSpec(),
			},
		},
	}
}

func kubeadmConfigSpec() bootstrapv1.KubeadmConfigSpec {
	return bootstrapv1.KubeadmConfigSpec{
		ClusterConfiguration: &bootstrapv1.ClusterConfiguration{
			APIServer: bootstrapv1.APIServer{
				ControlPlaneComponent: bootstrapv1.ControlPlaneComponent{
					ExtraArgs: map[string]string{"cloud-provider": "external"},
				},
			},
		},
		Files: []bootstrapv1.File{
			{
				Path:        "/etc/kubernetes/cloud.conf",
				Owner:       "root:root",
				Permissions: "0600",
				ContentFrom: &bootstrapv1.FileSource{
					Secret: bootstrapv1.SecretFileSource{Name: "cloud-config", Key: "cloud.conf"},
				},
			},
		},
		PreKubeadmCommands:  []string{"rm -rf /var/lib/etcd/lost+found"},
		PostKubeadmCommands: []string{"chmod 600 /etc/kubernetes/admin.conf"},
	}
}

// DefaultOpenStackClusterTemplate is the base infrastructure cluster template.
func DefaultOpenStackClusterTemplate() *unstructured.Unstructured {
	nodePortRule := func(protocol string) map[string]interface{} {
		return map[string]interface{}{
			"name":           fmt.Sprintf("Node Port (%s, anywhere)", strings.ToUpper(protocol)),
			"direction":      "ingress",
			"etherType":      "IPv4",
			"portRangeMin":   int64(30000),
			"portRangeMax":   int64(32767),
			"protocol":       protocol,
			"remoteIPPrefix": "0.0.0.0/0",
		}
	}

	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": InfrastructureAPIVersion,
		"kind":       OpenStackClusterTemplateKind,
		"metadata":   map[string]interface{}{"name": templateName},
		"spec": map[string]interface{}{
			"template": map[string]interface{}{
				"spec": map[string]interface{}{
					"apiServerLoadBalancer": map[string]interface{}{},
					"identityRef": map[string]interface{}{
						"name":      "PLACEHOLDER",
						"cloudName": "default",
					},
					"managedSecurityGroups": map[string]interface{}{
						"allowAllInClusterTraffic": true,
						"allNodesSecurityGroupRules": []interface{}{
							nodePortRule("udp"),
							nodePortRule("tcp"),
						},
					},
				},
			},
		},
	}}
}

// DefaultOpenStackMachineTemplate is the base machine template shared by
// control plane and worker machines.
func DefaultOpenStackMachineTemplate() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": InfrastructureAPIVersion,
		"kind":       OpenStackMachineTemplateKind,
		"metadata":   map[string]interface{}{"name": templateName},
		"spec": map[string]interface{}{
			"template": map[string]interface{}{
				"spec": map[string]interface{}{
					"flavor": "PLACEHOLDER",
					"image": map[string]interface{}{
						"filter": map[string]interface{}{"name": "PLACEHOLDER"},
					},
				},
			},
		},
	}}
}

// DefaultResources returns every base template of the ClusterClass with the
// role it holds.
func DefaultResources() ([]engine.Resource, error) {
	controlPlane := DefaultKubeadmControlPlaneTemplate()
	controlPlaneObject, err := ToUnstructured(&controlPlane)
	if err != nil {
		return nil, err
	}
	workerBootstrap := DefaultKubeadmConfigTemplate()
	workerBootstrapObject, err := ToUnstructured(&workerBootstrap)
	if err != nil {
		return nil, err
	}

	return []engine.Resource{
		{Role: engine.RoleInfrastructureCluster, Object: DefaultOpenStackClusterTemplate()},
		{Role: engine.RoleControlPlane, Object: controlPlaneObject},
		{Role: engine.RoleControlPlaneMachineInfrastructure, Object: DefaultOpenStackMachineTemplate()},
		{Role: engine.RoleMachineDeploymentBootstrap, Class: DefaultWorkerClass, Object: workerBootstrapObject},
		{Role: engine.RoleMachineDeploymentInfrastructure, Class: DefaultWorkerClass, Object: DefaultOpenStackMachineTemplate()},
	}, nil
}

func ToUnstructured(obj runtime.Object) (*unstructured.Unstructured, error) {
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %T: %w", obj, err)
	}
	return &unstructured.Unstructured{Object: content}, nil
}

func FromUnstructured(u *unstructured.Unstructured, obj runtime.Object) error {
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(u.Object, obj); err != nil {
		return fmt.Errorf("failed to convert %s: %w", u.GetKind(), err)
	}
	return nil
}
