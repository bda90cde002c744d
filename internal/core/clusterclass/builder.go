package clusterclass

import (
	"fmt"
	"time"

	"ccpatch/internal/core/domain"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"
	clusterv1 "sigs.k8s.io/cluster-api/api/v1beta1"
	bootstrapv1 "sigs.k8s.io/cluster-api/bootstrap/kubeadm/api/v1beta1"
	controlplanev1 "sigs.k8s.io/cluster-api/controlplane/kubeadm/api/v1beta1"
)

const DefaultWorkerClass = "default-worker"

// Builder collects feature variables and patches, in the order they are
// added, into a ClusterClass.
type Builder struct {
	variables []clusterv1.ClusterClassVariable
	patches   []clusterv1.ClusterClassPatch
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) AddVariables(vars ...domain.Variable) error {
	for _, v := range vars {
		converted, err := ToClusterClassVariable(v)
		if err != nil {
			return err
		}
		b.variables = append(b.variables, converted)
	}
	return nil
}

func (b *Builder) AddPatches(patches ...domain.Patch) error {
	for _, p := range patches {
		converted, err := ToClusterClassPatch(p)
		if err != nil {
			return err
		}
		b.patches = append(b.patches, converted)
	}
	return nil
}

func (b *Builder) Build(metadata metav1.ObjectMeta) clusterv1.ClusterClass {
	ref := func(gvk schema.GroupVersionKind) *corev1.ObjectReference {
		return &corev1.ObjectReference{
			APIVersion: gvk.GroupVersion().String(),
			Kind:       gvk.Kind,
			Name:       metadata.Name,
			Namespace:  metadata.Namespace,
		}
	}
	openStack := func(kind string) schema.GroupVersionKind {
		return schema.FromAPIVersionAndKind(InfrastructureAPIVersion, kind)
	}

	return clusterv1.ClusterClass{
		TypeMeta: metav1.TypeMeta{
			APIVersion: clusterv1.GroupVersion.String(),
			Kind:       "ClusterClass",
		},
		ObjectMeta: metadata,
		Spec: clusterv1.ClusterClassSpec{
			Infrastructure: clusterv1.LocalObjectTemplate{
				Ref: ref(openStack(OpenStackClusterTemplateKind)),
			},
			ControlPlane: clusterv1.ControlPlaneClass{
				LocalObjectTemplate: clusterv1.LocalObjectTemplate{
					Ref: ref(groupVersionKind(&controlplanev1.KubeadmControlPlaneTemplate{})),
				},
				MachineInfrastructure: &clusterv1.LocalObjectTemplate{
					Ref: ref(openStack(OpenStackMachineTemplateKind)),
				},
				MachineHealthCheck:      machineHealthCheck(),
				NodeVolumeDetachTimeout: &metav1.Duration{Duration: 5 * time.Minute},
			},
			Workers: clusterv1.WorkersClass{
				MachineDeployments: []clusterv1.MachineDeploymentClass{
					{
						Class: DefaultWorkerClass,
						Template: clusterv1.MachineDeploymentClassTemplate{
							Bootstrap: clusterv1.LocalObjectTemplate{
								Ref: ref(groupVersionKind(&bootstrapv1.KubeadmConfigTemplate{})),
							},
							Infrastructure: clusterv1.LocalObjectTemplate{
								Ref: ref(openStack(OpenStackMachineTemplateKind)),
							},
						},
						MachineHealthCheck:      machineHealthCheck(),
						NodeVolumeDetachTimeout: &metav1.Duration{Duration: 5 * time.Minute},
					},
				},
			},
			Variables: append([]clusterv1.ClusterClassVariable(nil), b.variables...),
			Patches:   append([]clusterv1.ClusterClassPatch(nil), b.patches...),
		},
	}
}

func machineHealthCheck() *clusterv1.MachineHealthCheckClass {
	return &clusterv1.MachineHealthCheckClass{
		UnhealthyConditions: []clusterv1.UnhealthyCondition{
			{
				Type:    "Ready",
				Timeout: metav1.Duration{Duration: 5 * time.Minute},
				Status:  "False",
			},
			{
				Type:    "Ready",
				Timeout: metav1.Duration{Duration: 5 * time.Minute},
				Status:  "Unknown",
			},
		},
		MaxUnhealthy: ptr.To(intstr.FromString("80%")),
	}
}

var scheme = func() *runtime.Scheme {
	s := runtime.NewScheme()
	for _, add := range []func(*runtime.Scheme) error{
		clusterv1.AddToScheme,
		bootstrapv1.AddToScheme,
		controlplanev1.AddToScheme,
	} {
		if err := add(s); err != nil {
			panic(fmt.Sprintf("failed to build scheme: %v", err))
		}
	}
	return s
}()

func groupVersionKind(obj runtime.Object) schema.GroupVersionKind {
	gvks, _, err := scheme.ObjectKinds(obj)
	if err != nil {
		panic(err)
	}
	return gvks[0]
}
