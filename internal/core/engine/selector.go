package engine

import (
	"strings"

	"ccpatch/internal/core/domain"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Role is the place a template holds in the ClusterClass.
type Role string

const (
	RoleInfrastructureCluster             Role = "InfrastructureCluster"
	RoleControlPlane                      Role = "ControlPlane"
	RoleControlPlaneMachineInfrastructure Role = "ControlPlaneMachineInfrastructure"
	RoleMachineDeploymentBootstrap        Role = "MachineDeploymentBootstrap"
	RoleMachineDeploymentInfrastructure   Role = "MachineDeploymentInfrastructure"
)

// Resource is a template patches are applied to. Class is the machine
// deployment class name and is only set for machine deployment roles.
type Resource struct {
	Role   Role
	Class  string
	Object *unstructured.Unstructured
}

func (r Resource) deepCopy() Resource {
	out := r
	if r.Object != nil {
		out.Object = r.Object.DeepCopy()
	}
	return out
}

func matchesSelector(selector domain.Selector, resource Resource) bool {
	if resource.Object == nil {
		return false
	}
	if resource.Object.GetAPIVersion() != selector.APIVersion || resource.Object.GetKind() != selector.Kind {
		return false
	}

	match := selector.MatchResources
	switch resource.Role {
	case RoleInfrastructureCluster:
		return match.InfrastructureCluster
	case RoleControlPlane, RoleControlPlaneMachineInfrastructure:
		return match.ControlPlane
	case RoleMachineDeploymentBootstrap, RoleMachineDeploymentInfrastructure:
		return match.MachineDeploymentClass != nil && matchesClassName(match.MachineDeploymentClass.Names, resource.Class)
	}
	return false
}

func matchesClassName(names []string, class string) bool {
	for _, name := range names {
		switch {
		case name == "*", name == class:
			return true
		case strings.HasPrefix(name, "*") && strings.HasSuffix(class, strings.TrimPrefix(name, "*")):
			return true
		case strings.HasSuffix(name, "*") && strings.HasPrefix(class, strings.TrimSuffix(name, "*")):
			return true
		}
	}
	return false
}
