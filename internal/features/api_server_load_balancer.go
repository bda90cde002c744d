package features

import (
	"ccpatch/internal/core/clusterclass"
	"ccpatch/internal/core/domain"
)

type APIServerLoadBalancerValues struct {
	APIServerLoadBalancer APIServerLoadBalancer `json:"apiServerLoadBalancer"`
}

type APIServerLoadBalancer struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider,omitempty"`
}

// APIServerLoadBalancerFeature sets the load balancer in front of the
// Kubernetes API on the OpenStack cluster template.
type APIServerLoadBalancerFeature struct{}

var _ Feature = (*APIServerLoadBalancerFeature)(nil)

func (f *APIServerLoadBalancerFeature) Name() string {
	return "apiServerLoadBalancer"
}

func (f *APIServerLoadBalancerFeature) Variables() []domain.Variable {
	return []domain.Variable{
		{
			Name:     "apiServerLoadBalancer",
			Required: true,
			Schema: domain.Schema{
				Type: "object",
				Properties: map[string]domain.Schema{
					"enabled":  {Type: "boolean"},
					"provider": {Type: "string"},
				},
				Required: []string{"enabled"},
			},
		},
	}
}

func (f *APIServerLoadBalancerFeature) Patches() []domain.Patch {
	return []domain.Patch{
		{
			Name: "apiServerLoadBalancer",
			Definitions: []domain.Definition{
				{
					Selector: domain.Selector{
						APIVersion: clusterclass.InfrastructureAPIVersion,
						Kind:       clusterclass.OpenStackClusterTemplateKind,
						MatchResources: domain.MatchResources{
							InfrastructureCluster: true,
						},
					},
					JSONPatches: []domain.JSONPatch{
						{
							Op:      domain.OpAdd,
							Path:    "/spec/template/spec/apiServerLoadBalancer",
							Payload: domain.VariableRef{Variable: "apiServerLoadBalancer"},
						},
					},
				},
			},
		},
	}
}
