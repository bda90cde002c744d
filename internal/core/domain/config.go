package domain

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// ClusterClassConfig names the ClusterClass produced by render.
type ClusterClassConfig struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
}

// Config holds the project configuration read from ccpatch.yaml
type Config struct {
	ClusterClass ClusterClassConfig `yaml:"clusterClass"`
	// Features selects registered features by name; empty keeps all of them.
	Features []string `yaml:"features,omitempty"`
	// Values are default variable values used by preview.
	Values map[string]interface{} `yaml:"values,omitempty"`
}

func CreateDefaultConfig() Config {
	return Config{
		ClusterClass: ClusterClassConfig{
			Name:      "ccpatch",
			Namespace: "default",
		},
		Features: []string{"kubeAPIOptions", "apiServerLoadBalancer"},
		Values: map[string]interface{}{
			"kubeAPIOptions": []interface{}{},
			"apiServerLoadBalancer": map[string]interface{}{
				"enabled":  true,
				"provider": "amphora",
			},
		},
	}
}

func (c *Config) Validate() error {
	if errs := validation.IsDNS1123Subdomain(c.ClusterClass.Name); len(errs) > 0 {
		return fmt.Errorf("clusterClass name %q is invalid: %s", c.ClusterClass.Name, strings.Join(errs, ", "))
	}
	if errs := validation.IsDNS1123Label(c.ClusterClass.Namespace); len(errs) > 0 {
		return fmt.Errorf("clusterClass namespace %q is invalid: %s", c.ClusterClass.Namespace, strings.Join(errs, ", "))
	}

	seen := make(map[string]bool, len(c.Features))
	for i, name := range c.Features {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("feature at index %d is empty", i)
		}
		if seen[name] {
			return fmt.Errorf("feature '%s' is listed more than once", name)
		}
		seen[name] = true
	}

	for key := range c.Values {
		if key == "" {
			return fmt.Errorf("values contain an empty variable name")
		}
	}

	return nil
}
