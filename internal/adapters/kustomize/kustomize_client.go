package kustomize

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"ccpatch/internal/core/domain"
	"ccpatch/internal/ports"

	"sigs.k8s.io/kustomize/api/krusty"
	"sigs.k8s.io/kustomize/kyaml/filesys"
)

var _ ports.KustomizeClient = (*Client)(nil)

const workDir = "/kustomization"

// Client implements ports.KustomizeClient with the kustomize library on an
// in-memory file system, the same build `kubectl kustomize` runs on a node.
type Client struct {
	options *krusty.Options
}

// ProvideKustomizeClient creates a KustomizeClient for Wire dependency injection.
func ProvideKustomizeClient() *Client {
	return &Client{options: krusty.MakeDefaultOptions()}
}

func (c *Client) Build(kustomization []byte, files map[string][]byte) ([]byte, error) {
	parsed, err := domain.ParseKustomization(kustomization)
	if err != nil {
		return nil, err
	}
	for _, resource := range parsed.Resources {
		if _, ok := files[resource]; !ok {
			return nil, fmt.Errorf("resource %s is not provided", resource)
		}
	}

	fSys := filesys.MakeFsInMemory()
	if err := fSys.MkdirAll(workDir); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(name, "/") || name == ".." {
			return nil, fmt.Errorf("resource name %q must be a plain file name", name)
		}
		if err := fSys.WriteFile(path.Join(workDir, name), files[name]); err != nil {
			return nil, fmt.Errorf("failed to write resource %s: %w", name, err)
		}
	}

	if err := fSys.WriteFile(path.Join(workDir, "kustomization.yml"), kustomization); err != nil {
		return nil, fmt.Errorf("failed to write kustomization.yml: %w", err)
	}

	resMap, err := krusty.MakeKustomizer(c.options).Run(fSys, workDir)
	if err != nil {
		return nil, fmt.Errorf("kustomize build failed: %w", err)
	}

	output, err := resMap.AsYaml()
	if err != nil {
		return nil, fmt.Errorf("failed to render kustomize output: %w", err)
	}
	return output, nil
}
