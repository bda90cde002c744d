package handler

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"ccpatch/internal/cli/output"
	"ccpatch/internal/core"
	"ccpatch/internal/core/clusterclass"
	"ccpatch/internal/core/domain"
	"ccpatch/internal/core/engine"
	"ccpatch/internal/features"
	"ccpatch/internal/ports"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

const kustomizationsDir = "/etc/kubernetes/kustomizations/"

// kubeadm config spec locations of the two bootstrap templates.
var filesPaths = map[engine.Role][]string{
	engine.RoleControlPlane:               {"spec", "template", "spec", "kubeadmConfigSpec", "files"},
	engine.RoleMachineDeploymentBootstrap: {"spec", "template", "spec", "files"},
}

type PreviewOptions struct {
	// ValuesPath is a YAML file overlaid on the configured values.
	ValuesPath string
	// Manifests maps a kustomization resource name to a local file.
	Manifests map[string]string
}

type PreviewCommandHandler struct {
	configRepository core.ConfigRepository
	registry         *features.Registry
	engine           *engine.Engine
	kustomizeClient  ports.KustomizeClient
	fileSystem       ports.FileSystem
}

func ProvidePreviewCommandHandler(
	configRepository core.ConfigRepository,
	registry *features.Registry,
	engine *engine.Engine,
	kustomizeClient ports.KustomizeClient,
	fileSystem ports.FileSystem,
) PreviewCommandHandler {
	return PreviewCommandHandler{
		configRepository: configRepository,
		registry:         registry,
		engine:           engine,
		kustomizeClient:  kustomizeClient,
		fileSystem:       fileSystem,
	}
}

// Handle applies the configured features to the base templates, as the
// topology controller would, and writes the patched templates to out. Every
// generated kustomization whose resources are supplied in opts.Manifests is
// then built the way the node builds it after kubeadm ran.
func (h *PreviewCommandHandler) Handle(ctx context.Context, out io.Writer, opts PreviewOptions) error {
	config, err := h.configRepository.LoadConfig()
	if err != nil {
		return err
	}
	selected, err := h.registry.Select(config.Features)
	if err != nil {
		return err
	}
	values, err := h.configRepository.LoadValues(opts.ValuesPath)
	if err != nil {
		return err
	}

	resources, err := clusterclass.DefaultResources()
	if err != nil {
		return err
	}
	patched, err := h.engine.Apply(ctx, selected.Patches(), resources, values)
	if err != nil {
		return err
	}

	for _, resource := range patched {
		data, err := yaml.Marshal(resource.Object.Object)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", resource.Object.GetKind(), err)
		}
		fmt.Fprintf(out, "---\n# %s\n%s", resource.Role, data)
	}

	for _, resource := range patched {
		kustomizations, err := kustomizationFiles(resource)
		if err != nil {
			return err
		}
		for _, file := range kustomizations {
			if err := h.build(out, file, opts.Manifests); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *PreviewCommandHandler) build(out io.Writer, file kustomizationFile, manifests map[string]string) error {
	kustomization, err := domain.ParseKustomization([]byte(file.content))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file.path, err)
	}

	files := make(map[string][]byte, len(kustomization.Resources))
	for _, name := range kustomization.Resources {
		manifestPath, ok := manifests[name]
		if !ok {
			output.PrintInfo(os.Stderr, fmt.Sprintf("skipping %s: no manifest supplied for %s", file.path, name))
			return nil
		}
		data, err := h.fileSystem.ReadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("failed to read manifest %s: %w", manifestPath, err)
		}
		files[name] = data
	}

	built, err := h.kustomizeClient.Build([]byte(file.content), files)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", file.path, err)
	}
	fmt.Fprintf(out, "---\n# %s\n%s", file.path, built)
	return nil
}

type kustomizationFile struct {
	path    string
	content string
}

func kustomizationFiles(resource engine.Resource) ([]kustomizationFile, error) {
	fields, ok := filesPaths[resource.Role]
	if !ok {
		return nil, nil
	}
	files, found, err := unstructured.NestedSlice(resource.Object.Object, fields...)
	if err != nil {
		return nil, fmt.Errorf("failed to read files of %s: %w", resource.Object.GetKind(), err)
	}
	if !found {
		return nil, nil
	}

	var result []kustomizationFile
	for _, f := range files {
		file, ok := f.(map[string]interface{})
		if !ok {
			continue
		}
		path, _, _ := unstructured.NestedString(file, "path")
		content, _, _ := unstructured.NestedString(file, "content")
		if strings.HasPrefix(path, kustomizationsDir) && strings.HasSuffix(path, "/kustomization.yml") && content != "" {
			result = append(result, kustomizationFile{path: path, content: content})
		}
	}
	return result, nil
}
