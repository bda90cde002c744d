package handler

import (
	"fmt"
	"io"
	"os"

	"ccpatch/internal/cli/output"
	"ccpatch/internal/core"
	"ccpatch/internal/core/clusterclass"
	"ccpatch/internal/features"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

type RenderCommandHandler struct {
	configRepository core.ConfigRepository
	registry         *features.Registry
}

func ProvideRenderCommandHandler(
	configRepository core.ConfigRepository,
	registry *features.Registry,
) RenderCommandHandler {
	return RenderCommandHandler{
		configRepository: configRepository,
		registry:         registry,
	}
}

// Handle writes the ClusterClass carrying the configured features to out.
func (h *RenderCommandHandler) Handle(out io.Writer) error {
	config, err := h.configRepository.LoadConfig()
	if err != nil {
		return err
	}

	selected, err := h.registry.Select(config.Features)
	if err != nil {
		return err
	}
	for _, warning := range compositionWarnings(selected) {
		output.PrintWarning(os.Stderr, warning)
	}

	builder := clusterclass.NewBuilder()
	if err := builder.AddVariables(selected.Variables()...); err != nil {
		return fmt.Errorf("failed to add variables: %w", err)
	}
	if err := builder.AddPatches(selected.Patches()...); err != nil {
		return fmt.Errorf("failed to add patches: %w", err)
	}

	clusterClass := builder.Build(metav1.ObjectMeta{
		Name:      config.ClusterClass.Name,
		Namespace: config.ClusterClass.Namespace,
	})
	data, err := yaml.Marshal(clusterClass)
	if err != nil {
		return fmt.Errorf("failed to marshal ClusterClass: %w", err)
	}

	_, err = out.Write(data)
	return err
}
