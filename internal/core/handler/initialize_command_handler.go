package handler

import (
	"fmt"
	"io"

	"ccpatch/internal/cli/output"
	"ccpatch/internal/core"
	"ccpatch/internal/core/domain"
)

type InitializeCommandHandler struct {
	configRepository core.ConfigRepository
}

func ProvideInitializeCommandHandler(
	configRepository core.ConfigRepository,
) InitializeCommandHandler {
	return InitializeCommandHandler{
		configRepository: configRepository,
	}
}

func (h *InitializeCommandHandler) Handle(out io.Writer) error {
	configExists, err := h.configRepository.ConfigExists()
	if err != nil {
		return err
	}
	if configExists {
		return fmt.Errorf("configuration already exists")
	}
	config := domain.CreateDefaultConfig()
	err = h.configRepository.SaveConfig(&config)
	if err != nil {
		return err
	}

	output.PrintSuccess(out, fmt.Sprintf("Wrote configuration for ClusterClass %s", config.ClusterClass.Name))
	return nil
}
