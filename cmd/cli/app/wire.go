//go:build wireinject
// +build wireinject

package app

import (
	"ccpatch/internal/adapters/filesystem"
	"ccpatch/internal/adapters/kustomize"
	"ccpatch/internal/adapters/templater"
	"ccpatch/internal/core"
	"ccpatch/internal/core/engine"
	"ccpatch/internal/core/handler"
	"ccpatch/internal/features"
	"ccpatch/internal/ports"

	"github.com/google/wire"
)

var Adapter = wire.NewSet(
	kustomize.ProvideKustomizeClient,
	wire.Bind(new(ports.KustomizeClient), new(*kustomize.Client)),
	filesystem.ProvideOsFileSystem,
	wire.Bind(new(ports.FileSystem), new(*filesystem.OsFileSystem)),
	templater.ProvideTextTemplater,
)

// CoreSet provides domain/core dependencies
var CoreSet = wire.NewSet(
	core.ProvideFileSystemConfigRepository,
	wire.Bind(new(core.ConfigRepository), new(*core.FileSystemConfigRepository)),
	engine.ProvideEngine,
	features.ProvideRegistry,
)

// CommandHandlerSet combines all sets needed for command handlers
var CommandHandlerSet = wire.NewSet(
	Adapter,
	CoreSet,
)

func InjectConfigRepo(configPath core.ConfigPath) (core.ConfigRepository, error) {
	wire.Build(
		Adapter,
		core.ProvideFileSystemConfigRepository,
		wire.Bind(new(core.ConfigRepository), new(*core.FileSystemConfigRepository)),
	)
	return &core.FileSystemConfigRepository{}, nil
}

func InjectRenderCommandHandler(configPath core.ConfigPath) (handler.RenderCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvideRenderCommandHandler,
	)
	return handler.RenderCommandHandler{}, nil
}

func InjectFeaturesCommandHandler(configPath core.ConfigPath) (handler.FeaturesCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvideFeaturesCommandHandler,
	)
	return handler.FeaturesCommandHandler{}, nil
}

func InjectPreviewCommandHandler(configPath core.ConfigPath) (handler.PreviewCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvidePreviewCommandHandler,
	)
	return handler.PreviewCommandHandler{}, nil
}

func InjectInitializeCommandHandler(configPath core.ConfigPath) (handler.InitializeCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvideInitializeCommandHandler,
	)
	return handler.InitializeCommandHandler{}, nil
}

func InjectShowValuesCommandHandler(configPath core.ConfigPath) (handler.ShowValuesCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvideShowValuesCommandHandler,
	)
	return handler.ShowValuesCommandHandler{}, nil
}
