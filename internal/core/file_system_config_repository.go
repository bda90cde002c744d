package core

import (
	"fmt"
	"os"

	"ccpatch/internal/core/domain"
	"ccpatch/internal/ports"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the location of ccpatch.yaml.
type ConfigPath string

const DefaultConfigPath ConfigPath = "ccpatch.yaml"

type ConfigRepository interface {
	LoadConfig() (*domain.Config, error)
	SaveConfig(*domain.Config) error
	ConfigExists() (bool, error)
	InitConfig() error
	LoadValues(path string) (map[string]interface{}, error)
}

type FileSystemConfigRepository struct {
	fileService ports.FileSystem
	configPath  string
	config      *domain.Config
}

func ProvideFileSystemConfigRepository(
	fileService ports.FileSystem,
	configPath ConfigPath,
) *FileSystemConfigRepository {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return &FileSystemConfigRepository{
		fileService: fileService,
		configPath:  string(configPath),
	}
}

// LoadConfig reads and validates the config file. A missing file yields the
// default configuration.
func (c *FileSystemConfigRepository) LoadConfig() (*domain.Config, error) {
	if c.config != nil {
		return c.config, nil
	}

	exists, err := c.fileService.FileExists(c.configPath)
	if err != nil {
		return nil, err
	}

	config := domain.CreateDefaultConfig()
	if exists {
		data, err := c.fileService.ReadFile(c.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		config = domain.Config{}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "WARN: %s not found, using the default configuration\n", c.configPath)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c.config = &config
	return &config, nil
}

func (c *FileSystemConfigRepository) SaveConfig(config *domain.Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return c.fileService.WriteFile(c.configPath, data, ports.ReadAllWriteOwner)
}

func (c *FileSystemConfigRepository) ConfigExists() (bool, error) {
	return c.fileService.FileExists(c.configPath)
}

func (c *FileSystemConfigRepository) InitConfig() error {
	fileExists, err := c.fileService.FileExists(c.configPath)
	if err != nil {
		return err
	}
	if fileExists {
		return fmt.Errorf("configuration file already exists at %s", c.configPath)
	}

	config := domain.CreateDefaultConfig()
	return c.SaveConfig(&config)
}

// LoadValues returns the configured values overlaid with the values file at
// path. An empty path returns the configured values only.
func (c *FileSystemConfigRepository) LoadValues(path string) (map[string]interface{}, error) {
	config, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}
	values := mergeValues(map[string]interface{}{}, config.Values)
	if path == "" {
		return values, nil
	}

	data, err := c.fileService.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file %s: %w", path, err)
	}
	var overlay map[string]interface{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse values file %s: %w", path, err)
	}

	return mergeValues(values, overlay), nil
}

// mergeValues merges overlay into base. Nested maps merge key by key; any
// other overlay value replaces the base value, lists included.
func mergeValues(base map[string]interface{}, overlay map[string]interface{}) map[string]interface{} {
	for key, value := range overlay {
		overlayMap, overlayIsMap := value.(map[string]interface{})
		baseMap, baseIsMap := base[key].(map[string]interface{})
		if overlayIsMap && baseIsMap {
			base[key] = mergeValues(copyValues(baseMap), overlayMap)
			continue
		}
		base[key] = value
	}
	return base
}

func copyValues(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
