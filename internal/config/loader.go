package config

import (
	"fmt"
	"os"
	"path/filepath"

	"jstestctl/internal/network"
	"jstestctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/jstestctl"
	projectConfigDir = ".jstestctl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the jstestctl configuration by layering default, user, and project settings.
func LoadConfig() (JstestctlConfig, error) {
	return LoadConfigWithFile("")
}

// LoadConfigWithFile is LoadConfig with an additional explicit file layered
// on top of the project configuration. An empty path adds nothing.
func LoadConfigWithFile(explicitPath string) (JstestctlConfig, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User-specific configuration
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else if config, err = layerIfExists(config, userConfigPath); err != nil {
		return JstestctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	// 3. Project-specific configuration
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else if config, err = layerIfExists(config, projectConfigPath); err != nil {
		return JstestctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	// 4. Explicit file, which must exist
	if explicitPath != "" {
		explicitConfig, err := loadConfigFromFile(explicitPath)
		if err != nil {
			return JstestctlConfig{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
		config = mergeConfigs(config, explicitConfig)
	}

	config.expandEnv()
	if err := config.Validate(); err != nil {
		return JstestctlConfig{}, err
	}
	return config, nil
}

func layerIfExists(config JstestctlConfig, path string) (JstestctlConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return config, err
	}
	logging.Debug("Config", "Loaded configuration layer %s", path)
	return mergeConfigs(config, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a JstestctlConfig from a YAML file.
func loadConfigFromFile(filePath string) (JstestctlConfig, error) {
	var config JstestctlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return JstestctlConfig{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return JstestctlConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in
// the overlay leave the base untouched.
func mergeConfigs(base, overlay JstestctlConfig) JstestctlConfig {
	merged := base

	if overlay.Shell.Executable != "" {
		merged.Shell.Executable = overlay.Shell.Executable
	}
	if overlay.Mongod.Executable != "" {
		merged.Mongod.Executable = overlay.Mongod.Executable
	}
	if overlay.Mongos.Executable != "" {
		merged.Mongos.Executable = overlay.Mongos.Executable
	}
	if overlay.DbpathPrefix != "" {
		merged.DbpathPrefix = overlay.DbpathPrefix
	}
	if overlay.RunnerSubdir != "" {
		merged.RunnerSubdir = overlay.RunnerSubdir
	}
	if overlay.Ports.Base != 0 {
		merged.Ports.Base = overlay.Ports.Base
	}
	if overlay.Ports.Max != 0 {
		merged.Ports.Max = overlay.Ports.Max
	}
	if overlay.Jobs != 0 {
		merged.Jobs = overlay.Jobs
	}
	if overlay.NumClients != 0 {
		merged.NumClients = overlay.NumClients
	}
	// Only when explicitly set in overlay
	if overlay.FailOnNonZeroExit != nil {
		v := *overlay.FailOnNonZeroExit
		merged.FailOnNonZeroExit = &v
	}
	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.Format != "" {
		merged.Logging.Format = overlay.Logging.Format
	}

	return merged
}

// expandEnv expands ${VAR} references in path-like settings.
func (c *JstestctlConfig) expandEnv() {
	c.Shell.Executable = os.ExpandEnv(c.Shell.Executable)
	c.Mongod.Executable = os.ExpandEnv(c.Mongod.Executable)
	c.Mongos.Executable = os.ExpandEnv(c.Mongos.Executable)
	c.DbpathPrefix = os.ExpandEnv(c.DbpathPrefix)
}

// Validate checks the settings that cannot be fixed up later.
func (c JstestctlConfig) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.NumClients < 0 {
		return fmt.Errorf("numClients must not be negative, got %d", c.NumClients)
	}
	if _, err := network.NewPortAllocator(c.Ports.Base, c.Ports.Max, c.Jobs); err != nil {
		return fmt.Errorf("invalid ports: %w", err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	switch logging.Format(c.Logging.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid logging.format %q, expected text or json", c.Logging.Format)
	}
	return nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
