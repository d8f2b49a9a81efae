package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the reporter configuration
type Config struct {
	Output    string        `yaml:"output,omitempty"`    // XML report path
	SuiteName string        `yaml:"suiteName,omitempty"` // testsuite name attribute
	NoColor   *bool         `yaml:"noColor,omitempty"`
	Slow      time.Duration `yaml:"slow,omitempty"` // speed threshold
	Stats     *bool         `yaml:"stats,omitempty"` // duration percentiles in the epilogue
}

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetStats returns the stats setting, defaulting to false
func (c *Config) GetStats() bool {
	return getBool(c.Stats, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".xunitspec.yml",
	".xunitspec.yaml",
	"xunitspec.yml",
	"xunitspec.yaml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Output != "" {
		result.Output = other.Output
	}
	if other.SuiteName != "" {
		result.SuiteName = other.SuiteName
	}
	if other.Slow > 0 {
		result.Slow = other.Slow
	}

	// Boolean flags - only override if explicitly set in other config
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.Stats != nil {
		result.Stats = other.Stats
	}

	return &result
}

// Resolve combines the config file, the environment and command-line
// settings. The output path from the environment wins over every other
// source; for the remaining fields flags beat the environment, which beats
// the file.
func Resolve(file *Config, env Env, flags *Config) *Config {
	result := DefaultConfig().Merge(file).Merge(env.Config()).Merge(flags)
	if env.Output != "" {
		result.Output = env.Output
	}
	return result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
