// Package config provides configuration loading and management for hyperspec.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the extraction configuration loaded from YAML
type Config struct {
	// Extraction parameters shared by both extractors
	Extraction struct {
		// Workers specifies how many goroutines to use for accumulation
		Workers int `yaml:"workers"`
	} `yaml:"extraction"`

	// Histogram extraction parameters
	Histogram struct {
		// MinElements is the minimum cube size for a statistically
		// meaningful histogram; the cube must hold more elements than this
		MinElements int `yaml:"minElements"`

		// CountBins is the number of uniform value buckets per group
		CountBins int `yaml:"countBins"`

		// WavelengthBins is the requested number of wavelength groups
		WavelengthBins int `yaml:"wavelengthBins"`

		// DetectMax scans the cube for its true maximum instead of using
		// the element type's nominal maximum
		DetectMax bool `yaml:"detectMax"`

		// Mode names the cube's processing mode (raw, darksubtract,
		// reflectance, radiance)
		Mode string `yaml:"mode"`
	} `yaml:"histogram"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default extraction parameters
	cfg.Extraction.Workers = runtime.NumCPU() // Use all available cores by default

	// Set default histogram parameters
	cfg.Histogram.MinElements = 1024
	cfg.Histogram.CountBins = 64
	cfg.Histogram.WavelengthBins = 8
	cfg.Histogram.DetectMax = false
	cfg.Histogram.Mode = "raw"

	// Set default output parameters
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
