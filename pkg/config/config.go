// Package config provides configuration loading and management for fabrictensor.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"fabrictensor/pkg/envelope"
	"fabrictensor/pkg/sampling"
	"fabrictensor/pkg/zoom"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Sampling parameters
	Sampling struct {
		// ROISize is the edge of the cubic region analysed per sample, in voxels
		ROISize int `yaml:"roiSize"`

		// ROISpacing is the grid step of the grid scan, in voxels
		ROISpacing int `yaml:"roiSpacing"`

		// NumCores specifies how many samples are processed concurrently
		NumCores int `yaml:"numCores"`

		// AbortOnFitFailure stops a batch at the first failing sample
		AbortOnFitFailure bool `yaml:"abortOnFitFailure"`
	} `yaml:"sampling"`

	// ACF centre zoom parameters
	Zoom struct {
		Enabled bool `yaml:"enabled"`

		// Size is the edge of the cropped ACF cube; 0 uses half the smallest dimension
		Size int `yaml:"size"`

		// Factor is the spline upsampling factor
		Factor float64 `yaml:"factor"`
	} `yaml:"zoom"`

	// Envelope extraction parameters
	Envelope struct {
		// Threshold is the normalised ACF level (0-1 range)
		Threshold float64 `yaml:"threshold"`

		// Method is marching_cubes or marching_cubes_search
		Method string `yaml:"method"`
	} `yaml:"envelope"`

	// Output parameters
	Output struct {
		// Verbose controls progress printing
		Verbose bool `yaml:"verbose"`

		// PreviewDir receives ACF plane previews when not empty
		PreviewDir string `yaml:"previewDir"`

		// PreviewScale is the upscaling factor of the preview images
		PreviewScale int `yaml:"previewScale"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default sampling parameters
	cfg.Sampling.ROISize = 50
	cfg.Sampling.ROISpacing = 50
	cfg.Sampling.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Sampling.AbortOnFitFailure = false

	// Set default zoom parameters
	cfg.Zoom.Enabled = false
	cfg.Zoom.Size = 0
	cfg.Zoom.Factor = zoom.DefaultFactor

	// Set default envelope parameters
	cfg.Envelope.Threshold = envelope.DefaultThreshold
	cfg.Envelope.Method = string(envelope.MarchingCubes)

	// Set default output parameters
	cfg.Output.Verbose = true
	cfg.Output.PreviewDir = ""
	cfg.Output.PreviewScale = 4

	return cfg
}

// Params maps the configuration onto sampling parameters
func (cfg *Config) Params() (sampling.Params, error) {
	method, err := envelope.ParseMethod(cfg.Envelope.Method)
	if err != nil {
		return sampling.Params{}, err
	}

	p := sampling.DefaultParams()
	p.Threshold = cfg.Envelope.Threshold
	p.Method = method
	p.ROISize = cfg.Sampling.ROISize
	p.ROISpacing = cfg.Sampling.ROISpacing
	p.Workers = cfg.Sampling.NumCores
	p.AbortOnFitFailure = cfg.Sampling.AbortOnFitFailure
	p.Zoom = sampling.ZoomParams{
		Enabled: cfg.Zoom.Enabled,
		Size:    cfg.Zoom.Size,
		Factor:  cfg.Zoom.Factor,
	}

	if err := p.Validate(); err != nil {
		return sampling.Params{}, err
	}
	return p, nil
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
