package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fabrictensor/internal/models"
	"fabrictensor/pkg/envelope"
)

// TestLoadMissingConfig checks that a missing file yields the defaults
func TestLoadMissingConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Envelope.Threshold != 0.5 || cfg.Envelope.Method != "marching_cubes" {
		t.Errorf("Expected default envelope settings, got %+v", cfg.Envelope)
	}
	if cfg.Zoom.Enabled {
		t.Error("Zoom should be disabled by default")
	}
}

// TestConfigRoundTrip saves, edits and reloads a configuration
func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fabric.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg.Sampling.ROISize = 24
	cfg.Zoom.Enabled = true
	cfg.Zoom.Factor = 3
	cfg.Envelope.Method = "marching_cubes_search"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}

	p, err := loaded.Params()
	if err != nil {
		t.Fatalf("Params failed: %v", err)
	}
	if p.ROISize != 24 || !p.Zoom.Enabled || p.Zoom.Factor != 3 || p.Method != envelope.MarchingCubesSearch {
		t.Errorf("Unexpected params %+v", p)
	}
}

// TestPartialConfig checks that unspecified keys keep their defaults
func TestPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("sampling:\n  roiSize: 30\nenvelope:\n  threshold: 0.4\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Sampling.ROISize != 30 || cfg.Envelope.Threshold != 0.4 {
		t.Errorf("Expected overrides, got %+v", cfg)
	}
	if cfg.Sampling.ROISpacing != 50 || cfg.Envelope.Method != "marching_cubes" {
		t.Errorf("Expected defaults for unspecified keys, got %+v", cfg)
	}
}

// TestParamsErrors checks that invalid settings map to configuration errors
func TestParamsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Envelope.Method = "surface_nets"
	if _, err := cfg.Params(); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for method, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Envelope.Threshold = -0.1
	if _, err := cfg.Params(); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for threshold, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("sampling: [1, 2"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected a parse error")
	}
}
