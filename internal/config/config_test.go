package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/sweepmesh/pkg/mesh"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Mesh defaults follow the builder defaults
	if cfg.Settings() != mesh.DefaultSettings() {
		t.Errorf("expected default settings %+v, got %+v", mesh.DefaultSettings(), cfg.Settings())
	}
	if cfg.Mesh.TargetSegmentLength != 0 {
		t.Errorf("expected no target length, got %f", cfg.Mesh.TargetSegmentLength)
	}

	// Profile defaults
	if cfg.Profile.Tolerance != 1e-3 {
		t.Errorf("expected tolerance 1e-3, got %g", cfg.Profile.Tolerance)
	}
	if cfg.Profile.ArcStepDegrees != 5 {
		t.Errorf("expected arc step 5, got %f", cfg.Profile.ArcStepDegrees)
	}

	// Jobs defaults
	if cfg.Jobs.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Jobs.Workers)
	}
	if cfg.Jobs.Timeout != time.Minute {
		t.Errorf("expected timeout 1m, got %v", cfg.Jobs.Timeout)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestProcessorFromConfig(t *testing.T) {
	cfg := Default()
	cfg.Profile.ArcStepDegrees = 10
	cfg.Profile.MaxArcSegments = 16

	p := cfg.Processor()
	if p.Tolerance != cfg.Profile.Tolerance {
		t.Errorf("expected tolerance %g, got %g", cfg.Profile.Tolerance, p.Tolerance)
	}
	if p.Arc.MaxStepDegrees != 10 || p.Arc.MaxSegments != 16 {
		t.Errorf("arc options not applied: %+v", p.Arc)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Mesh.MaxSegments = 1
	cfg.Profile.Tolerance = 0
	cfg.Jobs.Workers = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"max segments", "tolerance", "workers", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got %v", want, err)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
mesh:
  base_segment_count: 48
  min_segment_count: 12
  max_segment_count: 512
  target_segment_length: 2.5

profile:
  tolerance: 0.01
  arc_step_degrees: 2

export:
  dir: "out"
  reverse_faces: true

jobs:
  workers: 8
  cache_entries: 0
  timeout: 5s

logging:
  level: "debug"
  log_file: "meshgen.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Mesh.BaseSegments != 48 {
		t.Errorf("expected base segments 48, got %d", cfg.Mesh.BaseSegments)
	}
	if cfg.Mesh.MaxSegments != 512 {
		t.Errorf("expected max segments 512, got %d", cfg.Mesh.MaxSegments)
	}
	if cfg.Mesh.TargetSegmentLength != 2.5 {
		t.Errorf("expected target length 2.5, got %f", cfg.Mesh.TargetSegmentLength)
	}

	if cfg.Profile.Tolerance != 0.01 {
		t.Errorf("expected tolerance 0.01, got %g", cfg.Profile.Tolerance)
	}
	// Unset keys keep their defaults
	if cfg.Profile.ArcStepLength != 100 {
		t.Errorf("expected default arc step length 100, got %f", cfg.Profile.ArcStepLength)
	}

	if cfg.Export.Dir != "out" || !cfg.Export.ReverseFaces {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}

	if cfg.Jobs.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Jobs.Workers)
	}
	if cfg.Jobs.CacheEntries != 0 {
		t.Errorf("expected cache disabled, got %d", cfg.Jobs.CacheEntries)
	}
	if cfg.Jobs.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Jobs.Timeout)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshgen.log" {
		t.Errorf("expected log file 'meshgen.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
mesh:
  base_segment_count: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Isolate from any real user config
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("mesh:\n  base_segment_count: 12\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		set    flagValues
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			set:  flagValues{debug: true},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "segments flag",
			set:  flagValues{segments: 64},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.BaseSegments != 64 {
					t.Errorf("expected base segments 64, got %d", cfg.Mesh.BaseSegments)
				}
			},
		},
		{
			name: "target length flag",
			set:  flagValues{targetLength: 3},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.TargetSegmentLength != 3 {
					t.Errorf("expected target length 3, got %f", cfg.Mesh.TargetSegmentLength)
				}
			},
		},
		{
			name: "output flags",
			set:  flagValues{out: "/tmp/meshes", reverse: true},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Dir != "/tmp/meshes" {
					t.Errorf("expected dir /tmp/meshes, got %s", cfg.Export.Dir)
				}
				if !cfg.Export.ReverseFaces {
					t.Error("expected reverse faces with reverse flag")
				}
			},
		},
		{
			name: "workers flag",
			set:  flagValues{workers: 2},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Jobs.Workers != 2 {
					t.Errorf("expected 2 workers, got %d", cfg.Jobs.Workers)
				}
			},
		},
		{
			name: "zero flags leave defaults",
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.BaseSegments != 24 || cfg.Export.Dir != "." {
					t.Errorf("defaults changed: %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags = tt.set
			defer func() { flags = flagValues{} }()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
mesh:
  base_segment_count: 32
  min_segment_count: 4
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	flags = flagValues{config: configPath, segments: 40}
	defer func() { flags = flagValues{} }()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Base count should be from flag (40), not file (32)
	if cfg.Mesh.BaseSegments != 40 {
		t.Errorf("expected base segments 40 from flag, got %d", cfg.Mesh.BaseSegments)
	}

	// Min count should be from file (4) since no flag override
	if cfg.Mesh.MinSegments != 4 {
		t.Errorf("expected min segments 4 from file, got %d", cfg.Mesh.MinSegments)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("jobs:\n  workers: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	flags = flagValues{config: configPath}
	defer func() { flags = flagValues{} }()

	if _, err := Load(); err == nil {
		t.Error("expected error for zero workers")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Mesh.BaseSegments = 36
	cfg.Export.ReverseFaces = true

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Mesh.BaseSegments != 36 || !loaded.Export.ReverseFaces {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
