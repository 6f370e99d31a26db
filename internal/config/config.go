// Package config handles sweepmesh configuration loading and management.
package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/sweepmesh/pkg/mesh"
	"github.com/Faultbox/sweepmesh/pkg/profile"
)

// Config holds all meshgen settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Profile ProfileConfig `yaml:"profile"`
	Export  ExportConfig  `yaml:"export"`
	Jobs    JobsConfig    `yaml:"jobs"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig holds the segment-count heuristic.
type MeshConfig struct {
	BaseSegments        int     `yaml:"base_segment_count"`
	MinSegments         int     `yaml:"min_segment_count"`
	MaxSegments         int     `yaml:"max_segment_count"`
	TargetSegmentLength float64 `yaml:"target_segment_length"` // 0 = use base count
}

// ProfileConfig holds contour cleanup and fillet sampling settings.
type ProfileConfig struct {
	Tolerance      float64 `yaml:"tolerance"`
	ArcStepDegrees float64 `yaml:"arc_step_degrees"`
	ArcStepLength  float64 `yaml:"arc_step_length"`
	MinArcSegments int     `yaml:"min_arc_segments"`
	MaxArcSegments int     `yaml:"max_arc_segments"`
}

// ExportConfig holds OBJ output settings.
type ExportConfig struct {
	Dir          string `yaml:"dir"`
	ReverseFaces bool   `yaml:"reverse_faces"`
}

// JobsConfig holds batch runner settings.
type JobsConfig struct {
	Workers      int           `yaml:"workers"`
	CacheEntries int           `yaml:"cache_entries"` // 0 disables the cache
	Timeout      time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	s := mesh.DefaultSettings()
	arc := profile.DefaultArcOptions()
	return &Config{
		Mesh: MeshConfig{
			BaseSegments: s.BaseSegments,
			MinSegments:  s.MinSegments,
			MaxSegments:  s.MaxSegments,
		},
		Profile: ProfileConfig{
			Tolerance:      profile.DefaultTolerance,
			ArcStepDegrees: arc.MaxStepDegrees,
			ArcStepLength:  arc.MaxStepLength,
			MinArcSegments: arc.MinSegments,
			MaxArcSegments: arc.MaxSegments,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Jobs: JobsConfig{
			Workers:      4,
			CacheEntries: 64,
			Timeout:      time.Minute,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Settings returns the mesh segment heuristic.
func (c *Config) Settings() mesh.Settings {
	return mesh.Settings{
		BaseSegments:        c.Mesh.BaseSegments,
		MinSegments:         c.Mesh.MinSegments,
		MaxSegments:         c.Mesh.MaxSegments,
		TargetSegmentLength: c.Mesh.TargetSegmentLength,
	}
}

// Processor returns a contour processor using the profile settings.
func (c *Config) Processor() *profile.Processor {
	return &profile.Processor{
		Tolerance: c.Profile.Tolerance,
		Arc: profile.ArcOptions{
			MaxStepDegrees: c.Profile.ArcStepDegrees,
			MaxStepLength:  c.Profile.ArcStepLength,
			MinSegments:    c.Profile.MinArcSegments,
			MaxSegments:    c.Profile.MaxArcSegments,
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	err := c.Settings().Validate()
	if !(c.Profile.Tolerance > 0) {
		err = multierr.Append(err, fmt.Errorf("profile.tolerance must be positive, got %g", c.Profile.Tolerance))
	}
	if c.Profile.ArcStepDegrees <= 0 && c.Profile.ArcStepLength <= 0 {
		err = multierr.Append(err, fmt.Errorf("profile needs arc_step_degrees or arc_step_length"))
	}
	if c.Profile.MinArcSegments < 1 || c.Profile.MaxArcSegments < c.Profile.MinArcSegments {
		err = multierr.Append(err, fmt.Errorf("profile arc segments [%d, %d] out of order",
			c.Profile.MinArcSegments, c.Profile.MaxArcSegments))
	}
	if c.Jobs.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("jobs.workers must be at least 1, got %d", c.Jobs.Workers))
	}
	if c.Jobs.CacheEntries < 0 {
		err = multierr.Append(err, fmt.Errorf("jobs.cache_entries must not be negative, got %d", c.Jobs.CacheEntries))
	}
	if c.Logging.Level != "" {
		if _, lerr := zapcore.ParseLevel(c.Logging.Level); lerr != nil {
			err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
		}
	}
	return err
}
