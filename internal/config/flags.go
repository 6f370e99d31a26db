package config

import "flag"

// flagValues holds CLI overrides. Zero values mean "not set".
type flagValues struct {
	config       string
	debug        bool
	segments     int
	targetLength float64
	out          string
	reverse      bool
	workers      int
}

var flags flagValues

// RegisterFlags adds the shared meshgen flags to fs. Call it for every
// subcommand flag set before parsing.
func RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&flags.config, "config", "", "Path to config file")
	fs.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	fs.IntVar(&flags.segments, "segments", 0, "Base segment count for arcs and revolutions")
	fs.Float64Var(&flags.targetLength, "target-length", 0, "Target segment length (overrides -segments)")
	fs.StringVar(&flags.out, "out", "", "Output directory")
	fs.BoolVar(&flags.reverse, "reverse", false, "Write OBJ faces with clockwise winding")
	fs.IntVar(&flags.workers, "workers", 0, "Concurrent jobs for the run command")
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return flags.config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if flags.debug {
		cfg.Logging.Level = "debug"
	}
	if flags.segments > 0 {
		cfg.Mesh.BaseSegments = flags.segments
	}
	if flags.targetLength > 0 {
		cfg.Mesh.TargetSegmentLength = flags.targetLength
	}
	if flags.out != "" {
		cfg.Export.Dir = flags.out
	}
	if flags.reverse {
		cfg.Export.ReverseFaces = true
	}
	if flags.workers > 0 {
		cfg.Jobs.Workers = flags.workers
	}
}
