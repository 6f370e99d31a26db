// Package logger holds the process-wide zap logger. Until Configure or Init
// runs every call goes to a no-op logger, so the geometry packages can log
// unconditionally.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the process-wide logger.
	Log = zap.NewNop()
	// Sugar wraps Log for printf-style calls.
	Sugar = Log.Sugar()
)

// FileConfig describes the rotated JSON log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns the rotation limits used by meshgen.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// Options selects where log entries go. A nil Console and an empty
// File.Path leave the no-op logger in place.
type Options struct {
	// Level is a zap level name; empty means info.
	Level   string
	Console io.Writer
	File    FileConfig
}

// Init logs to stderr at level and, when logFile is set, to a rotated file.
// Stdout is left to command output.
func Init(level, logFile string) error {
	opts := Options{Level: level, Console: os.Stderr}
	if logFile != "" {
		opts.File = DefaultFileConfig(logFile)
	}
	return Configure(opts)
}

// Configure replaces the global logger.
func Configure(opts Options) error {
	lvl := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}

	var cores []zapcore.Core
	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(consoleEncoder(), zapcore.Lock(zapcore.AddSync(opts.Console)), lvl))
	}
	if opts.File.Path != "" {
		cores = append(cores, zapcore.NewCore(jsonEncoder(), zapcore.AddSync(rotated(opts.File)), lvl))
	}
	if len(cores) == 0 {
		Reset()
		return nil
	}
	set(zap.New(zapcore.NewTee(cores...), zap.AddCaller()))
	return nil
}

// consoleEncoder writes short colored lines for interactive use.
func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(cfg)
}

// jsonEncoder writes one JSON object per entry so job runs can be grepped.
func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.StacktraceKey = zapcore.OmitKey
	return zapcore.NewJSONEncoder(cfg)
}

func rotated(fc FileConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.MaxSizeMB,
		MaxBackups: fc.MaxBackups,
		MaxAge:     fc.MaxAgeDays,
		Compress:   fc.Compress,
		LocalTime:  true,
	}
}

func set(l *zap.Logger) {
	Log = l
	Sugar = l.Sugar()
}

// Reset restores the no-op logger.
func Reset() { set(zap.NewNop()) }

// Named returns a child logger tagged with a component name.
func Named(name string) *zap.Logger { return Log.Named(name) }

// Sync flushes buffered entries.
func Sync() { _ = Log.Sync() }

// Debug logs through Log at debug level. Info, Warn and Error follow suit.
func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }
