// Package observability provides structured logging for the generators.
package observability

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rtdb/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
// Console output to a terminal gets colored levels; file output never does.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Precondition: cfg.Output must be "stderr", "stdout", or a writable file path.
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
		zapCfg.Sampling = nil
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.DisableStacktrace = true
		if isTerminal(cfg.Output) {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{output}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger for %s: %w", output, err)
	}
	return logger, nil
}

// WithRun tags every entry of logger with the pipeline name and a fresh run id.
//
// Precondition: logger must be non-nil.
func WithRun(logger *zap.Logger, pipeline string) *zap.Logger {
	return logger.With(
		zap.String("pipeline", pipeline),
		zap.String("run_id", uuid.NewString()),
	)
}

// isTerminal reports whether output names a standard stream attached to a
// character device.
func isTerminal(output string) bool {
	var f *os.File
	switch output {
	case "", "stderr":
		f = os.Stderr
	case "stdout":
		f = os.Stdout
	default:
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
