// Package logging configures the process-wide log/slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup builds a logger for env, installs it as the slog default and
// returns it.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging: JSON output at DEBUG level.
// Production (prod): JSON output at INFO level.
//
// A non-empty level ("debug", "info", "warn", "error") overrides the
// env-derived level. Logs go to stderr so command output on stdout stays
// machine-readable.
func Setup(env, level string) *slog.Logger {
	logger := New(os.Stderr, env, level)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w without touching the slog default.
func New(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if env == "prod" {
		opts.Level = slog.LevelInfo
	}
	if level != "" {
		opts.Level = parseLevel(level)
	}

	switch env {
	case "prod", "staging":
		return slog.New(slog.NewJSONHandler(w, opts))
	default: // "dev" and anything unrecognised
		return slog.New(slog.NewTextHandler(w, opts))
	}
}

// WithFields returns the default logger with additional structured fields,
// for operation-scoped loggers that carry the same context through a
// multi-step process.
//
//	runLog := logging.WithFields("run_id", runID, "path", path)
//	runLog.Info("import started")
func WithFields(args ...any) *slog.Logger {
	return slog.Default().With(args...)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
