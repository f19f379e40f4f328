// Package slogx configures structured logging for the token service and
// carries request-scoped loggers through context. Every log line carries the
// service identity attrs so aggregated output can be filtered per deployment.
package slogx

import (
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler and the identity attrs stamped on every record.
type Config struct {
	Service string // logical service name, e.g. "tokend"
	Version string // build version
	Env     string // "dev", "staging", "prod"
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json" (default) or "text"
}

// New builds the root logger and installs it as the slog default, so code
// holding no context still logs through the same handler.
func New(cfg Config) *slog.Logger {
	logger := slog.New(newHandler(cfg)).With(
		slog.String("service", cfg.Service),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	slog.SetDefault(logger)
	return logger
}

func newHandler(cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev", // source locations are noise outside dev
		Level:     parseLevel(cfg.Level),
	}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
