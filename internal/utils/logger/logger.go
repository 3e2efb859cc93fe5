package logger

import (
	"os"
	"strings"

	"golang.org/x/exp/slog"

	"helpdesk/internal/utils/logger/slogpretty"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// New builds the process logger for env: colored text for local, JSON for
// dev and prod. Unknown environments fall back to prod settings.
func New(env string) *slog.Logger {
	switch env {
	case envLocal, "":
		return setupPrettySlog()
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// WithLevel is New with an explicit minimum level, as set by log_level.
// An empty or unknown level keeps the environment default.
func WithLevel(env, level string) *slog.Logger {
	lvl, ok := parseLevel(level)
	if !ok {
		return New(env)
	}
	if env == envLocal || env == "" {
		return slog.New(slogpretty.NewHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

func setupPrettySlog() *slog.Logger {
	return slog.New(slogpretty.NewHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
