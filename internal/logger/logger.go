package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/ndelgado/cargotrack/internal/config"
)

// New creates a preconfigured slog.Logger at the configured verbosity.
// Unrecognized levels fall back to info.
func New(cfg *config.Config) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: Level(cfg.LogLevel)})
	return slog.New(handler)
}

// Level maps the configured name to a slog level.
func Level(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
