// Package logging builds the structured logger used by the CLI and the
// HTTP service.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger construction options.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// New creates a slog.Logger writing to stderr with the configured level
// and handler format. Unknown levels fall back to info; unknown formats
// fall back to text.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit destination, for tests.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
