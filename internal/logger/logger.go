package logger

import (
	"io"
	"log/slog"
	"os"

	"marketlens/internal/config"
)

// Setup installs the process-wide slog logger. Development gets readable
// text at debug level, production gets JSON.
func Setup(cfg config.Config) {
	slog.SetDefault(New(os.Stdout, cfg))
}

// New builds a logger writing to w for the given environment
func New(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", "marketlens")
}

// Component returns l tagged with a component name, or the default logger
// when l is nil
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", name)
}
