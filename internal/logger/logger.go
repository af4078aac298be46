package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/fx/fxevent"

	"github.com/polkiloo/storefront/internal/config"
)

// New creates a JSON slog.Logger tagged with the service name.
func New(cfg *config.Config) *slog.Logger {
	return newWithWriter(os.Stdout, cfg.ServiceName, parseLevel(cfg.LogLevel))
}

// NewEventLogger routes fx lifecycle events through the application logger.
func NewEventLogger(l *slog.Logger) fxevent.Logger {
	return &fxevent.SlogLogger{Logger: l.With(slog.String("component", "fx"))}
}

func newWithWriter(w io.Writer, service string, level slog.Leveler) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	l := slog.New(handler)
	if service != "" {
		l = l.With(slog.String("service", service))
	}
	return l
}

// parseLevel falls back to info for empty or unknown names.
func parseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}
