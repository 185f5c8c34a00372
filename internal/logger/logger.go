package logger

import (
	"log/slog"
	"os"

	"go.uber.org/fx/fxevent"
)

const serviceName = "nge-brain"

// New creates a preconfigured slog.Logger.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With(slog.String("service", serviceName))
}

// NewEventLogger routes fx lifecycle events through the application logger at debug level.
func NewEventLogger(l *slog.Logger) fxevent.Logger {
	el := &fxevent.SlogLogger{Logger: l}
	el.UseLogLevel(slog.LevelDebug)
	return el
}
