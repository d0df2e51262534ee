// Package logger provides the application wide structured logger.
package logger

import (
	"log/slog"
	"os"
)

// New creates a preconfigured slog.Logger shared by all components.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With(slog.String("service", "bmlconnect"))
}
