package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-logr/logr"
)

func Context(ctx context.Context, logger *slog.Logger) context.Context {
	return logr.NewContextWithSlogLogger(ctx, logger)
}

// FromContext returns the logger stored in `ctx`, or the default logger if
// there isn't one.
func FromContext(ctx context.Context) *slog.Logger {
	if logger := logr.FromContextAsSlogLogger(ctx); logger != nil {
		return logger
	}
	return slog.Default()
}

// New builds a logger writing to `w` in the given format ("json" or "text")
// at the given level ("debug", "info", "warn" or "error").
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level `%s`: %w", level, err)
	}

	opts := slog.HandlerOptions{Level: l}
	switch strings.ToLower(format) {
	case "", "json":
		return slog.New(slog.NewJSONHandler(w, &opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, &opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format `%s`", format)
	}
}
