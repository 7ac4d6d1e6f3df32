// Package ctxlog threads a structured logger through a context.Context, the
// way specialistvlad-burstgridgo's internal/ctxlog does, generalized here to
// return a quiet default logger instead of panicking when none was wired —
// the CLI's run command always installs one, but tests and library callers
// of internal/driver may not.
package ctxlog

import (
	"context"
	"io"
	"log/slog"
)

type key struct{}

var loggerKey = key{}

// WithLogger returns a new context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger installed by WithLogger, or a logger
// discarding everything if none was installed.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
