package logging

import (
	"context"
	"log/slog"
)

type ctxLogger struct{}

// ContextWithLogger stores l in the context for scoped logging.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLogger{}, l)
}

// loggerFromContext retrieves the logger from the context or returns the default.
func loggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxLogger{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
