// Package logging wraps log/slog with functional-option construction and a
// context-carried logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by WithFormat.
const (
	FormatJSON = "json"
	FormatText = "text"
)

type options struct {
	level      Level
	badLevel   string
	format     string
	addSource  bool
	setDefault bool
	output     io.Writer
	attrs      []Attr
}

// Option configures NewLogger.
type Option func(*options)

// NewLogger builds a logger writing JSON to stdout at info level unless
// configured otherwise.
func NewLogger(opts ...Option) *Logger {
	o := &options{
		level:  LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &HandlerOptions{AddSource: o.addSource, Level: o.level}
	var h Handler
	if o.format == FormatText {
		h = NewTextHandler(o.output, handlerOpts)
	} else {
		h = NewJSONHandler(o.output, handlerOpts)
	}
	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}

	logger := New(h)
	if o.badLevel != "" {
		logger.Warn("unknown log level, using info", StringAttr("input", o.badLevel))
	}
	if o.setDefault {
		SetDefault(logger)
	}
	return logger
}

// WithLevel sets the minimum level by name ("debug", "info", "warn",
// "error"). Unknown names keep info and are reported once by the logger.
func WithLevel(level string) Option {
	return func(o *options) {
		var l Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			o.level, o.badLevel = LevelInfo, level
			return
		}
		o.level, o.badLevel = l, ""
	}
}

// WithFormat selects FormatJSON or FormatText. Anything else means JSON.
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = strings.ToLower(format)
	}
}

// WithAddSource records the calling source location.
func WithAddSource(addSource bool) Option {
	return func(o *options) {
		o.addSource = addSource
	}
}

// WithSetDefault installs the logger as the slog default.
func WithSetDefault(setDefault bool) Option {
	return func(o *options) {
		o.setDefault = setDefault
	}
}

// WithOutput sets the destination writer.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttrs attaches attrs to every record.
func WithAttrs(attrs ...Attr) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// L retrieves the logger from the context.
func L(ctx context.Context) *Logger {
	return loggerFromContext(ctx)
}

// Default returns the global default logger.
func Default() *Logger {
	return slog.Default()
}
