// Package closer releases resources in reverse registration order.
package closer

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/RRWM1rr0rB/uuidattr/errors"
	"github.com/RRWM1rr0rB/uuidattr/logging"
)

// Func adapts a function to io.Closer.
type Func func() error

// Close implements io.Closer.
func (f Func) Close() error {
	return f()
}

// ContextFunc adapts a shutdown function taking a context, such as a tracer
// provider's Shutdown, to io.Closer.
func ContextFunc(ctx context.Context, fn func(context.Context) error) io.Closer {
	return Func(func() error { return fn(ctx) })
}

// LIFO closes registered resources last-in first-out. Safe for concurrent use.
type LIFO struct {
	mu      sync.Mutex
	closers []io.Closer
	closed  bool
}

// New creates an empty LIFO.
func New() *LIFO {
	return &LIFO{}
}

// Add registers closers. Closers added after Close are closed immediately.
func (l *LIFO) Add(closers ...io.Closer) error {
	l.mu.Lock()
	if !l.closed {
		l.closers = append(l.closers, closers...)
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	var errs error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = errors.Append(errs, closers[i].Close())
	}
	return errs
}

// Close closes every resource in reverse order and reports all failures.
// Subsequent calls are no-ops.
func (l *LIFO) Close() error {
	l.mu.Lock()
	closers := l.closers
	l.closers = nil
	l.closed = true
	l.mu.Unlock()

	var errs error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = errors.Append(errs, errors.Wrap(err, "close"))
		}
	}
	return errs
}

// CloseOnSignal blocks until ctx is done or one of signals arrives, then
// closes l.
func CloseOnSignal(ctx context.Context, l *LIFO, signals ...os.Signal) error {
	sigCtx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	<-sigCtx.Done()
	logging.L(ctx).Info("shutting down", logging.ErrAttr(context.Cause(sigCtx)))

	return l.Close()
}
