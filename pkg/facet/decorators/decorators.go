// Package decorators provides ready-made facet decorators.
package decorators

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/toyz/facet/pkg/facet"
)

// LoggingDecorator logs every call at debug level and every failure at warn
// level. Failures are returned unchanged; panics are not intercepted.
type LoggingDecorator struct {
	logger *slog.Logger
}

// Logging creates a LoggingDecorator; a nil logger means slog.Default()
func Logging(logger *slog.Logger) *LoggingDecorator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingDecorator{logger: logger}
}

// Decorate implements facet.Decorator
func (l *LoggingDecorator) Decorate(m facet.Method, next facet.Handler) facet.Handler {
	method := m.String()
	return func(inv *facet.Invocation) (any, error) {
		start := time.Now()
		out, err := next(inv)
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("invocation", inv.ID.String()),
			slog.Int("depth", inv.Depth()),
			slog.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			l.logger.LogAttrs(context.Background(), slog.LevelWarn, "facet: call failed", append(attrs, slog.Any("error", err))...)
			return out, err
		}
		l.logger.LogAttrs(context.Background(), slog.LevelDebug, "facet: call", attrs...)
		return out, nil
	}
}

// String names the decorator in descriptor dumps
func (l *LoggingDecorator) String() string { return "logging" }

// Call is one invocation observed by a Recorder
type Call struct {
	Method   facet.Method
	Args     []any
	Result   any
	Err      error
	Panicked bool
	Panic    any
}

// Recorder is a decorator that records every call passing through it
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Decorate implements facet.Decorator
func (r *Recorder) Decorate(m facet.Method, next facet.Handler) facet.Handler {
	return func(inv *facet.Invocation) (out any, err error) {
		defer func() {
			if p := recover(); p != nil {
				r.add(Call{Method: m, Args: inv.Args, Panicked: true, Panic: p})
				panic(p)
			}
		}()
		out, err = next(inv)
		r.add(Call{Method: m, Args: inv.Args, Result: out, Err: err})
		return out, err
	}
}

func (r *Recorder) add(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns the recorded calls in order
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns the number of recorded calls to the named method
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method.Name() == name {
			n++
		}
	}
	return n
}

// Reset forgets every recorded call
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
