package executor

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.trai.ch/ergo/internal/core/ports"
)

type config struct {
	threadCount int
	logger      ports.Logger
	tracer      ports.Tracer
	clock       ports.Clock
}

func defaultConfig() *config {
	return &config{
		threadCount: defaultThreadCount(),
		logger:      stdLogger{},
		tracer:      noOpTracer{},
		clock:       realClock{},
	}
}

// stdLogger, noOpTracer and realClock are the executor package's own
// zero-configuration defaults. They exist so New() never requires a caller
// to wire anything, and are intentionally minimal: production callers reach
// for internal/adapters/logger and internal/adapters/telemetry (structured
// slog output, OpenTelemetry spans) via WithLogger/WithTracer instead of
// this fallback.
type stdLogger struct{}

func (stdLogger) Info(msg string)  { slog.Info(msg) }
func (stdLogger) Error(err error)  { slog.Error(err.Error()) }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type noOpTracer struct{}

func (noOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noOpSpan{}
}

type noOpSpan struct{}

func (noOpSpan) End()                          {}
func (noOpSpan) RecordError(error)             {}
func (noOpSpan) SetAttribute(string, any)      {}
func (noOpSpan) Write(p []byte) (int, error)   { return len(p), nil }

func defaultThreadCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// Option configures an Executor at construction time.
type Option func(*config)

// WithThreadCount sets the number of worker goroutines. Values below 1 are
// floored to 1.
func WithThreadCount(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.threadCount = n
	}
}

// WithLogger overrides the executor's logging sink. Task run failures and
// recovered panics are reported through it.
func WithLogger(l ports.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithTracer overrides the executor's tracer. Every captured task run is
// wrapped in a span; the default is a no-op tracer.
func WithTracer(tr ports.Tracer) Option {
	return func(c *config) { c.tracer = tr }
}

// WithClock overrides the source of wall-clock time used to evaluate time
// triggers. Tests substitute a fake clock here instead of sleeping.
func WithClock(cl ports.Clock) Option {
	return func(c *config) { c.clock = cl }
}
