package ports

import (
	"context"
	"io"

	"go.trai.ch/pixi/internal/core/domain"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the progress sink of the engine. Every download, build, solve and install step
// is reported as a span.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals the list of steps that are about to run.
	EmitPlan(ctx context.Context, steps []string)
}

// Span represents a reported step.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError marks the step as failed.
	RecordError(err error)
	// SetStatus overrides the terminal status reported when the span ends, e.g. cached or skipped.
	SetStatus(status domain.StepStatus)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	Kind       domain.StepKind
	Attributes map[string]string
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithStepKind sets the kind of step the span reports.
func WithStepKind(kind domain.StepKind) SpanOption {
	return func(c *SpanConfig) {
		c.Kind = kind
	}
}

// WithAttribute attaches a string attribute at span start.
func WithAttribute(key, value string) SpanOption {
	return func(c *SpanConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]string)
		}
		c.Attributes[key] = value
	}
}

// NewSpanConfig applies opts to an empty configuration.
func NewSpanConfig(opts ...SpanOption) SpanConfig {
	var cfg SpanConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type spanKey struct{}

// ContextWithSpan returns a copy of ctx in which span receives step output.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	return context.WithValue(ctx, spanKey{}, span)
}

// StepOutput returns the span of the innermost step started from ctx as a writer, or
// io.Discard when ctx carries none. Commands run inside a step stream their output here.
func StepOutput(ctx context.Context) io.Writer {
	if span, ok := ctx.Value(spanKey{}).(Span); ok {
		return span
	}
	return io.Discard
}
