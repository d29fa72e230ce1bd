package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
)

const (
	// AttrKind carries the domain.StepKind of a span.
	AttrKind = "pixi.kind"
	// AttrStatus carries an explicit terminal domain.StepStatus of a span.
	AttrStatus = "pixi.status"
)

// OTelTracer is the ports.Tracer of the engine, backed by OpenTelemetry.
// Span lifecycles reach the renderer through the Bridge span processor; span output is
// batched and streamed to the renderer directly.
type OTelTracer struct {
	name     string
	mu       sync.RWMutex
	tracer   trace.Tracer
	renderer ports.Renderer
}

// NewOTelTracer creates a tracer with the given instrumentation name on the global provider.
func NewOTelTracer(name string) *OTelTracer {
	return &OTelTracer{name: name, tracer: otel.Tracer(name)}
}

// NewOTelTracerWithProvider creates a tracer on an explicit provider.
func NewOTelTracerWithProvider(tp trace.TracerProvider, name string) *OTelTracer {
	return &OTelTracer{name: name, tracer: tp.Tracer(name)}
}

// WithRenderer sets the renderer that receives plans and span output.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

// Attach routes spans through a provider whose Bridge forwards them to r, and streams plans
// and span output to r. The returned function shuts the provider down and detaches r.
func (t *OTelTracer) Attach(r ports.Renderer) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(r)))

	t.mu.Lock()
	previous := t.tracer
	t.tracer = tp.Tracer(t.name)
	t.renderer = r
	t.mu.Unlock()

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		t.mu.Lock()
		t.tracer = previous
		t.renderer = nil
		t.mu.Unlock()
		return err
	}
}

func (t *OTelTracer) currentTracer() trace.Tracer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracer
}

func (t *OTelTracer) currentRenderer() ports.Renderer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.renderer
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := ports.NewSpanConfig(opts...)

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes)+1)
	if cfg.Kind != "" {
		attrs = append(attrs, attribute.String(AttrKind, string(cfg.Kind)))
	}
	for k, v := range cfg.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	ctx, span := t.currentTracer().Start(ctx, name, trace.WithAttributes(attrs...))

	var batcher *BatchProcessor
	if r := t.currentRenderer(); r != nil {
		spanID := span.SpanContext().SpanID().String()
		batcher = NewBatchProcessor(0, 0, func(data []byte) {
			r.OnStepLog(spanID, data)
		})
	}

	s := &OTelSpan{span: span, batcher: batcher}
	return ports.ContextWithSpan(ctx, s), s
}

// EmitPlan signals the steps about to run.
func (t *OTelTracer) EmitPlan(ctx context.Context, steps []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("steps", steps),
		))
	}

	if r := t.currentRenderer(); r != nil {
		r.OnPlanEmit(steps)
	}
}

// OTelSpan is a ports.Span backed by an OpenTelemetry span.
type OTelSpan struct {
	span    trace.Span
	batcher *BatchProcessor
}

// End flushes buffered output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records err and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetStatus overrides the terminal status reported to the renderer.
func (s *OTelSpan) SetStatus(status domain.StepStatus) {
	s.span.SetAttributes(attribute.String(AttrStatus, string(status)))
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write streams output to the renderer, or records it as a span event when there is none.
func (s *OTelSpan) Write(p []byte) (n int, err error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}

// Batcher exposes the output batcher for tests.
func (s *OTelSpan) Batcher() *BatchProcessor {
	return s.batcher
}
