package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor to forward span lifecycles to a Renderer.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a new Bridge.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{
		renderer: renderer,
	}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if b.renderer == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	var parentID string
	if parentSpan := trace.SpanFromContext(parent); parentSpan.SpanContext().IsValid() {
		parentID = parentSpan.SpanContext().SpanID().String()
	}

	b.renderer.OnStepStart(
		sc.SpanID().String(),
		parentID,
		s.Name(),
		SpanKind(s.Attributes()),
		s.StartTime(),
	)
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.renderer == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	status, err := SpanStatus(s)
	b.renderer.OnStepComplete(
		sc.SpanID().String(),
		s.EndTime(),
		status,
		err,
	)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// SpanKind returns the step kind recorded on a span.
func SpanKind(attrs []attribute.KeyValue) domain.StepKind {
	for _, a := range attrs {
		if string(a.Key) == AttrKind {
			return domain.StepKind(a.Value.AsString())
		}
	}
	return ""
}

// SpanStatus derives the terminal status of an ended span. A recorded error wins over an
// explicit status.
func SpanStatus(s sdktrace.ReadOnlySpan) (domain.StepStatus, error) {
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "step failed"
		}
		return domain.StepStatusFailed, errors.New(desc)
	}
	for _, a := range s.Attributes() {
		if string(a.Key) == AttrStatus {
			if status := domain.NormalizeStepStatus(a.Value.AsString()); status.IsTerminal() {
				return status, nil
			}
		}
	}
	return domain.StepStatusCompleted, nil
}
