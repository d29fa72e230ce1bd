package ports

import (
	"context"
	"time"

	"go.trai.ch/pixi/internal/core/domain"
)

// Renderer is the abstraction for progress output.
// It decouples telemetry collection from presentation so the engine never writes to the terminal.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called with the steps about to run.
	OnPlanEmit(steps []string)

	// OnStepStart is called when a step begins.
	// parentID is the spanID of the enclosing step, empty for roots.
	OnStepStart(spanID, parentID, name string, kind domain.StepKind, startTime time.Time)

	// OnStepLog is called when a step emits output.
	// data may contain partial lines.
	OnStepLog(spanID string, data []byte)

	// OnStepComplete is called when a step finishes.
	// err is nil unless status is domain.StepStatusFailed.
	OnStepComplete(spanID string, endTime time.Time, status domain.StepStatus, err error)
}
