package limits

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/core/ports"
)

const (
	// ComputePoolNodeID is the unique identifier for the compute pool Graft node.
	ComputePoolNodeID graft.ID = "engine.limits.compute"
	// IOLimiterNodeID is the unique identifier for the IO permit pool Graft node.
	IOLimiterNodeID graft.ID = "engine.limits.io"
)

func init() {
	graft.Register(graft.Node[ports.ComputePool]{
		ID:        ComputePoolNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ComputePool, error) {
			return NewComputePool(), nil
		},
	})

	graft.Register(graft.Node[ports.IOLimiter]{
		ID:        IOLimiterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.IOLimiter, error) {
			return NewIOLimiter(), nil
		},
	})
}
