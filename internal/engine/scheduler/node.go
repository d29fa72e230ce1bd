package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/resolve"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			resolve.BinaryNodeID,
			resolve.WheelNodeID,
			resolve.MaterializerNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			binary, err := graft.Dep[*resolve.BinaryResolver](ctx)
			if err != nil {
				return nil, err
			}

			wheels, err := graft.Dep[*resolve.WheelResolver](ctx)
			if err != nil {
				return nil, err
			}

			materializer, err := graft.Dep[*resolve.Materializer](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(binary, wheels, materializer, tracer, log), nil
		},
	})
}
