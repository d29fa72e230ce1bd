package resolve

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/solver"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/engine/limits"
	"go.trai.ch/pixi/internal/install/conda"
)

const (
	// BinaryNodeID is the unique identifier for the binary resolver Graft node.
	BinaryNodeID graft.ID = "resolve.binary"
	// WheelNodeID is the unique identifier for the wheel resolver Graft node.
	WheelNodeID graft.ID = "resolve.wheel"
	// MaterializerNodeID is the unique identifier for the build prefix materializer Graft node.
	MaterializerNodeID graft.ID = "resolve.materializer"
)

func init() {
	graft.Register(graft.Node[*BinaryResolver]{
		ID:        BinaryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{solver.BinaryNodeID, limits.ComputePoolNodeID, telemetry.TracerNodeID},
		Run: func(ctx context.Context) (*BinaryResolver, error) {
			s, err := graft.Dep[ports.BinarySolver](ctx)
			if err != nil {
				return nil, err
			}
			pool, err := graft.Dep[ports.ComputePool](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewBinaryResolver(s, pool, tracer), nil
		},
	})

	graft.Register(graft.Node[*WheelResolver]{
		ID:        WheelNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{solver.WheelNodeID, limits.ComputePoolNodeID, telemetry.TracerNodeID},
		Run: func(ctx context.Context) (*WheelResolver, error) {
			s, err := graft.Dep[ports.WheelSolver](ctx)
			if err != nil {
				return nil, err
			}
			pool, err := graft.Dep[ports.ComputePool](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewWheelResolver(s, pool, tracer), nil
		},
	})

	graft.Register(graft.Node[*Materializer]{
		ID:        MaterializerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{conda.NodeID, shell.QuerierNodeID, telemetry.TracerNodeID},
		Run: func(ctx context.Context) (*Materializer, error) {
			installer, err := graft.Dep[ports.PrefixInstaller](ctx)
			if err != nil {
				return nil, err
			}
			querier, err := graft.Dep[ports.InterpreterQuerier](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewMaterializer(installer, querier, tracer), nil
		},
	})
}
