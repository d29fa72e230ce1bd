package solver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/shell"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/core/ports"
)

const (
	// BinaryNodeID is the unique identifier for the binary solver Graft node.
	BinaryNodeID graft.ID = "adapter.solver.binary"
	// WheelNodeID is the unique identifier for the wheel solver Graft node.
	WheelNodeID graft.ID = "adapter.solver.wheel"
	// BuilderNodeID is the unique identifier for the source builder Graft node.
	BuilderNodeID graft.ID = "adapter.solver.builder"
)

func init() {
	graft.Register(graft.Node[ports.BinarySolver]{
		ID:        BinaryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.BinarySolver, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewBinarySolver(CommandFromEnv(BinarySolverEnv), executor, log), nil
		},
	})

	graft.Register(graft.Node[ports.WheelSolver]{
		ID:        WheelNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, fs.HasherNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.WheelSolver, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.SourceTreeHasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWheelSolver(CommandFromEnv(WheelSolverEnv), executor, hasher, log), nil
		},
	})

	graft.Register(graft.Node[ports.SourceBuilder]{
		ID:        BuilderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.SourceBuilder, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewSourceBuilder(CommandFromEnv(BuildBackendEnv), executor, log), nil
		},
	})
}
