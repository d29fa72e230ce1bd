package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the executor Graft node.
	NodeID graft.ID = "adapter.executor"
	// QuerierNodeID is the unique identifier for the interpreter querier Graft node.
	QuerierNodeID graft.ID = "adapter.interpreter_querier"
)

func init() {
	graft.Register(graft.Node[ports.Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Executor, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewExecutor(log), nil
		},
	})

	graft.Register(graft.Node[ports.InterpreterQuerier]{
		ID:        QuerierNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (ports.InterpreterQuerier, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewInterpreterQuerier(executor), nil
		},
	})
}
