package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the logger Graft node.
	NodeID graft.ID = "adapter.logger"
	// ControlNodeID is the unique identifier for the Graft node exposing the concrete
	// logger, which the CLI reconfigures from its flags.
	ControlNodeID graft.ID = "adapter.logger.control"
)

func init() {
	graft.Register(graft.Node[*Logger]{
		ID:        ControlNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Logger, error) {
			return New(), nil
		},
	})

	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{ControlNodeID},
		Run: func(ctx context.Context) (ports.Logger, error) {
			return graft.Dep[*Logger](ctx)
		},
	})
}
