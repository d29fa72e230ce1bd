package lockstore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/core/ports"
)

// NodeID is the unique identifier for the lock file store Graft node.
const NodeID graft.ID = "adapter.lockstore"

func init() {
	graft.Register(graft.Node[ports.LockFileStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.LockFileStore, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(log), nil
		},
	})
}
