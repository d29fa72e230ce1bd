package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/core/ports"
)

const (
	// HasherNodeID is the unique identifier for the source tree hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
	// LockerNodeID is the unique identifier for the prefix locker Graft node.
	LockerNodeID graft.ID = "adapter.fs.locker"
)

func init() {
	graft.Register(graft.Node[ports.SourceTreeHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SourceTreeHasher, error) {
			return NewSourceTreeHasher(), nil
		},
	})

	// One locker per process so goroutines of every install share its queues.
	graft.Register(graft.Node[ports.PrefixLocker]{
		ID:        LockerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PrefixLocker, error) {
			return NewPrefixLocker(), nil
		},
	})
}
