package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
)

// NodeID is the unique identifier for the binary package cache Graft node.
const NodeID graft.ID = "adapter.package_cache"

func init() {
	graft.Register(graft.Node[ports.PackageCache]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PackageCache, error) {
			root, err := Dir(domain.PkgsDirName)
			if err != nil {
				return nil, err
			}
			return NewStore(root), nil
		},
	})
}
