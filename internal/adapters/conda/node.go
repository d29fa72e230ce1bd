package conda

import (
	"context"
	"net/http"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/adapters/cas"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/core/ports"
)

const (
	// FetcherNodeID is the unique identifier for the package fetcher Graft node.
	FetcherNodeID graft.ID = "adapter.conda.fetcher"
	// LinkerNodeID is the unique identifier for the prefix linker Graft node.
	LinkerNodeID graft.ID = "adapter.conda.linker"
	// MarkerNodeID is the unique identifier for the environment marker Graft node.
	MarkerNodeID graft.ID = "adapter.conda.marker"
)

func init() {
	graft.Register(graft.Node[ports.PackageFetcher]{
		ID:        FetcherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{cas.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.PackageFetcher, error) {
			cache, err := graft.Dep[ports.PackageCache](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewFetcher(cache, &http.Client{}, log), nil
		},
	})

	graft.Register(graft.Node[ports.PrefixLinker]{
		ID:        LinkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PrefixLinker, error) {
			return NewLinker(), nil
		},
	})

	graft.Register(graft.Node[ports.EnvironmentMarker]{
		ID:        MarkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.EnvironmentMarker, error) {
			return NewMarker(), nil
		},
	})
}
