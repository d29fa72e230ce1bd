package pypi

import (
	"context"
	"net/http"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/adapters/cas"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/shell"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
)

const (
	// SitePackagesNodeID is the unique identifier for the site-packages Graft node.
	SitePackagesNodeID graft.ID = "adapter.pypi.site_packages"
	// StoreNodeID is the unique identifier for the wheel store Graft node.
	StoreNodeID graft.ID = "adapter.pypi.wheel_store"
	// CacheNodeID is the unique identifier for the wheel cache Graft node.
	CacheNodeID graft.ID = "adapter.pypi.wheel_cache"
	// PreparerNodeID is the unique identifier for the wheel preparer Graft node.
	PreparerNodeID graft.ID = "adapter.pypi.preparer"
)

func init() {
	graft.Register(graft.Node[ports.SitePackages]{
		ID:        SitePackagesNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.SitePackages, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewSitePackages(log), nil
		},
	})

	graft.Register(graft.Node[*WheelCache]{
		ID:        StoreNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*WheelCache, error) {
			root, err := cas.Dir(domain.WheelsDirName)
			if err != nil {
				return nil, err
			}
			return NewWheelCache(cas.NewStore(root), fs.SourceFingerprint), nil
		},
	})

	graft.Register(graft.Node[ports.WheelCache]{
		ID:        CacheNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{StoreNodeID},
		Run: func(ctx context.Context) (ports.WheelCache, error) {
			return graft.Dep[*WheelCache](ctx)
		},
	})

	graft.Register(graft.Node[ports.WheelPreparer]{
		ID:        PreparerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{StoreNodeID, shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.WheelPreparer, error) {
			cache, err := graft.Dep[*WheelCache](ctx)
			if err != nil {
				return nil, err
			}

			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewPreparer(cache, executor, &http.Client{}, log), nil
		},
	})
}
