package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pixi/internal/adapters/cas"           //nolint:depguard // Wired in app layer
	condafs "go.trai.ch/pixi/internal/adapters/conda" //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/adapters/fs"            //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/adapters/linear"        //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/adapters/lockstore"     //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/adapters/logger"        //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/adapters/manifest"      //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/adapters/metrics"       //nolint:depguard // Wired in app layer
	wheels "go.trai.ch/pixi/internal/adapters/pypi"   //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/adapters/telemetry"     //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/engine/scheduler"
	"go.trai.ch/pixi/internal/install/conda"
	"go.trai.ch/pixi/internal/install/pypi"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
	// LogControl reconfigures the logger from the CLI flags.
	LogControl *logger.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			lockstore.NodeID,
			scheduler.NodeID,
			conda.NodeID,
			pypi.NodeID,
			condafs.MarkerNodeID,
			fs.HasherNodeID,
			cas.NodeID,
			wheels.StoreNodeID,
			linear.NodeID,
			telemetry.OTelNodeID,
			metrics.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			logger.ControlNodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			control, err := graft.Dep[*logger.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log, LogControl: control}, nil
		},
	})
}

//nolint:cyclop // Dependency resolution only
func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ManifestLoader](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.LockFileStore](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	installer, err := graft.Dep[ports.PrefixInstaller](ctx)
	if err != nil {
		return nil, err
	}

	reconciler, err := graft.Dep[*pypi.Reconciler](ctx)
	if err != nil {
		return nil, err
	}

	marker, err := graft.Dep[ports.EnvironmentMarker](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.SourceTreeHasher](ctx)
	if err != nil {
		return nil, err
	}

	packages, err := graft.Dep[ports.PackageCache](ctx)
	if err != nil {
		return nil, err
	}

	wheelCache, err := graft.Dep[*wheels.WheelCache](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[ports.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[*telemetry.OTelTracer](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[*metrics.Recorder](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, store, sched, installer, reconciler, marker, hasher, log).
		WithReporting(renderer, tracer, recorder).
		WithCacheDirs(packages.Root(), wheelCache.Root()), nil
}
