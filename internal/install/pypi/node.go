package pypi

import (
	"context"

	"github.com/grindlemire/graft"
	condafs "go.trai.ch/pixi/internal/adapters/conda" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/fs"           //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/logger"       //nolint:depguard // Wired in engine wiring
	wheels "go.trai.ch/pixi/internal/adapters/pypi"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/telemetry"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/engine/limits"
)

// NodeID is the unique identifier for the wheel reconciler Graft node.
const NodeID graft.ID = "install.pypi"

func init() {
	graft.Register(graft.Node[*Reconciler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			wheels.SitePackagesNodeID,
			wheels.PreparerNodeID,
			wheels.CacheNodeID,
			condafs.LinkerNodeID,
			fs.LockerNodeID,
			limits.IOLimiterNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: runReconcilerNode,
	})
}

func runReconcilerNode(ctx context.Context) (*Reconciler, error) {
	site, err := graft.Dep[ports.SitePackages](ctx)
	if err != nil {
		return nil, err
	}

	preparer, err := graft.Dep[ports.WheelPreparer](ctx)
	if err != nil {
		return nil, err
	}

	cache, err := graft.Dep[ports.WheelCache](ctx)
	if err != nil {
		return nil, err
	}

	linker, err := graft.Dep[ports.PrefixLinker](ctx)
	if err != nil {
		return nil, err
	}

	locker, err := graft.Dep[ports.PrefixLocker](ctx)
	if err != nil {
		return nil, err
	}

	io, err := graft.Dep[ports.IOLimiter](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	planner := NewPlanner(cache, fs.SourceNewerThanInstall)
	return NewReconciler(site, preparer, linker, locker, io, planner, tracer, log), nil
}
