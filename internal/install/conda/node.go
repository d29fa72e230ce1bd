package conda

import (
	"context"

	"github.com/grindlemire/graft"
	condafs "go.trai.ch/pixi/internal/adapters/conda" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/logger"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/solver"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/adapters/telemetry"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/engine/limits"
)

// NodeID is the unique identifier for the binary prefix installer Graft node.
const NodeID graft.ID = "install.conda"

func init() {
	graft.Register(graft.Node[ports.PrefixInstaller]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			condafs.LinkerNodeID,
			condafs.FetcherNodeID,
			solver.BuilderNodeID,
			limits.IOLimiterNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.PrefixInstaller, error) {
			linker, err := graft.Dep[ports.PrefixLinker](ctx)
			if err != nil {
				return nil, err
			}

			fetcher, err := graft.Dep[ports.PackageFetcher](ctx)
			if err != nil {
				return nil, err
			}

			builder, err := graft.Dep[ports.SourceBuilder](ctx)
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

			return NewInstaller(linker, fetcher, io, tracer, log).WithSourceBuilder(builder), nil
		},
	})
}
