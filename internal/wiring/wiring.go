// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pixi/internal/adapters/cas"
	_ "go.trai.ch/pixi/internal/adapters/conda"
	_ "go.trai.ch/pixi/internal/adapters/fs"
	_ "go.trai.ch/pixi/internal/adapters/linear"
	_ "go.trai.ch/pixi/internal/adapters/lockstore"
	_ "go.trai.ch/pixi/internal/adapters/logger"
	_ "go.trai.ch/pixi/internal/adapters/manifest"
	_ "go.trai.ch/pixi/internal/adapters/metrics"
	_ "go.trai.ch/pixi/internal/adapters/pypi"
	_ "go.trai.ch/pixi/internal/adapters/shell"
	_ "go.trai.ch/pixi/internal/adapters/solver"
	_ "go.trai.ch/pixi/internal/adapters/telemetry"
	// Register app, engine and installer nodes.
	_ "go.trai.ch/pixi/internal/app"
	_ "go.trai.ch/pixi/internal/engine/limits"
	_ "go.trai.ch/pixi/internal/engine/scheduler"
	_ "go.trai.ch/pixi/internal/install/conda"
	_ "go.trai.ch/pixi/internal/install/pypi"
	_ "go.trai.ch/pixi/internal/resolve"
)
