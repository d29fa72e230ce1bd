package ports

import (
	"context"

	"go.trai.ch/pixi/internal/core/domain"
)

//go:generate mockgen -source=solver.go -destination=mocks/mock_solver.go -package=mocks

// BinarySolveRequest is the input of a binary ecosystem solve for one target.
type BinarySolveRequest struct {
	Specs           []domain.MatchSpec
	Channels        []string
	VirtualPackages []domain.VirtualPackage
	Platform        domain.Platform
	// Locked are previously locked records the solver should prefer.
	Locked []domain.LockedRecord
}

// BinarySolver is an opaque binary package solver.
type BinarySolver interface {
	// SolveBinary returns a consistent set of records satisfying the request.
	SolveBinary(ctx context.Context, req BinarySolveRequest) ([]domain.LockedRecord, error)
}

// WheelSolveRequest is the input of a wheel ecosystem solve for one target.
type WheelSolveRequest struct {
	// Root is the project directory relative local paths are resolved against.
	Root         string
	Requirements []domain.PypiRequirement
	Indexes      domain.PypiIndexes
	Platform     domain.Platform
	// PythonVersion is the version of the interpreter in the binary solve.
	PythonVersion string
	// Excluded are names provided by the binary ecosystem; the solver must not lock them.
	Excluded []domain.PackageName
	// Locked are previously locked wheels the solver should prefer.
	Locked []domain.LockedWheel
	// Build is the prefix source builds run against. It is nil when nothing needs a build.
	Build            *domain.BuildEnvironment
	NoBuildIsolation []domain.PackageName
}

// WheelSolver is an opaque wheel package solver.
type WheelSolver interface {
	// SolveWheels returns the locked wheels satisfying the request, with their activated extras.
	SolveWheels(ctx context.Context, req WheelSolveRequest) ([]domain.LockedWheel, error)
}

// BuildContext provides the prefix that wheel source builds run against.
type BuildContext interface {
	// GetOrInit returns the build environment, materializing it on first use.
	GetOrInit(ctx context.Context) (*domain.BuildEnvironment, error)
}
