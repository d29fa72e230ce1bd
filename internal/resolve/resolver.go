package resolve

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

// BinaryRequest is the input of a binary resolve for one target.
type BinaryRequest struct {
	Environment *domain.Environment
	Platform    domain.Platform
	// Locked is the previously locked set, offered to the solver as preferences.
	Locked []domain.LockedRecord
}

// BinaryResolver solves the binary requirements of a target.
type BinaryResolver struct {
	solver ports.BinarySolver
	pool   ports.ComputePool
	tracer ports.Tracer
}

// NewBinaryResolver creates a BinaryResolver.
func NewBinaryResolver(solver ports.BinarySolver, pool ports.ComputePool, tracer ports.Tracer) *BinaryResolver {
	return &BinaryResolver{solver: solver, pool: pool, tracer: tracer}
}

// Resolve returns the locked binary records of the target. Solver failures are not retried.
func (r *BinaryResolver) Resolve(ctx context.Context, req BinaryRequest) ([]domain.LockedRecord, error) {
	env := req.Environment
	specs := env.RequirementsFor(req.Platform).Binary

	ctx, span := r.tracer.Start(ctx, "solve conda "+env.Name+" "+req.Platform.String(),
		ports.WithStepKind(domain.StepSolveConda),
		ports.WithAttribute("pixi.environment", env.Name),
		ports.WithAttribute("pixi.platform", req.Platform.String()))
	defer span.End()

	var records []domain.LockedRecord
	err := r.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		records, err = r.solver.SolveBinary(ctx, ports.BinarySolveRequest{
			Specs:           specs,
			Channels:        env.Channels,
			VirtualPackages: env.VirtualPackages,
			Platform:        req.Platform,
			Locked:          req.Locked,
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(zerr.With(zerr.With(
			zerr.Wrap(err, domain.ErrBinarySolveFailed.Error()),
			"environment", env.Name),
			"platform", req.Platform.String()),
			"specs", specString(specs))
	}
	span.SetAttribute("pixi.packages", len(records))
	return records, nil
}

func specString(specs []domain.MatchSpec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// WheelRequest is the input of a wheel resolve for one target.
type WheelRequest struct {
	// Root is the project directory.
	Root        string
	Environment *domain.Environment
	Platform    domain.Platform
	// Binary is the binary solve result of the same target.
	Binary []domain.LockedRecord
	// Indexes is the effective index configuration of the environment.
	Indexes domain.PypiIndexes
	// Locked is the previously locked wheel set, offered to the solver as preferences.
	Locked []domain.LockedWheel
	// SelfRequirement is the project itself as an editable requirement, if it is a wheel package.
	SelfRequirement *domain.PypiRequirement
	// Build is consulted only when a requirement must be built from source.
	Build ports.BuildContext
}

// WheelSolution is the result of a wheel resolve.
type WheelSolution struct {
	Wheels []domain.LockedWheel
	// Excluded are the names the binary ecosystem provides.
	Excluded []domain.PackageName
	// Materialized reports whether a build prefix was requested.
	Materialized bool
}

// WheelResolver solves the wheel requirements of a target.
type WheelResolver struct {
	solver ports.WheelSolver
	pool   ports.ComputePool
	tracer ports.Tracer
}

// NewWheelResolver creates a WheelResolver.
func NewWheelResolver(solver ports.WheelSolver, pool ports.ComputePool, tracer ports.Tracer) *WheelResolver {
	return &WheelResolver{solver: solver, pool: pool, tracer: tracer}
}

// Resolve returns the locked wheels of the target. Names provided by the binary records are
// excluded from the solve, and the build context is only consulted when a requirement needs a build.
func (r *WheelResolver) Resolve(ctx context.Context, req WheelRequest) (*WheelSolution, error) {
	env := req.Environment
	requirements := slices.Clone(env.RequirementsFor(req.Platform).Pypi)
	if req.SelfRequirement != nil {
		requirements = append(requirements, *req.SelfRequirement)
	}
	if len(requirements) == 0 {
		return &WheelSolution{}, nil
	}

	python, ok := domain.FindPython(req.Binary)
	if !ok {
		return nil, zerr.With(zerr.With(domain.ErrPythonMissing, "environment", env.Name), "platform", req.Platform.String())
	}

	excluded := providedNames(req.Binary)
	locked := slices.DeleteFunc(slices.Clone(req.Locked), func(w domain.LockedWheel) bool {
		return slices.Contains(excluded, w.Package.Name)
	})

	ctx, span := r.tracer.Start(ctx, "solve pypi "+env.Name+" "+req.Platform.String(),
		ports.WithStepKind(domain.StepSolvePypi),
		ports.WithAttribute("pixi.environment", env.Name),
		ports.WithAttribute("pixi.platform", req.Platform.String()))
	defer span.End()

	solution := &WheelSolution{Excluded: excluded}
	var build *domain.BuildEnvironment
	if needsBuild(requirements) {
		if req.Build == nil {
			err := zerr.With(domain.ErrNoBuildPlatform, "environment", env.Name)
			span.RecordError(err)
			return nil, err
		}
		var err error
		build, err = req.Build.GetOrInit(ctx)
		if err != nil {
			span.RecordError(err)
			return nil, zerr.With(zerr.With(err, "environment", env.Name), "platform", req.Platform.String())
		}
		solution.Materialized = true
	}

	err := r.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		solution.Wheels, err = r.solver.SolveWheels(ctx, ports.WheelSolveRequest{
			Root:             req.Root,
			Requirements:     requirements,
			Indexes:          req.Indexes,
			Platform:         req.Platform,
			PythonVersion:    python.PackageVersion(),
			Excluded:         excluded,
			Locked:           locked,
			Build:            build,
			NoBuildIsolation: env.NoBuildIsolation,
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(zerr.With(
			zerr.Wrap(err, domain.ErrWheelSolveFailed.Error()),
			"environment", env.Name),
			"platform", req.Platform.String())
	}

	// The solver may still return a binary provided name as a transitive dependency.
	solution.Wheels = slices.DeleteFunc(solution.Wheels, func(w domain.LockedWheel) bool {
		return slices.Contains(excluded, w.Package.Name)
	})
	span.SetAttribute("pixi.packages", len(solution.Wheels))
	return solution, nil
}

func needsBuild(requirements []domain.PypiRequirement) bool {
	return slices.ContainsFunc(requirements, domain.PypiRequirement.NeedsBuild)
}

func providedNames(records []domain.LockedRecord) []domain.PackageName {
	var out []domain.PackageName
	for _, r := range records {
		for _, name := range domain.ProvidedPypiNames(r) {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	slices.SortFunc(out, domain.PackageName.Compare)
	return out
}
