// Package scheduler solves the outdated targets of a lock file and merges the results.
package scheduler

import (
	"context"
	"errors"
	"maps"
	"runtime"
	"slices"
	"sync"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/lockfile/satisfiability"
	"go.trai.ch/pixi/internal/resolve"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// TaskStatus represents the status of a target.
type TaskStatus string

const (
	// StatusPending indicates the target is waiting to be solved.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the target is being solved.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the target was solved.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the target, or a sibling in its solve group, failed.
	StatusFailed TaskStatus = "Failed"
)

// UpdateContext is the input of one lock file update.
type UpdateContext struct {
	Manifest *domain.Manifest
	// LockFile is the current lock file. It is not modified.
	LockFile *domain.LockFile
	Outdated *domain.OutdatedEnvironments
	// NoInstall forbids installing prefixes for source builds.
	NoInstall bool
	// HostPlatform is the platform source builds run on, domain.CurrentPlatform() when empty.
	HostPlatform domain.Platform
}

// UpdateResult is the outcome of a lock file update.
type UpdateResult struct {
	// LockFile holds the fresh results of every successful target and the previous content of
	// every failed one.
	LockFile *domain.LockFile
	// Failures joins the error of every failed target, nil when all succeeded.
	Failures error
	// PrefixesUpdated are the prefixes installed for source builds during the update.
	PrefixesUpdated []string
}

// Scheduler runs the binary and wheel resolves of the outdated targets.
type Scheduler struct {
	binary       *resolve.BinaryResolver
	wheels       *resolve.WheelResolver
	materializer *resolve.Materializer
	tracer       ports.Tracer
	logger       ports.Logger

	mu         sync.RWMutex
	taskStatus map[domain.Target]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	binary *resolve.BinaryResolver,
	wheels *resolve.WheelResolver,
	materializer *resolve.Materializer,
	tracer ports.Tracer,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		binary:       binary,
		wheels:       wheels,
		materializer: materializer,
		tracer:       tracer,
		logger:       logger,
		taskStatus:   make(map[domain.Target]TaskStatus),
	}
}

// initTaskStatuses replaces the statuses of the previous update.
func (s *Scheduler) initTaskStatuses(targets []domain.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taskStatus = make(map[domain.Target]TaskStatus, len(targets))
	for _, t := range targets {
		s.taskStatus[t] = StatusPending
	}
}

func (s *Scheduler) updateStatus(t domain.Target, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[t] = status
}

// Update solves every outdated target. Binary solves of all targets finish before any wheel
// solve starts, so a wheel solve that needs a build prefix never waits on a running task.
// A failed target does not cancel its siblings, but it fails every member of its solve group
// on the same platform.
func (s *Scheduler) Update(ctx context.Context, uc UpdateContext) (*UpdateResult, error) {
	state := s.newUpdateState(uc)
	if len(state.targets) > 0 {
		s.logger.Info("updating lock file", "targets", len(state.targets))
	}
	s.tracer.EmitPlan(ctx, state.plan())
	s.initTaskStatuses(state.targets)

	state.runPhase(ctx, state.binaryTargets(), state.solveBinary)
	state.invalidateGroups()
	state.runPhase(ctx, state.wheelTargets(), state.solveWheels)
	state.invalidateGroups()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, t := range state.targets {
		if _, failed := state.failed[t]; failed {
			s.updateStatus(t, StatusFailed)
		} else {
			s.updateStatus(t, StatusCompleted)
		}
	}

	return &UpdateResult{
		LockFile:        state.merge(),
		Failures:        state.failures(),
		PrefixesUpdated: state.prefixesUpdated(),
	}, nil
}

type updateState struct {
	s       *Scheduler
	uc      UpdateContext
	host    domain.Platform
	targets []domain.Target

	mu     sync.Mutex
	binary map[domain.Target][]domain.LockedRecord
	wheels map[domain.Target][]domain.LockedWheel
	failed map[domain.Target]error

	lazyMu sync.Mutex
	// lazy holds one build prefix per solve group, keyed by its directory.
	lazy map[string]*resolve.LazyPrefix
}

func (s *Scheduler) newUpdateState(uc UpdateContext) *updateState {
	host := uc.HostPlatform
	if host == "" {
		host = domain.CurrentPlatform()
	}
	return &updateState{
		s:       s,
		uc:      uc,
		host:    host,
		targets: uc.Outdated.Targets(),
		binary:  make(map[domain.Target][]domain.LockedRecord),
		wheels:  make(map[domain.Target][]domain.LockedWheel),
		failed:  make(map[domain.Target]error),
		lazy:    make(map[string]*resolve.LazyPrefix),
	}
}

func (state *updateState) env(t domain.Target) *domain.Environment {
	return state.uc.Manifest.Environment(t.Environment)
}

func (state *updateState) plan() []string {
	var steps []string
	for _, t := range state.targets {
		name := state.env(t).Name + " " + t.Platform.String()
		if state.uc.Outdated.IsCondaOutdated(t.Environment, t.Platform) {
			steps = append(steps, "solve conda "+name)
		}
		if state.uc.Outdated.IsPypiOutdated(t.Environment, t.Platform) {
			steps = append(steps, "solve pypi "+name)
		}
	}
	return steps
}

func (state *updateState) binaryTargets() []domain.Target {
	var out []domain.Target
	for _, t := range state.targets {
		if state.uc.Outdated.IsCondaOutdated(t.Environment, t.Platform) {
			out = append(out, t)
			continue
		}
		// Only the wheels are stale: the locked binary set stays.
		if locked, ok := state.uc.LockFile.Platform(state.env(t).Name, t.Platform); ok {
			state.binary[t] = locked.Binary
		}
	}
	return out
}

func (state *updateState) wheelTargets() []domain.Target {
	var out []domain.Target
	for _, t := range state.targets {
		if _, failed := state.failed[t]; failed {
			continue
		}
		if state.uc.Outdated.IsPypiOutdated(t.Environment, t.Platform) {
			out = append(out, t)
		}
	}
	return out
}

// runPhase solves targets concurrently, bounded by the number of CPUs. Failures are recorded
// per target instead of canceling the phase.
func (state *updateState) runPhase(
	ctx context.Context,
	targets []domain.Target,
	solve func(ctx context.Context, t domain.Target) error,
) {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, t := range targets {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			state.s.updateStatus(t, StatusRunning)
			if err := solve(ctx, t); err != nil {
				state.fail(t, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (state *updateState) fail(t domain.Target, err error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if _, ok := state.failed[t]; ok {
		return
	}
	state.failed[t] = zerr.With(zerr.With(
		zerr.Wrap(err, domain.ErrTargetFailed.Error()),
		"environment", state.env(t).Name),
		"platform", t.Platform.String())
}

func (state *updateState) solveBinary(ctx context.Context, t domain.Target) error {
	env := state.env(t)
	var preferred []domain.LockedRecord
	if !state.uc.Outdated.DisregardConda(t.Environment) {
		if locked, ok := state.uc.LockFile.Platform(env.Name, t.Platform); ok {
			preferred = locked.Binary
		}
	}

	records, err := state.s.binary.Resolve(ctx, resolve.BinaryRequest{
		Environment: env,
		Platform:    t.Platform,
		Locked:      preferred,
	})
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	state.binary[t] = records
	return nil
}

func (state *updateState) solveWheels(ctx context.Context, t domain.Target) error {
	env := state.env(t)
	var preferred []domain.LockedWheel
	if !state.uc.Outdated.DisregardPypi(t.Environment) {
		if locked, ok := state.uc.LockFile.Platform(env.Name, t.Platform); ok {
			preferred = locked.Wheels
		}
	}

	state.mu.Lock()
	binary := state.binary[t]
	state.mu.Unlock()

	solution, err := state.s.wheels.Resolve(ctx, resolve.WheelRequest{
		Root:        state.uc.Manifest.Root,
		Environment: env,
		Platform:    t.Platform,
		Binary:      binary,
		Indexes:     satisfiability.EffectiveIndexes(env),
		Locked:      preferred,
		Build:       state.buildPrefix(t.Environment),
	})
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	state.wheels[t] = solution.Wheels
	return nil
}

// buildPrefix returns the lazily installed host prefix of an environment's solve group. All
// members of a group share one prefix, built from the union of their host platform binary sets,
// which the binary phase already produced or the lock file holds.
func (state *updateState) buildPrefix(idx domain.EnvironmentIdx) *resolve.LazyPrefix {
	m := state.uc.Manifest
	env := m.Environment(idx)
	prefix := domain.EnvironmentPrefix(m.Root, env.Name)
	if env.SolveGroup != domain.NoSolveGroup {
		prefix = domain.SolveGroupPrefix(m.Root, m.SolveGroupName(idx))
	}

	state.lazyMu.Lock()
	defer state.lazyMu.Unlock()

	if lazy, ok := state.lazy[prefix]; ok {
		return lazy
	}

	members := m.GroupMembers(idx)
	var platform domain.Platform
	for _, member := range members {
		if m.Environment(member).SupportsPlatform(state.host) {
			platform = state.host
			break
		}
	}

	lazy := state.s.materializer.Lazy(m.SolveGroupName(idx), prefix, platform,
		resolve.Records(state.hostRecords(members)), state.uc.NoInstall)
	state.lazy[prefix] = lazy
	return lazy
}

// hostRecords merges the host platform binary sets of the group members. Members of a solve
// group agree on every shared package, so the first record of a name wins.
func (state *updateState) hostRecords(members []domain.EnvironmentIdx) ([]domain.LockedRecord, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	var out []domain.LockedRecord
	seen := make(map[string]struct{})
	for _, idx := range members {
		t := domain.Target{Environment: idx, Platform: state.host}
		if err, failed := state.failed[t]; failed {
			return nil, err
		}
		records, ok := state.binary[t]
		if !ok {
			if locked, found := state.uc.LockFile.Platform(state.env(t).Name, t.Platform); found {
				records = locked.Binary
			}
		}
		for _, r := range records {
			if _, dup := seen[r.PackageName()]; dup {
				continue
			}
			seen[r.PackageName()] = struct{}{}
			out = append(out, r)
		}
	}
	return out, nil
}

// invalidateGroups fails every solve group member on a platform where one member failed.
func (state *updateState) invalidateGroups() {
	state.mu.Lock()
	defer state.mu.Unlock()

	outdated := make(map[domain.Target]struct{}, len(state.targets))
	for _, t := range state.targets {
		outdated[t] = struct{}{}
	}

	var invalid []domain.Target
	for t := range state.failed {
		for _, member := range state.uc.Manifest.GroupMembers(t.Environment) {
			sibling := domain.Target{Environment: member, Platform: t.Platform}
			if _, ok := outdated[sibling]; !ok {
				continue
			}
			if _, ok := state.failed[sibling]; !ok {
				invalid = append(invalid, sibling)
			}
		}
	}
	for _, t := range invalid {
		state.failed[t] = zerr.With(zerr.With(zerr.With(
			zerr.Wrap(domain.ErrSolveGroupFailed, domain.ErrTargetFailed.Error()),
			"environment", state.env(t).Name),
			"platform", t.Platform.String()),
			"solve-group", state.uc.Manifest.SolveGroupName(t.Environment))
	}
}

// merge applies the successful results to a copy of the previous lock file.
func (state *updateState) merge() *domain.LockFile {
	m := state.uc.Manifest
	out := state.uc.LockFile.Clone()

	for _, name := range state.uc.Outdated.RemovedEnvironments {
		out.RemoveEnvironment(name)
	}
	for idx, platforms := range state.uc.Outdated.AdditionalPlatforms {
		for p := range platforms {
			out.RemovePlatform(m.Environment(idx).Name, p)
		}
	}

	complete := make(map[domain.EnvironmentIdx]bool)
	for _, t := range state.targets {
		env := state.env(t)
		if _, failed := state.failed[t]; failed {
			complete[t.Environment] = false
			continue
		}
		if _, seen := complete[t.Environment]; !seen {
			complete[t.Environment] = true
		}

		locked := &domain.LockedPlatform{}
		if previous, ok := state.uc.LockFile.Platform(env.Name, t.Platform); ok {
			locked.Binary = previous.Binary
			locked.Wheels = previous.Wheels
		}
		if state.uc.Outdated.IsCondaOutdated(t.Environment, t.Platform) {
			locked.Binary = state.binary[t]
		}
		if state.uc.Outdated.IsPypiOutdated(t.Environment, t.Platform) {
			locked.Wheels = state.wheels[t]
		}
		out.SetPlatform(env.Name, t.Platform, locked)
	}

	for idx, ok := range complete {
		if !ok {
			continue
		}
		env := m.Environment(idx)
		locked := out.EnsureEnvironment(env.Name)
		locked.Channels = env.Channels
		locked.Indexes = nil
		if env.HasPypiDependencies() {
			indexes := satisfiability.EffectiveIndexes(env)
			locked.Indexes = &indexes
		}
	}
	return out
}

func (state *updateState) failures() error {
	var errs []error
	for _, t := range state.targets {
		if err, ok := state.failed[t]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (state *updateState) prefixesUpdated() []string {
	state.lazyMu.Lock()
	defer state.lazyMu.Unlock()

	var out []string
	for _, prefix := range slices.Sorted(maps.Keys(state.lazy)) {
		if state.lazy[prefix].Materialized() {
			out = append(out, prefix)
		}
	}
	return out
}
