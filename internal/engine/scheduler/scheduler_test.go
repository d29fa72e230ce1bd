package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/pixi/internal/adapters/telemetry"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/core/ports/mocks"
	"go.trai.ch/pixi/internal/engine/limits"
	"go.trai.ch/pixi/internal/engine/scheduler"
	"go.trai.ch/pixi/internal/lockfile/outdated"
	"go.trai.ch/pixi/internal/resolve"
)

const (
	linux = domain.PlatformLinux64
	osx   = domain.PlatformOsxArm64
	root  = "/project"
)

type schedulerTestMocks struct {
	binary    *mocks.MockBinarySolver
	wheels    *mocks.MockWheelSolver
	installer *mocks.MockPrefixInstaller
	querier   *mocks.MockInterpreterQuerier
	logger    *mocks.MockLogger
}

// setupSchedulerTest creates a scheduler over mocked solvers.
func setupSchedulerTest(t *testing.T) (*scheduler.Scheduler, schedulerTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := schedulerTestMocks{
		binary:    mocks.NewMockBinarySolver(ctrl),
		wheels:    mocks.NewMockWheelSolver(ctrl),
		installer: mocks.NewMockPrefixInstaller(ctrl),
		querier:   mocks.NewMockInterpreterQuerier(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
	}
	m.logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()

	tracer := telemetry.NewNoOpTracer()
	pool := limits.NewPool(4)
	s := scheduler.NewScheduler(
		resolve.NewBinaryResolver(m.binary, pool, tracer),
		resolve.NewWheelResolver(m.wheels, pool, tracer),
		resolve.NewMaterializer(m.installer, m.querier, tracer),
		tracer,
		m.logger,
	)
	return s, m
}

func environment(name string, group domain.SolveGroupIdx, platforms []domain.Platform, binary []string, pypi ...string) *domain.Environment {
	reqs := domain.Requirements{}
	for _, s := range binary {
		reqs.Binary = append(reqs.Binary, domain.MustParseMatchSpec(s))
	}
	for _, r := range pypi {
		reqs.Pypi = append(reqs.Pypi, domain.MustParsePypiRequirement(r))
	}
	deps := make(map[domain.Platform]domain.Requirements, len(platforms))
	for _, p := range platforms {
		deps[p] = reqs
	}
	return &domain.Environment{
		Name:         name,
		Platforms:    platforms,
		SolveGroup:   group,
		Channels:     []string{"conda-forge"},
		Dependencies: deps,
	}
}

func record(name, version string) *domain.BinaryRecord {
	return &domain.BinaryRecord{
		Name:    name,
		Version: version,
		Build:   "h0_0",
		URL:     "https://conda.anaconda.org/conda-forge/" + name + "-" + version + "-h0_0.conda",
	}
}

func wheel(name, version string) domain.LockedWheel {
	return domain.LockedWheel{Package: domain.WheelPackageData{
		Name:     domain.NewPackageName(name),
		Version:  version,
		Location: "https://files.example.com/" + name + "-" + version + "-py3-none-any.whl",
	}}
}

func outdatedFor(conda, pypi []domain.Target) *domain.OutdatedEnvironments {
	out := domain.NewOutdatedEnvironments()
	for _, t := range conda {
		out.MarkConda(t.Environment, t.Platform)
	}
	for _, t := range pypi {
		out.MarkPypi(t.Environment, t.Platform)
	}
	return out
}

func TestScheduler_EmptyLockFileRoundTrip(t *testing.T) {
	t.Parallel()

	s, m := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root:         root,
		Environments: []*domain.Environment{environment("default", domain.NoSolveGroup, []domain.Platform{linux}, nil)},
	}
	m.binary.EXPECT().SolveBinary(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

	ctx := context.Background()
	before, err := outdated.Analyze(ctx, manifest, domain.NewLockFile(), outdated.Options{Logger: m.logger})
	require.NoError(t, err)
	require.False(t, before.IsEmpty())

	result, err := s.Update(ctx, scheduler.UpdateContext{
		Manifest:     manifest,
		LockFile:     domain.NewLockFile(),
		Outdated:     before,
		HostPlatform: linux,
	})
	require.NoError(t, err)
	require.NoError(t, result.Failures)

	locked, ok := result.LockFile.Platform("default", linux)
	require.True(t, ok)
	assert.Empty(t, locked.Binary)
	assert.Empty(t, locked.Wheels)
	assert.Empty(t, result.PrefixesUpdated)

	after, err := outdated.Analyze(ctx, manifest, result.LockFile, outdated.Options{Logger: m.logger})
	require.NoError(t, err)
	assert.True(t, after.IsEmpty())
	assert.Empty(t, after.Targets())
}

func TestScheduler_SolveGroupFailureInvalidatesMembers(t *testing.T) {
	t.Parallel()

	s, m := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root: root,
		Environments: []*domain.Environment{
			environment("a", 0, []domain.Platform{linux}, []string{"foo 2.*"}),
			environment("b", 0, []domain.Platform{linux}, []string{"bar"}),
			environment("c", domain.NoSolveGroup, []domain.Platform{linux}, []string{"baz"}),
		},
		SolveGroups: []domain.SolveGroup{{Name: "g", Environments: []domain.EnvironmentIdx{0, 1}}},
	}
	lf := domain.NewLockFile()
	lf.SetPlatform("b", linux, &domain.LockedPlatform{Binary: []domain.LockedRecord{record("bar", "1.0")}})

	m.binary.EXPECT().SolveBinary(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.BinarySolveRequest) ([]domain.LockedRecord, error) {
			switch req.Specs[0].Name {
			case "foo":
				return nil, errors.New("nothing provides foo 2.*")
			case "bar":
				return []domain.LockedRecord{record("bar", "2.0")}, nil
			default:
				return []domain.LockedRecord{record("baz", "1.0")}, nil
			}
		}).Times(3)

	targets := []domain.Target{{Environment: 0, Platform: linux}, {Environment: 1, Platform: linux}, {Environment: 2, Platform: linux}}
	result, err := s.Update(context.Background(), scheduler.UpdateContext{
		Manifest:     manifest,
		LockFile:     lf,
		Outdated:     outdatedFor(targets, targets),
		HostPlatform: linux,
	})
	require.NoError(t, err)

	require.Error(t, result.Failures)
	assert.ErrorContains(t, result.Failures, "nothing provides foo 2.*")
	assert.ErrorContains(t, result.Failures, domain.ErrSolveGroupFailed.Error())

	b, ok := result.LockFile.Platform("b", linux)
	require.True(t, ok)
	assert.Equal(t, "1.0", b.Binary[0].PackageVersion(), "a failed sibling keeps the previous content")
	_, ok = result.LockFile.Platform("a", linux)
	assert.False(t, ok)

	c, ok := result.LockFile.Platform("c", linux)
	require.True(t, ok)
	assert.Len(t, c.Binary, 1)
	cEnv, _ := result.LockFile.Environment("c")
	assert.Equal(t, []string{"conda-forge"}, cEnv.Channels)

	statuses := s.GetTaskStatusMap()
	assert.Equal(t, scheduler.StatusFailed, statuses[targets[0]])
	assert.Equal(t, scheduler.StatusFailed, statuses[targets[1]])
	assert.Equal(t, scheduler.StatusCompleted, statuses[targets[2]])
}

func TestScheduler_PypiOnlyKeepsBinary(t *testing.T) {
	t.Parallel()

	s, m := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root:         root,
		Environments: []*domain.Environment{environment("default", domain.NoSolveGroup, []domain.Platform{linux}, []string{"python 3.12.*"}, "requests>=2")},
	}
	binary := []domain.LockedRecord{record("python", "3.12.1")}
	lf := domain.NewLockFile()
	lf.SetPlatform("default", linux, &domain.LockedPlatform{Binary: binary, Wheels: []domain.LockedWheel{wheel("requests", "2.30.0")}})

	m.binary.EXPECT().SolveBinary(gomock.Any(), gomock.Any()).Times(0)
	m.wheels.EXPECT().SolveWheels(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.WheelSolveRequest) ([]domain.LockedWheel, error) {
			assert.Equal(t, "3.12.1", req.PythonVersion)
			assert.Equal(t, []domain.LockedWheel{wheel("requests", "2.30.0")}, req.Locked)
			assert.Equal(t, domain.DefaultPypiIndexURL, req.Indexes.IndexURL)
			return []domain.LockedWheel{wheel("requests", "2.31.0")}, nil
		})

	result, err := s.Update(context.Background(), scheduler.UpdateContext{
		Manifest:     manifest,
		LockFile:     lf,
		Outdated:     outdatedFor(nil, []domain.Target{{Environment: 0, Platform: linux}}),
		HostPlatform: linux,
	})
	require.NoError(t, err)
	require.NoError(t, result.Failures)

	locked, _ := result.LockFile.Platform("default", linux)
	assert.Equal(t, binary, locked.Binary)
	require.Len(t, locked.Wheels, 1)
	assert.Equal(t, "2.31.0", locked.Wheels[0].Package.Version)

	env, _ := result.LockFile.Environment("default")
	require.NotNil(t, env.Indexes)
	assert.Equal(t, domain.DefaultPypiIndexURL, env.Indexes.IndexURL)

	original, _ := lf.Platform("default", linux)
	assert.Equal(t, "2.30.0", original.Wheels[0].Package.Version, "the input lock file is not modified")
}

func TestScheduler_DisregardedContentIsNotPreferred(t *testing.T) {
	t.Parallel()

	s, m := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root:         root,
		Environments: []*domain.Environment{environment("default", domain.NoSolveGroup, []domain.Platform{linux}, []string{"zlib"})},
	}
	lf := domain.NewLockFile()
	lf.SetPlatform("default", linux, &domain.LockedPlatform{Binary: []domain.LockedRecord{record("zlib", "1.2")}})

	out := outdatedFor([]domain.Target{{Environment: 0, Platform: linux}}, nil)
	out.DisregardLockedContent.Conda[0] = struct{}{}

	m.binary.EXPECT().SolveBinary(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.BinarySolveRequest) ([]domain.LockedRecord, error) {
			assert.Empty(t, req.Locked)
			return []domain.LockedRecord{record("zlib", "1.3")}, nil
		})

	result, err := s.Update(context.Background(), scheduler.UpdateContext{
		Manifest: manifest, LockFile: lf, Outdated: out, HostPlatform: linux,
	})
	require.NoError(t, err)
	require.NoError(t, result.Failures)
}

func TestScheduler_RemovesUndeclaredContent(t *testing.T) {
	t.Parallel()

	s, _ := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root:         root,
		Environments: []*domain.Environment{environment("default", domain.NoSolveGroup, []domain.Platform{linux}, nil)},
	}
	lf := domain.NewLockFile()
	lf.SetPlatform("default", linux, &domain.LockedPlatform{})
	lf.SetPlatform("default", osx, &domain.LockedPlatform{})
	lf.SetPlatform("gone", linux, &domain.LockedPlatform{})

	out := domain.NewOutdatedEnvironments()
	out.RemovedEnvironments = []string{"gone"}
	out.AdditionalPlatforms = map[domain.EnvironmentIdx]domain.PlatformSet{0: domain.NewPlatformSet(osx)}

	result, err := s.Update(context.Background(), scheduler.UpdateContext{
		Manifest: manifest, LockFile: lf, Outdated: out, HostPlatform: linux,
	})
	require.NoError(t, err)

	_, ok := result.LockFile.Environment("gone")
	assert.False(t, ok)
	_, ok = result.LockFile.Platform("default", osx)
	assert.False(t, ok)
	_, ok = result.LockFile.Platform("default", linux)
	assert.True(t, ok)
}

func TestScheduler_SourceBuildUsesHostPrefix(t *testing.T) {
	t.Parallel()

	s, m := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root: root,
		Environments: []*domain.Environment{
			environment("default", domain.NoSolveGroup, []domain.Platform{linux, osx}, []string{"python 3.12.*"}, "mylib @ ./mylib"),
		},
	}
	prefix := domain.EnvironmentPrefix(root, "default")

	m.binary.EXPECT().SolveBinary(gomock.Any(), gomock.Any()).
		Return([]domain.LockedRecord{record("python", "3.12.1")}, nil).Times(2)
	m.installer.EXPECT().Update(gomock.Any(), prefix, "default", linux, gomock.Any()).
		Return(&domain.CondaPrefixUpdated{Prefix: prefix, Changed: true}, nil).Times(1)
	m.querier.EXPECT().Query(gomock.Any(), prefix, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, expected domain.PythonInfo) (domain.PythonInfo, error) {
			return expected, nil
		}).Times(1)
	m.wheels.EXPECT().SolveWheels(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.WheelSolveRequest) ([]domain.LockedWheel, error) {
			require.NotNil(t, req.Build)
			assert.Equal(t, prefix, req.Build.Prefix)
			return []domain.LockedWheel{wheel("mylib", "0.1.0")}, nil
		}).Times(2)

	targets := []domain.Target{{Environment: 0, Platform: linux}, {Environment: 0, Platform: osx}}
	result, err := s.Update(context.Background(), scheduler.UpdateContext{
		Manifest:     manifest,
		LockFile:     domain.NewLockFile(),
		Outdated:     outdatedFor(targets, targets),
		HostPlatform: linux,
	})
	require.NoError(t, err)
	require.NoError(t, result.Failures)
	assert.Equal(t, []string{prefix}, result.PrefixesUpdated)
}

func TestScheduler_SolveGroupSharesBuildPrefix(t *testing.T) {
	t.Parallel()

	s, m := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root: root,
		Environments: []*domain.Environment{
			environment("a", 0, []domain.Platform{linux}, []string{"python 3.12.*"}, "mylib @ ./mylib"),
			environment("b", 0, []domain.Platform{linux}, []string{"python 3.12.*", "numpy"}, "mylib @ ./mylib"),
		},
		SolveGroups: []domain.SolveGroup{{Name: "g", Environments: []domain.EnvironmentIdx{0, 1}}},
	}
	prefix := domain.SolveGroupPrefix(root, "g")

	m.binary.EXPECT().SolveBinary(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.BinarySolveRequest) ([]domain.LockedRecord, error) {
			if len(req.Specs) == 2 {
				return []domain.LockedRecord{record("python", "3.12.1"), record("numpy", "2.0.0")}, nil
			}
			return []domain.LockedRecord{record("python", "3.12.1")}, nil
		}).Times(2)

	var installed []string
	m.installer.EXPECT().Update(gomock.Any(), prefix, "g", linux, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ domain.Platform, records []domain.LockedRecord) (*domain.CondaPrefixUpdated, error) {
			for _, r := range records {
				installed = append(installed, r.PackageName())
			}
			return &domain.CondaPrefixUpdated{Prefix: prefix, Changed: true}, nil
		}).Times(1)
	m.querier.EXPECT().Query(gomock.Any(), prefix, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, expected domain.PythonInfo) (domain.PythonInfo, error) {
			return expected, nil
		}).Times(1)
	m.wheels.EXPECT().SolveWheels(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.WheelSolveRequest) ([]domain.LockedWheel, error) {
			require.NotNil(t, req.Build)
			assert.Equal(t, prefix, req.Build.Prefix)
			return []domain.LockedWheel{wheel("mylib", "0.1.0")}, nil
		}).Times(2)

	targets := []domain.Target{{Environment: 0, Platform: linux}, {Environment: 1, Platform: linux}}
	result, err := s.Update(context.Background(), scheduler.UpdateContext{
		Manifest:     manifest,
		LockFile:     domain.NewLockFile(),
		Outdated:     outdatedFor(targets, targets),
		HostPlatform: linux,
	})
	require.NoError(t, err)
	require.NoError(t, result.Failures)
	assert.Equal(t, []string{prefix}, result.PrefixesUpdated)
	assert.ElementsMatch(t, []string{"python", "numpy"}, installed)
}

func TestScheduler_StatusesResetBetweenUpdates(t *testing.T) {
	t.Parallel()

	s, m := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root: root,
		Environments: []*domain.Environment{
			environment("a", domain.NoSolveGroup, []domain.Platform{linux}, []string{"foo"}),
			environment("b", domain.NoSolveGroup, []domain.Platform{linux}, []string{"bar"}),
		},
	}
	m.binary.EXPECT().SolveBinary(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

	first := []domain.Target{{Environment: 0, Platform: linux}}
	_, err := s.Update(context.Background(), scheduler.UpdateContext{
		Manifest: manifest, LockFile: domain.NewLockFile(), Outdated: outdatedFor(first, nil), HostPlatform: linux,
	})
	require.NoError(t, err)
	require.Contains(t, s.GetTaskStatusMap(), first[0])

	second := []domain.Target{{Environment: 1, Platform: linux}}
	_, err = s.Update(context.Background(), scheduler.UpdateContext{
		Manifest: manifest, LockFile: domain.NewLockFile(), Outdated: outdatedFor(second, nil), HostPlatform: linux,
	})
	require.NoError(t, err)

	statuses := s.GetTaskStatusMap()
	assert.Len(t, statuses, 1)
	assert.Equal(t, scheduler.StatusCompleted, statuses[second[0]])
}

func TestScheduler_SourceBuildWithoutHostPlatform(t *testing.T) {
	t.Parallel()

	s, m := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root: root,
		Environments: []*domain.Environment{
			environment("default", domain.NoSolveGroup, []domain.Platform{osx}, []string{"python 3.12.*"}, "mylib @ ./mylib"),
		},
	}
	m.binary.EXPECT().SolveBinary(gomock.Any(), gomock.Any()).
		Return([]domain.LockedRecord{record("python", "3.12.1")}, nil)

	targets := []domain.Target{{Environment: 0, Platform: osx}}
	result, err := s.Update(context.Background(), scheduler.UpdateContext{
		Manifest:     manifest,
		LockFile:     domain.NewLockFile(),
		Outdated:     outdatedFor(targets, targets),
		HostPlatform: linux,
	})
	require.NoError(t, err)
	require.ErrorContains(t, result.Failures, domain.ErrNoBuildPlatform.Error())
	assert.ErrorContains(t, result.Failures, domain.ErrTargetFailed.Error())
}

func TestScheduler_Canceled(t *testing.T) {
	t.Parallel()

	s, _ := setupSchedulerTest(t)
	manifest := &domain.Manifest{
		Root:         root,
		Environments: []*domain.Environment{environment("default", domain.NoSolveGroup, []domain.Platform{linux}, nil)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	targets := []domain.Target{{Environment: 0, Platform: linux}}
	_, err := s.Update(ctx, scheduler.UpdateContext{
		Manifest: manifest, LockFile: domain.NewLockFile(), Outdated: outdatedFor(targets, targets), HostPlatform: linux,
	})
	require.ErrorIs(t, err, context.Canceled)
}
