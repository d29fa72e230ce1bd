package resolve_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/pixi/internal/adapters/telemetry"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports/mocks"
	"go.trai.ch/pixi/internal/resolve"
)

const linux = domain.PlatformLinux64

// countingInstaller counts prefix installations and takes a while to finish each.
type countingInstaller struct {
	calls atomic.Int32
	err   error
}

func (c *countingInstaller) Update(
	_ context.Context,
	prefix, group string,
	platform domain.Platform,
	_ []domain.LockedRecord,
) (*domain.CondaPrefixUpdated, error) {
	c.calls.Add(1)
	time.Sleep(time.Second)
	if c.err != nil {
		return nil, c.err
	}
	return &domain.CondaPrefixUpdated{Group: group, Prefix: prefix, Platform: platform, Changed: true}, nil
}

type echoQuerier struct {
	calls atomic.Int32
}

func (q *echoQuerier) Query(_ context.Context, _ string, expected domain.PythonInfo) (domain.PythonInfo, error) {
	q.calls.Add(1)
	return expected, nil
}

func pythonRecords() []domain.LockedRecord {
	return []domain.LockedRecord{
		&domain.BinaryRecord{Name: "python", Version: "3.12.1", Build: "h0_0", URL: "https://c/python-3.12.1.conda"},
		&domain.BinaryRecord{Name: "zlib", Version: "1.3", Build: "h0_0", URL: "https://c/zlib-1.3.conda"},
	}
}

func TestLazyPrefix_MaterializesExactlyOnce(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		installer := &countingInstaller{}
		querier := &echoQuerier{}
		m := resolve.NewMaterializer(installer, querier, telemetry.NewNoOpTracer())
		lazy := m.Lazy("default", "/project/.pixi/envs/default", linux, resolve.Records(pythonRecords(), nil), false)

		assert.False(t, lazy.Materialized())

		const callers = 8
		results := make([]*domain.BuildEnvironment, callers)
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = lazy.GetOrInit(context.Background())
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), installer.calls.Load())
		assert.Equal(t, int32(1), querier.calls.Load())
		for i := range callers {
			require.NoError(t, errs[i])
			assert.Same(t, results[0], results[i])
		}
		assert.Equal(t, "3.12", results[0].Python.ShortVersion)
		assert.Equal(t, "/project/.pixi/envs/default", results[0].Prefix)
		assert.Contains(t, results[0].Env, "CONDA_PREFIX=/project/.pixi/envs/default")

		again, err := lazy.GetOrInit(context.Background())
		require.NoError(t, err)
		assert.Same(t, results[0], again)
		assert.Equal(t, int32(1), installer.calls.Load())
		assert.True(t, lazy.Materialized())
	})
}

func TestLazyPrefix_SharesFailure(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		installer := &countingInstaller{err: errors.New("disk full")}
		m := resolve.NewMaterializer(installer, &echoQuerier{}, telemetry.NewNoOpTracer())
		lazy := m.Lazy("default", "/p", linux, resolve.Records(pythonRecords(), nil), false)

		errs := make([]error, 4)
		var wg sync.WaitGroup
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = lazy.GetOrInit(context.Background())
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), installer.calls.Load())
		for _, err := range errs {
			require.Error(t, err)
			assert.Same(t, errs[0], err)
		}
		assert.False(t, lazy.Materialized())
	})
}

func TestLazyPrefix_WaiterHonorsContext(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		installer := &countingInstaller{}
		m := resolve.NewMaterializer(installer, &echoQuerier{}, telemetry.NewNoOpTracer())
		lazy := m.Lazy("default", "/p", linux, resolve.Records(pythonRecords(), nil), false)

		go func() { _, _ = lazy.GetOrInit(context.Background()) }()
		synctest.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, err := lazy.GetOrInit(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)

		time.Sleep(2 * time.Second)
		env, err := lazy.GetOrInit(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, env)
		assert.Equal(t, int32(1), installer.calls.Load())
	})
}

func TestLazyPrefix_Errors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	installer := mocks.NewMockPrefixInstaller(ctrl)
	querier := mocks.NewMockInterpreterQuerier(ctrl)
	m := resolve.NewMaterializer(installer, querier, telemetry.NewNoOpTracer())
	ctx := context.Background()

	t.Run("no install", func(t *testing.T) {
		lazy := m.Lazy("default", "/p", linux, resolve.Records(pythonRecords(), nil), true)
		_, err := lazy.GetOrInit(ctx)
		require.ErrorContains(t, err, domain.ErrInstallationRequiredButDisallowed.Error())
	})

	t.Run("no install without python", func(t *testing.T) {
		lazy := m.Lazy("default", "/p", linux, resolve.Records(pythonRecords()[1:], nil), true)
		_, err := lazy.GetOrInit(ctx)
		require.ErrorContains(t, err, domain.ErrInstallationRequiredButDisallowed.Error())
		assert.NotContains(t, err.Error(), domain.ErrPythonMissing.Error())
	})

	t.Run("python missing", func(t *testing.T) {
		lazy := m.Lazy("default", "/p", linux, resolve.Records(pythonRecords()[1:], nil), false)
		_, err := lazy.GetOrInit(ctx)
		require.ErrorContains(t, err, domain.ErrPythonMissing.Error())
	})

	t.Run("binary solve failed", func(t *testing.T) {
		lazy := m.Lazy("default", "/p", linux, resolve.Records(nil, errors.New("conflict")), false)
		_, err := lazy.GetOrInit(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "conflict")
	})

	t.Run("foreign platform", func(t *testing.T) {
		lazy := m.Lazy("default", "/p", "", resolve.Records(pythonRecords(), nil), false)
		_, err := lazy.GetOrInit(ctx)
		require.ErrorContains(t, err, domain.ErrNoBuildPlatform.Error())
	})

	t.Run("query failed", func(t *testing.T) {
		installer.EXPECT().Update(gomock.Any(), "/q", "default", linux, gomock.Any()).
			Return(&domain.CondaPrefixUpdated{}, nil)
		querier.EXPECT().Query(gomock.Any(), "/q", gomock.Any()).
			Return(domain.PythonInfo{}, errors.New("exec format error"))

		lazy := m.Lazy("default", "/q", linux, resolve.Records(pythonRecords(), nil), false)
		_, err := lazy.GetOrInit(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrInterpreterQueryFailed.Error())
	})
}

func TestPreparedPrefix(t *testing.T) {
	t.Parallel()

	info := domain.NewPythonInfo("3.11.4", linux)
	prepared := resolve.NewPreparedPrefix(&domain.CondaPrefixUpdated{
		Group:        "test",
		Prefix:       "/project/.pixi/envs/test",
		Platform:     linux,
		PythonStatus: domain.NewPythonStatus(nil, &info),
	})
	env, err := prepared.GetOrInit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/project/.pixi/envs/test/bin/python3.11", env.PythonPath())
	assert.Equal(t, "test", env.Group)

	missing := resolve.NewPreparedPrefix(&domain.CondaPrefixUpdated{Group: "test"})
	_, err = missing.GetOrInit(context.Background())
	require.ErrorContains(t, err, domain.ErrPythonMissing.Error())
}
