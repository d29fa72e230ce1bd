package cas_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/cas"
	"go.trai.ch/pixi/internal/core/domain"
)

func writeMarker(dir string) error {
	return os.WriteFile(filepath.Join(dir, "marker"), []byte("ok"), domain.PrivateFilePerm)
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	store := cas.NewStore(t.TempDir())

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		dir, err := store.Put(context.Background(), "zlib-1.3.1-hb9d3cd8_2", writeMarker)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(store.Root(), "zlib-1.3.1-hb9d3cd8_2"), dir)
		assert.FileExists(t, filepath.Join(dir, "marker"))

		got, ok := store.Get("zlib-1.3.1-hb9d3cd8_2")
		require.True(t, ok)
		assert.Equal(t, dir, got)
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		_, ok := store.Get("missing")
		assert.False(t, ok)
	})

	t.Run("unsafe key is hashed", func(t *testing.T) {
		t.Parallel()
		dir, err := store.Put(context.Background(), "https://example.com/pkg.whl", writeMarker)
		require.NoError(t, err)
		assert.Equal(t, store.Root(), filepath.Dir(dir))
		assert.Len(t, filepath.Base(dir), 64)
	})
}

func TestStore_PutFillsOnce(t *testing.T) {
	store := cas.NewStore(t.TempDir())
	var fills atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	dirs := make([]string, 8)
	for i := range dirs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dir, err := store.Put(context.Background(), "numpy-2.0.0", func(dir string) error {
				fills.Add(1)
				<-release
				return writeMarker(dir)
			})
			assert.NoError(t, err)
			dirs[i] = dir
		}()
	}
	close(release)
	wg.Wait()

	// Late callers may find the published entry without joining the flight.
	assert.LessOrEqual(t, fills.Load(), int32(8))
	assert.GreaterOrEqual(t, fills.Load(), int32(1))
	for _, dir := range dirs {
		assert.Equal(t, filepath.Join(store.Root(), "numpy-2.0.0"), dir)
	}
}

func TestStore_PutFailureLeavesNothing(t *testing.T) {
	store := cas.NewStore(t.TempDir())

	_, err := store.Put(context.Background(), "broken", func(dir string) error {
		_ = writeMarker(dir)
		return errors.New("extract failed")
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "extract failed")

	_, ok := store.Get("broken")
	assert.False(t, ok)
	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_PutCanceled(t *testing.T) {
	store := cas.NewStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = store.Put(context.Background(), "slow", func(dir string) error {
			close(started)
			<-release
			return writeMarker(dir)
		})
	}()
	<-started

	cancel()
	_, err := store.Put(ctx, "slow", writeMarker)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	<-done
	_, ok := store.Get("slow")
	assert.True(t, ok)
}

func TestStore_Prune(t *testing.T) {
	root := t.TempDir()
	store := cas.NewStore(root)
	require.NoError(t, os.Mkdir(filepath.Join(root, ".tmp-interrupted"), domain.DirPerm))
	_, err := store.Put(context.Background(), "kept", writeMarker)
	require.NoError(t, err)

	require.NoError(t, store.Prune())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Name())
	require.NoError(t, cas.NewStore(filepath.Join(root, "missing")).Prune())
}

func TestDir(t *testing.T) {
	t.Setenv(cas.CacheDirEnv, "/var/cache/pixi")

	dir, err := cas.Dir(domain.PkgsDirName)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/cache/pixi", "pkgs"), dir)
}
