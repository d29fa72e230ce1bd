package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/fs"
	"go.trai.ch/pixi/internal/core/domain"
)

func TestSourceNewerThanInstall(t *testing.T) {
	setup := func(t *testing.T) (string, domain.InstalledDist) {
		t.Helper()
		source := t.TempDir()
		writeTree(t, source, map[string]string{"pyproject.toml": "[project]"})
		distInfo := filepath.Join(t.TempDir(), "mylib-1.0.dist-info")
		require.NoError(t, os.MkdirAll(distInfo, domain.DirPerm))

		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(filepath.Join(source, "pyproject.toml"), past, past))
		return source, domain.InstalledDist{Name: domain.NewPackageName("mylib"), Path: distInfo}
	}

	t.Run("Unchanged", func(t *testing.T) {
		source, dist := setup(t)

		newer, err := fs.SourceNewerThanInstall(source, dist)
		require.NoError(t, err)
		assert.False(t, newer)
	})

	t.Run("Build File Touched", func(t *testing.T) {
		source, dist := setup(t)
		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(filepath.Join(source, "pyproject.toml"), future, future))

		newer, err := fs.SourceNewerThanInstall(source, dist)
		require.NoError(t, err)
		assert.True(t, newer)
	})

	t.Run("Missing Install", func(t *testing.T) {
		source, dist := setup(t)
		dist.Path = filepath.Join(t.TempDir(), "gone.dist-info")

		_, err := fs.SourceNewerThanInstall(source, dist)
		assert.ErrorContains(t, err, "failed to stat path")
	})
}
