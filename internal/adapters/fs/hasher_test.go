package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/fs"
	"go.trai.ch/pixi/internal/core/domain"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	}
}

func TestSourceTreeHasher_HashSourceTree(t *testing.T) {
	hasher := fs.NewSourceTreeHasher()

	t.Run("Deterministic Across Locations", func(t *testing.T) {
		a, b := t.TempDir(), t.TempDir()
		tree := map[string]string{"pyproject.toml": "[project]\nname = \"mylib\"\n", "setup.cfg": "[metadata]\n"}
		writeTree(t, a, tree)
		writeTree(t, b, tree)

		hashA, err := hasher.HashSourceTree(a)
		require.NoError(t, err)
		hashB, err := hasher.HashSourceTree(b)
		require.NoError(t, err)

		assert.Equal(t, hashA, hashB)
		assert.Len(t, hashA, 16)
	})

	t.Run("Build File Change", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"pyproject.toml": "version = 1"})
		before, err := hasher.HashSourceTree(root)
		require.NoError(t, err)

		writeTree(t, root, map[string]string{"pyproject.toml": "version = 2"})
		after, err := hasher.HashSourceTree(root)
		require.NoError(t, err)

		assert.NotEqual(t, before, after)
	})

	t.Run("Other Files Ignored", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"setup.py": "setup()", "src/mylib/__init__.py": "a = 1"})
		before, err := hasher.HashSourceTree(root)
		require.NoError(t, err)

		writeTree(t, root, map[string]string{"src/mylib/__init__.py": "a = 2"})
		after, err := hasher.HashSourceTree(root)
		require.NoError(t, err)

		assert.Equal(t, before, after)
	})

	t.Run("Archive", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"mylib-1.0.tar.gz": "archive"})

		hash, err := hasher.HashSourceTree(filepath.Join(root, "mylib-1.0.tar.gz"))
		require.NoError(t, err)
		assert.Len(t, hash, 16)
	})

	t.Run("No Build Files", func(t *testing.T) {
		_, err := hasher.HashSourceTree(t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSourceTreeHashFailed)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := hasher.HashSourceTree(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorContains(t, err, domain.ErrSourceTreeHashFailed.Error())
	})
}
