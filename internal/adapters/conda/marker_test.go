package conda_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/conda"
	"go.trai.ch/pixi/internal/core/domain"
)

func TestMarker(t *testing.T) {
	prefix := t.TempDir()
	marker := conda.NewMarker()

	got, err := marker.Read(prefix)
	require.NoError(t, err)
	assert.Nil(t, got)

	file := domain.EnvironmentFile{
		ManifestPath:    "/proj/pixi.toml",
		EnvironmentName: "default",
		PixiVersion:     "0.1.0",
		LockHash:        "8d3c0f1e2a",
	}
	require.NoError(t, marker.Write(prefix, file))

	got, err = marker.Read(prefix)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, file, *got)

	data, err := os.ReadFile(domain.EnvironmentFilePath(prefix))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"environment_lock_file_hash": "8d3c0f1e2a"`)
}

func TestMarker_Unreadable(t *testing.T) {
	prefix := t.TempDir()
	require.NoError(t, os.MkdirAll(prefix+"/"+domain.CondaMetaDirName, domain.DirPerm))
	require.NoError(t, os.WriteFile(domain.EnvironmentFilePath(prefix), []byte("not json"), domain.PrivateFilePerm))

	got, err := conda.NewMarker().Read(prefix)
	require.NoError(t, err)
	assert.Nil(t, got)
}
