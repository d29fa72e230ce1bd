package conda_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/conda"
	"go.trai.ch/pixi/internal/core/domain"
)

func extractedZlib(t *testing.T) (string, *domain.BinaryRecord) {
	t.Helper()
	fetcher, _ := newFetcher(t)
	path, err := filepath.Abs(filepath.Join("testdata", zlibArchive))
	require.NoError(t, err)
	record := &domain.BinaryRecord{
		Name: "zlib", Version: "1.3.1", Build: "h0_0", Subdir: domain.PlatformLinux64,
		URL: path, SHA256: zlibSHA256,
	}
	dir, err := fetcher.Fetch(context.Background(), record)
	require.NoError(t, err)
	return dir, record
}

func TestLinker_LinkAndInspect(t *testing.T) {
	extracted, record := extractedZlib(t)
	prefix := filepath.Join(t.TempDir(), "envs", "default")
	linker := conda.NewLinker()

	require.NoError(t, linker.Link(context.Background(), prefix, extracted, record))

	assert.NoDirExists(t, filepath.Join(prefix, "info"))
	script, err := os.ReadFile(filepath.Join(prefix, "bin", "zlib-config"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho "+prefix+"/lib\n", string(script))
	target, err := os.Readlink(filepath.Join(prefix, "lib", "libz.so"))
	require.NoError(t, err)
	assert.Equal(t, "libz.so.1", target)
	assert.FileExists(t, filepath.Join(prefix, domain.CondaMetaDirName, "zlib-1.3.1-h0_0.json"))

	installed, err := linker.Installed(prefix)
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, record, installed[0])

	files, err := linker.Files(prefix)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"zlib": {"bin/zlib-config", "lib/libz.so", "lib/libz.so.1"},
	}, files)
}

func TestLinker_Unlink(t *testing.T) {
	extracted, record := extractedZlib(t)
	prefix := t.TempDir()
	linker := conda.NewLinker()
	require.NoError(t, linker.Link(context.Background(), prefix, extracted, record))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "lib", "user.txt"), nil, domain.PrivateFilePerm))

	require.NoError(t, linker.Unlink(context.Background(), prefix, record))

	assert.NoDirExists(t, filepath.Join(prefix, "bin"))
	assert.NoFileExists(t, filepath.Join(prefix, "lib", "libz.so.1"))
	assert.FileExists(t, filepath.Join(prefix, "lib", "user.txt"), "foreign files stay")
	installed, err := linker.Installed(prefix)
	require.NoError(t, err)
	assert.Empty(t, installed)
}

func TestLinker_UnlinkByName(t *testing.T) {
	extracted, record := extractedZlib(t)
	prefix := t.TempDir()
	linker := conda.NewLinker()
	require.NoError(t, linker.Link(context.Background(), prefix, extracted, record))

	// The removal record may come from a lock file that points to another archive.
	other := *record
	other.URL = "https://conda.anaconda.org/conda-forge/linux-64/zlib-1.3.1-h0_0.conda"
	require.NoError(t, linker.Unlink(context.Background(), prefix, &other))

	installed, err := linker.Installed(prefix)
	require.NoError(t, err)
	assert.Empty(t, installed)
}

func TestLinker_EmptyPrefix(t *testing.T) {
	linker := conda.NewLinker()

	installed, err := linker.Installed(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, installed)

	err = linker.Unlink(context.Background(), t.TempDir(), &domain.BinaryRecord{Name: "zlib", Version: "1", Build: "0"})
	assert.ErrorContains(t, err, "package is not installed")
}

func TestLinker_CorruptRecord(t *testing.T) {
	prefix := t.TempDir()
	meta := filepath.Join(prefix, domain.CondaMetaDirName)
	require.NoError(t, os.MkdirAll(meta, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(meta, "broken-1-0.json"), []byte("{"), domain.PrivateFilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(meta, "history"), []byte("==> 2024"), domain.PrivateFilePerm))

	_, err := conda.NewLinker().Installed(prefix)
	assert.ErrorContains(t, err, "failed to decode package record")
}
