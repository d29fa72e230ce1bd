package pypi_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/pypi"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newSitePackages(t *testing.T) *pypi.SitePackages {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	return pypi.NewSitePackages(logger)
}

// buildWheel writes a wheel archive holding files plus the WHEEL metadata.
func buildWheel(t *testing.T, dir, name, version string, files map[string]string) string {
	t.Helper()
	distInfo := domain.DistInfoDirName(domain.NewPackageName(name), version)
	path := filepath.Join(dir, name+"-"+version+"-py3-none-any.whl")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	all := map[string]string{
		distInfo + "/WHEEL":    "Wheel-Version: 1.0\nRoot-Is-Purelib: true\nTag: py3-none-any\n",
		distInfo + "/METADATA": "Metadata-Version: 2.1\nName: " + name + "\nVersion: " + version + "\n",
	}
	for k, v := range files {
		all[k] = v
	}
	names := make([]string, 0, len(all))
	for k := range all {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte(all[n]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	}
}

func newBuildEnvironment(prefix string) *domain.BuildEnvironment {
	return &domain.BuildEnvironment{
		Group:  "default",
		Prefix: prefix,
		Python: domain.NewPythonInfo("3.12.1", domain.PlatformLinux64),
	}
}
