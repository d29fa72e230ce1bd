package pypi_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/pypi"
	"go.trai.ch/pixi/internal/core/domain"
)

func demoWheel(t *testing.T) string {
	t.Helper()
	return buildWheel(t, t.TempDir(), "demo", "1.0", map[string]string{
		"demo/__init__.py":                    "VERSION = '1.0'\n",
		"demo/cli.py":                         "def main():\n    return 0\n",
		"demo-1.0.data/scripts/demo-tool":     "#!python\nprint('hi')\n",
		"demo-1.0.data/data/share/demo/a.txt": "data\n",
		"demo-1.0.data/headers/demo.h":        "#define DEMO 1\n",
		"demo-1.0.dist-info/entry_points.txt": "[console_scripts]\ndemo = demo.cli:main\n\n[demo.plugins]\nx = demo:x\n",
		"demo-1.0.dist-info/RECORD":           "stale,,\n",
	})
}

func TestSitePackages_WheelFiles(t *testing.T) {
	files, err := newSitePackages(t).WheelFiles(demoWheel(t), filepath.Join("lib", "python3.12", "site-packages"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"bin/demo-tool",
		"include/demo/demo.h",
		"lib/python3.12/site-packages/demo-1.0.dist-info/METADATA",
		"lib/python3.12/site-packages/demo-1.0.dist-info/RECORD",
		"lib/python3.12/site-packages/demo-1.0.dist-info/WHEEL",
		"lib/python3.12/site-packages/demo-1.0.dist-info/entry_points.txt",
		"lib/python3.12/site-packages/demo/__init__.py",
		"lib/python3.12/site-packages/demo/cli.py",
		"share/demo/a.txt",
	}, files)
}

func TestSitePackages_WheelFilesWindowsLayout(t *testing.T) {
	files, err := newSitePackages(t).WheelFiles(demoWheel(t), filepath.Join("Lib", "site-packages"))
	require.NoError(t, err)

	assert.Contains(t, files, "Scripts/demo-tool")
	assert.Contains(t, files, "Lib/site-packages/demo/cli.py")
}

func TestSitePackages_Install(t *testing.T) {
	prefix := t.TempDir()
	env := newBuildEnvironment(prefix)
	site := newSitePackages(t)
	dist := domain.RequiredDist{Wheel: domain.LockedWheel{Package: domain.WheelPackageData{
		Name:     domain.NewPackageName("demo"),
		Version:  "1.0",
		Location: "https://files.example.com/demo-1.0-py3-none-any.whl",
	}}}

	require.NoError(t, site.Install(context.Background(), env, demoWheel(t), dist))

	sitePackages := env.SitePackagesPath()
	assert.FileExists(t, filepath.Join(sitePackages, "demo", "cli.py"))
	assert.FileExists(t, filepath.Join(prefix, "share", "demo", "a.txt"))
	assert.FileExists(t, filepath.Join(prefix, "include", "demo", "demo.h"))

	script, err := os.ReadFile(filepath.Join(prefix, "bin", "demo-tool"))
	require.NoError(t, err)
	assert.Equal(t, "#!"+env.PythonPath()+"\nprint('hi')\n", string(script))

	launcher, err := os.ReadFile(filepath.Join(prefix, "bin", "demo"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(launcher), "#!"+env.PythonPath()+"\n"))
	assert.Contains(t, string(launcher), "from demo.cli import main")
	assert.Contains(t, string(launcher), "sys.exit(main())")
	info, err := os.Stat(filepath.Join(prefix, "bin", "demo"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100)

	installer, err := os.ReadFile(filepath.Join(sitePackages, "demo-1.0.dist-info", "INSTALLER"))
	require.NoError(t, err)
	assert.Equal(t, "pixi\n", string(installer))
	assert.NoFileExists(t, filepath.Join(sitePackages, "demo-1.0.dist-info", "direct_url.json"))

	record, err := os.ReadFile(filepath.Join(sitePackages, "demo-1.0.dist-info", "RECORD"))
	require.NoError(t, err)
	assert.NotContains(t, string(record), "stale")
	assert.Contains(t, string(record), "demo/cli.py,sha256=")
	assert.Contains(t, string(record), "../../../bin/demo,sha256=")
	assert.Contains(t, string(record), "demo-1.0.dist-info/RECORD,,\n")

	// The installed distribution reads back as ours and uninstalls cleanly, scripts included.
	dists, err := site.Installed(context.Background(), sitePackages)
	require.NoError(t, err)
	require.Len(t, dists, 1)
	assert.True(t, dists[0].IsOurs())
	assert.Equal(t, "1.0", dists[0].Version)

	require.NoError(t, site.Uninstall(context.Background(), sitePackages, dists[0]))
	assert.NoFileExists(t, filepath.Join(prefix, "bin", "demo"))
	assert.NoFileExists(t, filepath.Join(prefix, "bin", "demo-tool"))
	assert.NoDirExists(t, filepath.Join(sitePackages, "demo"))
	assert.NoDirExists(t, filepath.Join(sitePackages, "demo-1.0.dist-info"))
}

func TestSitePackages_InstallLocalRecordsDirectURL(t *testing.T) {
	prefix := t.TempDir()
	env := newBuildEnvironment(prefix)
	site := newSitePackages(t)
	source := filepath.Join(t.TempDir(), "demo")
	dist := domain.RequiredDist{Wheel: domain.LockedWheel{Package: domain.WheelPackageData{
		Name:     domain.NewPackageName("demo"),
		Version:  "1.0",
		Location: source,
		Editable: true,
	}}}

	require.NoError(t, site.Install(context.Background(), env, demoWheel(t), dist))

	dists, err := site.Installed(context.Background(), env.SitePackagesPath())
	require.NoError(t, err)
	require.Len(t, dists, 1)
	assert.Equal(t, "file://"+filepath.ToSlash(source), dists[0].DirectURL)
	assert.True(t, dists[0].Editable)
}

func TestSitePackages_InstallGitRecordsDirectURL(t *testing.T) {
	prefix := t.TempDir()
	env := newBuildEnvironment(prefix)
	site := newSitePackages(t)
	location := "git+https://github.com/org/demo.git#4f2e1c0"
	dist := domain.RequiredDist{Wheel: domain.LockedWheel{Package: domain.WheelPackageData{
		Name:     domain.NewPackageName("demo"),
		Version:  "1.0",
		Location: location,
	}}}

	require.NoError(t, site.Install(context.Background(), env, demoWheel(t), dist))

	dists, err := site.Installed(context.Background(), env.SitePackagesPath())
	require.NoError(t, err)
	require.Len(t, dists, 1)
	assert.Equal(t, location, dists[0].DirectURL)
}

func TestSitePackages_InstallRejectsNonWheel(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "demo-1.0-py3-none-any.whl")
	require.NoError(t, os.WriteFile(archive, []byte("not a zip"), domain.PrivateFilePerm))

	err := newSitePackages(t).Install(context.Background(), newBuildEnvironment(t.TempDir()), archive, domain.RequiredDist{})
	assert.ErrorContains(t, err, "failed to open wheel")
}

func TestParseEntryPoints(t *testing.T) {
	data := []byte(`
# comment
[console_scripts]
black = black:patched_main
blackd = blackd:main [d]
bare=pkg.module

[gui_scripts]
viewer = pkg.gui:App.run

[pytest11]
plugin = pkg.plugin
`)

	assert.Equal(t, []pypi.EntryPoint{
		{Name: "black", Module: "black", Attr: "patched_main"},
		{Name: "blackd", Module: "blackd", Attr: "main"},
		{Name: "bare", Module: "pkg.module"},
		{Name: "viewer", Module: "pkg.gui", Attr: "App.run"},
	}, pypi.ParseEntryPoints(data))
}
