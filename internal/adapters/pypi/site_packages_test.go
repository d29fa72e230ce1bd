package pypi_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/core/domain"
)

func TestSitePackages_Installed(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{
		"requests-2.31.0.dist-info/METADATA":  "Metadata-Version: 2.1\nName: requests\nVersion: 2.31.0\n\nlong description\n",
		"requests-2.31.0.dist-info/INSTALLER": "pixi\n",
		"requests-2.31.0.dist-info/RECORD":    "requests/__init__.py,sha256=abc,10\nrequests-2.31.0.dist-info/RECORD,,\n",
		"My_Lib-0.1.dist-info/METADATA":       "Metadata-Version: 2.1\nName: My_Lib\nVersion: 0.1\n",
		"My_Lib-0.1.dist-info/INSTALLER":      "pip\n",
		"My_Lib-0.1.dist-info/direct_url.json": `{"url": "file:///work/my-lib", "dir_info": {"editable": true}}`,
		"tool-1.0.dist-info/METADATA":          "Metadata-Version: 2.1\nName: tool\nVersion: 1.0\n",
		"tool-1.0.dist-info/direct_url.json": `{"url": "https://github.com/org/tool.git", ` +
			`"vcs_info": {"vcs": "git", "commit_id": "abc123"}}`,
		"legacy-3.2-py3.12.egg-info/PKG-INFO": "Metadata-Version: 1.0\nName: legacy\nVersion: 3.2\n",
		"requests/__init__.py":                "",
	})

	dists, err := newSitePackages(t).Installed(context.Background(), site)
	require.NoError(t, err)

	byName := make(map[string]domain.InstalledDist)
	for _, d := range dists {
		byName[d.Name.String()] = d
	}
	require.Len(t, byName, 4)

	requests := byName["requests"]
	assert.Equal(t, "2.31.0", requests.Version)
	assert.True(t, requests.IsOurs())
	assert.Empty(t, requests.DirectURL)
	assert.Equal(t, []string{"requests/__init__.py", "requests-2.31.0.dist-info/RECORD"}, requests.Files)

	lib := byName["my-lib"]
	assert.Equal(t, "pip", lib.Installer)
	assert.Equal(t, "file:///work/my-lib", lib.DirectURL)
	assert.True(t, lib.Editable)

	assert.Equal(t, "git+https://github.com/org/tool.git#abc123", byName["tool"].DirectURL)

	legacy := byName["legacy"]
	assert.Equal(t, "3.2", legacy.Version)
	assert.Equal(t, filepath.Join(site, "legacy-3.2-py3.12.egg-info"), legacy.Path)
}

func TestSitePackages_InstalledMissingDirectory(t *testing.T) {
	dists, err := newSitePackages(t).Installed(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, dists)
}

func TestSitePackages_Uninstall(t *testing.T) {
	prefix := t.TempDir()
	site := filepath.Join(prefix, "lib", "python3.12", "site-packages")
	writeFiles(t, prefix, map[string]string{
		"bin/demo": "#!/bin/sh\n",
		"lib/python3.12/site-packages/demo/__init__.py":                         "",
		"lib/python3.12/site-packages/demo/sub/core.py":                         "",
		"lib/python3.12/site-packages/demo/sub/__pycache__/core.cpython-312.pyc": "",
		"lib/python3.12/site-packages/demo-1.0.dist-info/REQUESTED":             "",
		"lib/python3.12/site-packages/demo-1.0.dist-info/RECORD": "demo/__init__.py,,\n" +
			"demo/sub/core.py,,\n../../../bin/demo,,\ndemo-1.0.dist-info/RECORD,,\n",
		"lib/python3.12/site-packages/other/__init__.py": "",
	})
	dist := domain.InstalledDist{
		Name:    domain.NewPackageName("demo"),
		Version: "1.0",
		Path:    filepath.Join(site, "demo-1.0.dist-info"),
	}

	require.NoError(t, newSitePackages(t).Uninstall(context.Background(), site, dist))

	assert.NoDirExists(t, filepath.Join(site, "demo"))
	assert.NoDirExists(t, dist.Path)
	assert.NoFileExists(t, filepath.Join(prefix, "bin", "demo"))
	assert.FileExists(t, filepath.Join(site, "other", "__init__.py"))
	assert.DirExists(t, site)
}

func TestSitePackages_UninstallMissingRecord(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{"broken-1.0.dist-info/METADATA": "Name: broken\n"})
	dist := domain.InstalledDist{Name: domain.NewPackageName("broken"), Path: filepath.Join(site, "broken-1.0.dist-info")}

	err := newSitePackages(t).Uninstall(context.Background(), site, dist)
	require.ErrorIs(t, err, domain.ErrMissingRecord)
	assert.DirExists(t, dist.Path)
}

func TestSitePackages_UninstallEgg(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{
		"legacy-3.2.egg-info/PKG-INFO":      "Name: legacy\n",
		"legacy-3.2.egg-info/top_level.txt": "legacy\nlegacy_helpers\n",
		"legacy/__init__.py":                "",
		"legacy_helpers.py":                 "",
		"unrelated.py":                      "",
	})
	dist := domain.InstalledDist{Name: domain.NewPackageName("legacy"), Path: filepath.Join(site, "legacy-3.2.egg-info")}

	require.NoError(t, newSitePackages(t).Uninstall(context.Background(), site, dist))

	assert.NoDirExists(t, filepath.Join(site, "legacy"))
	assert.NoFileExists(t, filepath.Join(site, "legacy_helpers.py"))
	assert.NoDirExists(t, dist.Path)
	assert.FileExists(t, filepath.Join(site, "unrelated.py"))
}

func TestSitePackages_UninstallEggMissingTopLevel(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{"legacy-3.2.egg-info/PKG-INFO": "Name: legacy\n"})
	dist := domain.InstalledDist{Name: domain.NewPackageName("legacy"), Path: filepath.Join(site, "legacy-3.2.egg-info")}

	err := newSitePackages(t).Uninstall(context.Background(), site, dist)
	require.ErrorIs(t, err, domain.ErrMissingTopLevel)
}

func TestSitePackages_RemoveAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site-packages", "broken-1.0.dist-info")
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))

	require.NoError(t, newSitePackages(t).RemoveAll(dir))
	assert.NoDirExists(t, dir)
}
