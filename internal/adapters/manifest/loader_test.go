package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/manifest"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *manifest.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return manifest.NewLoader(mockLogger)
}

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

const basicManifest = `
[project]
name = "demo"
channels = ["conda-forge"]
platforms = ["linux-64", "osx-arm64"]

[dependencies]
python = ">=3.11"
numpy = { version = "1.26.*", build = "py311*", channel = "conda-forge" }

[pypi-dependencies]
requests = ">=2.31"
mypkg = { path = "./mypkg", editable = true }
rich = { version = "*", extras = ["jupyter"] }

[target.linux-64.dependencies]
patchelf = "*"

[system-requirements]
libc = "2.28"
cuda = "12"

[pypi-options]
index-url = "https://pypi.example.com/simple"
extra-index-urls = ["https://extra.example.com/simple"]
find-links = [{ path = "./wheels" }]
no-build-isolation = ["mypkg"]
`

func TestLoader_Load_Default(t *testing.T) {
	root := t.TempDir()
	path := createFile(t, root, domain.ManifestFileName, basicManifest)

	m, err := newLoader(t).Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, "demo", m.Name)
	assert.Equal(t, root, m.Root)
	assert.Equal(t, path, m.Path)
	require.Len(t, m.Environments, 1)
	assert.Empty(t, m.SolveGroups)

	env := m.Environments[0]
	assert.Equal(t, domain.DefaultEnvironmentName, env.Name)
	assert.Equal(t, domain.NoSolveGroup, env.SolveGroup)
	assert.Equal(t, []string{"conda-forge"}, env.Channels)
	assert.Equal(t, []domain.Platform{domain.PlatformLinux64, domain.PlatformOsxArm64}, env.Platforms)
	assert.Equal(t, domain.PypiIndexes{
		IndexURL:       "https://pypi.example.com/simple",
		ExtraIndexURLs: []string{"https://extra.example.com/simple"},
		FindLinks:      []string{"./wheels"},
	}, env.Indexes)
	assert.Equal(t, []domain.PackageName{domain.NewPackageName("mypkg")}, env.NoBuildIsolation)
	assert.Equal(t, []domain.VirtualPackage{
		{Name: "__cuda", Version: "12"},
		{Name: "__glibc", Version: "2.28"},
	}, env.VirtualPackages)

	linux := env.RequirementsFor(domain.PlatformLinux64)
	names := make([]string, len(linux.Binary))
	for i, spec := range linux.Binary {
		names[i] = spec.Name
	}
	assert.Equal(t, []string{"numpy", "patchelf", "python"}, names)
	assert.Equal(t, "conda-forge", linux.Binary[0].Channel)
	assert.Equal(t, "py311*", linux.Binary[0].Build)
	assert.True(t, linux.Binary[0].Version.Matches("1.26.4"))
	assert.False(t, linux.Binary[2].Version.Matches("3.10.0"))

	osx := env.RequirementsFor(domain.PlatformOsxArm64)
	assert.Len(t, osx.Binary, 2)

	require.Len(t, linux.Pypi, 3)
	assert.Equal(t, "mypkg", linux.Pypi[0].Name.String())
	assert.Equal(t, "./mypkg", linux.Pypi[0].Path)
	assert.True(t, linux.Pypi[0].Editable)
	assert.Equal(t, "requests", linux.Pypi[1].Name.String())
	assert.True(t, linux.Pypi[1].Specifier.Matches("2.32.0"))
	assert.Equal(t, []domain.PackageName{domain.NewPackageName("jupyter")}, linux.Pypi[2].Extras)
}

func TestLoader_Load_FeaturesAndSolveGroups(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ManifestFileName, `
[workspace]
name = "demo"
channels = ["conda-forge"]
platforms = ["linux-64", "win-64"]

[dependencies]
python = "3.12.*"

[feature.test.dependencies]
pytest = "*"

[feature.test.pypi-dependencies]
hypothesis = "*"

[feature.cuda]
channels = ["nvidia"]
platforms = ["linux-64"]

[feature.cuda.dependencies]
python = "3.11.*"

[environments]
test = { features = ["test"], solve-group = "prod" }
default = { solve-group = "prod" }
gpu = ["cuda"]
lint = { features = ["test"], no-default-feature = true }
`)

	m, err := newLoader(t).Load(root, "")
	require.NoError(t, err)

	names := make([]string, len(m.Environments))
	for i, env := range m.Environments {
		names[i] = env.Name
	}
	assert.Equal(t, []string{"default", "gpu", "lint", "test"}, names)

	require.Len(t, m.SolveGroups, 1)
	assert.Equal(t, "prod", m.SolveGroups[0].Name)
	assert.Equal(t, []domain.EnvironmentIdx{0, 3}, m.SolveGroups[0].Environments)
	assert.Equal(t, []domain.EnvironmentIdx{0, 3}, m.GroupMembers(3))
	assert.Equal(t, "prod", m.SolveGroupName(3))
	assert.Equal(t, domain.NoSolveGroup, m.Environments[1].SolveGroup)

	gpu := m.Environments[1]
	assert.Equal(t, []string{"cuda", "default"}, gpu.Features)
	assert.Equal(t, []domain.Platform{domain.PlatformLinux64}, gpu.Platforms)
	assert.Equal(t, []string{"conda-forge", "nvidia"}, gpu.Channels)
	python := gpu.RequirementsFor(domain.PlatformLinux64).Binary[0]
	assert.True(t, python.Version.Matches("3.11.9"), "feature requirements override the default feature")

	lint := m.Environments[2]
	assert.Equal(t, []string{"test"}, lint.Features)
	assert.Empty(t, lint.Channels)
	assert.Len(t, lint.RequirementsFor(domain.PlatformWin64).Binary, 1)

	test := m.Environments[3]
	assert.True(t, test.HasPypiDependencies())
	assert.Len(t, test.RequirementsFor(domain.PlatformWin64).Binary, 2)
}

func TestLoader_Load_Discovery(t *testing.T) {
	root := t.TempDir()
	path := createFile(t, root, domain.ManifestFileName, basicManifest)
	nested := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	m, err := newLoader(t).Load(nested, "")
	require.NoError(t, err)
	assert.Equal(t, path, m.Path)
}

func TestLoader_Load_ExplicitPath(t *testing.T) {
	root := t.TempDir()
	path := createFile(t, root, filepath.Join("project", domain.ManifestFileName), basicManifest)
	loader := newLoader(t)

	t.Run("file", func(t *testing.T) {
		m, err := loader.Load(root, filepath.Join("project", domain.ManifestFileName))
		require.NoError(t, err)
		assert.Equal(t, path, m.Path)
	})

	t.Run("directory", func(t *testing.T) {
		m, err := loader.Load(root, "project")
		require.NoError(t, err)
		assert.Equal(t, path, m.Path)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := loader.Load(root, "nope.toml")
		require.ErrorIs(t, err, domain.ErrManifestNotFound)
	})
}

func TestLoader_Load_NotFound(t *testing.T) {
	_, err := newLoader(t).Load(t.TempDir(), "")
	require.ErrorIs(t, err, domain.ErrManifestNotFound)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected error
		contains string
	}{
		{
			name:     "syntax error",
			content:  "[project\nname = 1",
			expected: domain.ErrManifestParseFailed,
		},
		{
			name:     "missing project table",
			content:  "[dependencies]\npython = \"*\"\n",
			expected: domain.ErrManifestInvalid,
			contains: "missing [project]",
		},
		{
			name:     "missing name",
			content:  "[project]\nchannels = [\"conda-forge\"]\nplatforms = [\"linux-64\"]\n",
			expected: domain.ErrManifestInvalid,
			contains: "project.name",
		},
		{
			name:     "unknown platform",
			content:  "[project]\nname = \"x\"\nchannels = [\"conda-forge\"]\nplatforms = [\"amiga-68k\"]\n",
			expected: domain.ErrManifestInvalid,
			contains: "platform",
		},
		{
			name: "invalid index url",
			content: "[project]\nname = \"x\"\nchannels = [\"c\"]\nplatforms = [\"linux-64\"]\n" +
				"[pypi-options]\nindex-url = \"not a url\"\n",
			expected: domain.ErrManifestInvalid,
			contains: "index-url",
		},
		{
			name: "unknown feature",
			content: "[project]\nname = \"x\"\nchannels = [\"c\"]\nplatforms = [\"linux-64\"]\n" +
				"[environments]\ntest = [\"missing\"]\n",
			expected: domain.ErrUnknownFeature,
		},
		{
			name: "invalid environment name",
			content: "[project]\nname = \"x\"\nchannels = [\"c\"]\nplatforms = [\"linux-64\"]\n" +
				"[environments]\nTest_Env = []\n",
			expected: domain.ErrInvalidEnvironmentName,
		},
		{
			name: "invalid match spec",
			content: "[project]\nname = \"x\"\nchannels = [\"c\"]\nplatforms = [\"linux-64\"]\n" +
				"[dependencies]\npython = \"~=3\"\n",
			contains: domain.ErrInvalidVersionSpec.Error(),
		},
		{
			name: "conflicting pypi sources",
			content: "[project]\nname = \"x\"\nchannels = [\"c\"]\nplatforms = [\"linux-64\"]\n" +
				"[pypi-dependencies]\npkg = { path = \"./pkg\", git = \"https://example.com/pkg.git\" }\n",
			expected: domain.ErrInvalidRequirement,
		},
		{
			name: "editable without path",
			content: "[project]\nname = \"x\"\nchannels = [\"c\"]\nplatforms = [\"linux-64\"]\n" +
				"[pypi-dependencies]\npkg = { version = \">=1\", editable = true }\n",
			expected: domain.ErrInvalidRequirement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			createFile(t, root, domain.ManifestFileName, tt.content)

			_, err := newLoader(t).Load(root, "")
			require.Error(t, err)
			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
			}
			if tt.contains != "" {
				assert.ErrorContains(t, err, tt.contains)
			}
		})
	}
}
