package shell_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/shell"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func fakePython(t *testing.T, prefix, script string) domain.PythonInfo {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter is a shell script")
	}
	info := domain.NewPythonInfo("3.12.0", domain.PlatformLinux64)
	path := filepath.Join(prefix, info.Path)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o700))
	return info
}

func TestInterpreterQuerier_Query(t *testing.T) {
	prefix := t.TempDir()
	expected := fakePython(t, prefix,
		`echo '{"version": "3.12.4", "site_packages": "lib/python3.12/site-packages"}'`)

	querier := shell.NewInterpreterQuerier(newExecutor(t))
	info, err := querier.Query(context.Background(), prefix, expected)
	require.NoError(t, err)

	assert.Equal(t, "3.12.4", info.Version)
	assert.Equal(t, "3.12", info.ShortVersion)
	assert.Equal(t, expected.Path, info.Path)
	assert.Equal(t, filepath.Join("lib", "python3.12", "site-packages"), info.SitePackages)
}

func TestInterpreterQuerier_QueryKeepsLockedSitePackages(t *testing.T) {
	prefix := t.TempDir()
	expected := fakePython(t, prefix, `echo '{"version": "3.12.4"}'`)

	querier := shell.NewInterpreterQuerier(newExecutor(t))
	info, err := querier.Query(context.Background(), prefix, expected)
	require.NoError(t, err)

	assert.Equal(t, expected.SitePackages, info.SitePackages)
}

func TestInterpreterQuerier_QueryFailures(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{name: "Exit Status", script: "echo boom >&2; exit 1"},
		{name: "Garbage Output", script: "echo not json"},
		{name: "No Version", script: "echo '{}'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix := t.TempDir()
			expected := fakePython(t, prefix, tt.script)

			querier := shell.NewInterpreterQuerier(newExecutor(t))
			_, err := querier.Query(context.Background(), prefix, expected)
			assert.ErrorContains(t, err, domain.ErrInterpreterQueryFailed.Error())
		})
	}
}

func TestInterpreterQuerier_QueryRunsInterpreterOfPrefix(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)
	expected := domain.NewPythonInfo("3.11.9", domain.PlatformLinux64)

	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd ports.Command, stdout, _ io.Writer) error {
			assert.Equal(t, filepath.Join("/envs/default", expected.Path), cmd.Path)
			assert.Equal(t, "-c", cmd.Args[0])
			_, err := io.WriteString(stdout, `{"version": "3.11.9", "site_packages": "lib/python3.11/site-packages"}`)
			return err
		})

	info, err := shell.NewInterpreterQuerier(executor).Query(context.Background(), "/envs/default", expected)
	require.NoError(t, err)
	assert.Equal(t, expected, info)
}
