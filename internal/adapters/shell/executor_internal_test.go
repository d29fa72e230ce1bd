package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEnvironment(t *testing.T) {
	tests := []struct {
		name      string
		sysEnv    []string
		overrides []string
		expected  []string
	}{
		{
			name:     "System Only",
			sysEnv:   []string{"USER=test", "PATH=/bin", "HOME=/home/test"},
			expected: []string{"HOME=/home/test", "PATH=/bin", "USER=test"},
		},
		{
			name:     "Foreign Interpreter Scrubbed",
			sysEnv:   []string{"USER=test", "PYTHONPATH=/x", "PYTHONHOME=/y", "VIRTUAL_ENV=/venv"},
			expected: []string{"USER=test"},
		},
		{
			name:      "Override Replaces PATH",
			sysEnv:    []string{"USER=test", "PATH=/bin"},
			overrides: []string{"PATH=/prefix/bin:/bin", "CONDA_PREFIX=/prefix"},
			expected:  []string{"CONDA_PREFIX=/prefix", "PATH=/prefix/bin:/bin", "USER=test"},
		},
		{
			name:      "Override May Restore Scrubbed Variable",
			sysEnv:    []string{"PYTHONPATH=/x"},
			overrides: []string{"PYTHONPATH=/build"},
			expected:  []string{"PYTHONPATH=/build"},
		},
		{
			name:      "Malformed Entries Ignored",
			sysEnv:    []string{"=C:=C:\\", "BROKEN"},
			overrides: []string{"ALSO_BROKEN"},
			expected:  []string{"=C:=C:\\"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveEnvironment(tt.sysEnv, tt.overrides))
		})
	}
}

func TestLookPath_EmptyPATH(t *testing.T) {
	_, err := lookPath("echo", []string{"USER=test"})
	assert.Error(t, err)
}

func TestLookPath_ExecutableNotFound(t *testing.T) {
	_, err := lookPath("nonexistent-command", []string{"PATH=/nonexistent/dir"})
	assert.Error(t, err)
}

func TestLookPath_EmptyDirectory(t *testing.T) {
	_, err := lookPath("nonexistent", []string{"PATH=:" + t.TempDir()})
	assert.Error(t, err)
}

func TestFindExecutable_NonExistent(t *testing.T) {
	assert.Error(t, findExecutable("/nonexistent/file"))
}

func TestFindExecutable_Directory(t *testing.T) {
	assert.Error(t, findExecutable(t.TempDir()))
}
