// Package shell runs external commands such as build backends and interpreters.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor. Output of every command is also logged at debug level.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs the command and waits for it to complete.
func (e *Executor) Execute(ctx context.Context, command ports.Command, stdout, stderr io.Writer) error {
	if command.Path == "" {
		return zerr.New("empty command")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	env := resolveEnvironment(os.Environ(), command.Env)

	executable := command.Path
	if !strings.ContainsRune(executable, os.PathSeparator) && !strings.ContainsRune(executable, '/') {
		if lp, err := lookPath(executable, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, command.Args...) //nolint:gosec // Commands are built by pixi
	cmd.Args[0] = command.Path
	cmd.Dir = command.Dir
	cmd.Env = env
	cmd.Stdin = command.Stdin

	stdoutLog := &logWriter{logger: e.logger, command: command.Path, stream: "stdout"}
	stderrLog := &logWriter{logger: e.logger, command: command.Path, stream: "stderr"}
	cmd.Stdout = io.MultiWriter(stdoutLog, stdout)
	if sameWriter(stdout, stderr) {
		// exec shares one pipe when both streams are the same writer.
		cmd.Stderr = cmd.Stdout
	} else {
		cmd.Stderr = io.MultiWriter(stderrLog, stderr)
	}

	e.logger.Debug("running command", "command", command.Path, "args", command.Args, "dir", command.Dir)
	err := cmd.Run()
	_ = stdoutLog.Close()
	_ = stderrLog.Close()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		err = zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "command", command.Path)
		return zerr.With(err, "exit_code", exitCode)
	}
	return nil
}

func sameWriter(a, b io.Writer) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// logWriter forwards complete lines to the logger.
type logWriter struct {
	logger  ports.Logger
	command string
	stream  string
	buf     []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}
	w.logger.Debug(msg, "command", w.command, "stream", w.stream)
}

// scrubbedEnvVars leak a foreign interpreter into commands run inside a prefix.
var scrubbedEnvVars = map[string]struct{}{
	"PYTHONHOME":  {},
	"PYTHONPATH":  {},
	"VIRTUAL_ENV": {},
}

// resolveEnvironment merges the process environment with the command's overrides.
// An override of PATH replaces the inherited value.
func resolveEnvironment(sysEnv, overrides []string) []string {
	envMap := filterSystemEnv(sysEnv)
	for _, entry := range overrides {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string, len(sysEnv))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, scrubbed := scrubbedEnvVars[strings.ToUpper(k)]; scrubbed {
			continue
		}
		envMap[k] = v
	}
	return envMap
}

// lookPath searches for an executable in the directories named by the PATH of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		key, value, _ := strings.Cut(e, "=")
		if strings.EqualFold(key, "PATH") {
			path = value
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
