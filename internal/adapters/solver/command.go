// Package solver drives external solver executables. The request is written to the
// executable's stdin as JSON and the solution is read back from its stdout.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

// Environment variables naming the solver executables, split on whitespace.
const (
	BinarySolverEnv = "PIXI_CONDA_SOLVER"
	WheelSolverEnv  = "PIXI_PYPI_SOLVER"
	BuildBackendEnv = "PIXI_BUILD_BACKEND"
)

// Command is an executable followed by its leading arguments.
type Command []string

// CommandFromEnv reads a command from the environment variable key.
func CommandFromEnv(key string) Command {
	return strings.Fields(os.Getenv(key))
}

// response is implemented by every decoded solver reply.
type response interface {
	failure() string
}

type runner struct {
	env      string
	command  Command
	executor ports.Executor
	logger   ports.Logger
}

// call runs the command with req on stdin and decodes stdout into resp.
func (r *runner) call(ctx context.Context, dir string, req any, resp response) error {
	if len(r.command) == 0 {
		return zerr.With(zerr.Wrap(domain.ErrSolverNotConfigured, r.env), "env", r.env)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return zerr.Wrap(err, "failed to encode solver request")
	}

	start := time.Now()
	var stdout, stderr bytes.Buffer
	err = r.executor.Execute(ctx, ports.Command{
		Path:  r.command[0],
		Args:  r.command[1:],
		Dir:   dir,
		Stdin: bytes.NewReader(payload),
	}, &stdout, io.MultiWriter(&stderr, ports.StepOutput(ctx)))
	if err != nil {
		return zerr.With(err, "stderr", strings.TrimSpace(stderr.String()))
	}

	if err := json.Unmarshal(stdout.Bytes(), resp); err != nil {
		return protocolError(r.command, err.Error())
	}
	if msg := resp.failure(); msg != "" {
		return zerr.With(zerr.New(msg), "command", r.command[0])
	}

	r.logger.Debug("solver finished",
		"command", r.command[0],
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func protocolError(command Command, reason string) error {
	return zerr.With(zerr.Wrap(domain.ErrSolverProtocol, reason), "command", command[0])
}
