// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Command describes an external process invocation.
type Command struct {
	// Path is the executable, resolved through PATH when it has no separator.
	Path string
	Args []string
	// Dir is the working directory, empty for the current one.
	Dir string
	// Env holds "KEY=VALUE" pairs appended to the process environment.
	Env   []string
	Stdin io.Reader
}

// Executor runs external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command and streams its output to stdout and stderr.
	// It returns an error if the command cannot be started or exits unsuccessfully.
	Execute(ctx context.Context, cmd Command, stdout, stderr io.Writer) error
}
