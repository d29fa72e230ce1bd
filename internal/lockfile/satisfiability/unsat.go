// Package satisfiability decides whether a locked environment still satisfies the manifest.
package satisfiability

import (
	"fmt"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
)

// EnvironmentUnsatKind enumerates environment level mismatches.
type EnvironmentUnsatKind int

const (
	// ChannelsMismatch means the configured channels differ from the locked ones.
	ChannelsMismatch EnvironmentUnsatKind = iota
	// IndexesMismatch means the wheel index configuration differs from the locked one.
	IndexesMismatch
)

// EnvironmentUnsat is returned when an environment's locked metadata no longer matches.
type EnvironmentUnsat struct {
	Kind     EnvironmentUnsatKind
	Expected []string
	Locked   []string
}

func (e *EnvironmentUnsat) Error() string {
	switch e.Kind {
	case ChannelsMismatch:
		return fmt.Sprintf("the channels in the lock file (%s) do not match the environment channels (%s)",
			strings.Join(e.Locked, ", "), strings.Join(e.Expected, ", "))
	default:
		return fmt.Sprintf("the indexes in the lock file (%s) do not match the environment indexes (%s)",
			strings.Join(e.Locked, ", "), strings.Join(e.Expected, ", "))
	}
}

// PlatformUnsatKind enumerates platform level mismatches.
type PlatformUnsatKind int

const (
	MissingPlatform PlatformUnsatKind = iota
	DuplicateEntry
	UnsatisfiableMatchSpec
	TooManyCondaPackages
	CondaPackageShouldBePypi
	MissingPythonInterpreter
	UnsatisfiableRequirement
	TooManyPypiPackages
	EditablePackageMismatch
	SourceTreeHashMismatch
	PythonVersionMismatch
	InvalidRequirement
)

func (k PlatformUnsatKind) String() string {
	switch k {
	case MissingPlatform:
		return "missing platform"
	case DuplicateEntry:
		return "duplicate entry"
	case UnsatisfiableMatchSpec:
		return "unsatisfiable match spec"
	case TooManyCondaPackages:
		return "too many conda packages"
	case CondaPackageShouldBePypi:
		return "conda package should be pypi"
	case MissingPythonInterpreter:
		return "missing python interpreter"
	case UnsatisfiableRequirement:
		return "unsatisfiable requirement"
	case TooManyPypiPackages:
		return "too many pypi packages"
	case EditablePackageMismatch:
		return "editable package mismatch"
	case SourceTreeHashMismatch:
		return "source tree hash mismatch"
	case PythonVersionMismatch:
		return "python version mismatch"
	default:
		return "invalid requirement"
	}
}

// PlatformUnsat is returned when the locked packages of one platform no longer satisfy the environment.
type PlatformUnsat struct {
	Kind     PlatformUnsatKind
	Platform domain.Platform
	// Packages names the packages involved, if any.
	Packages []string
	Detail   string
}

// IsPypiOnly reports whether only the wheel ecosystem is affected, so the binary packages can be kept.
func (e *PlatformUnsat) IsPypiOnly() bool {
	switch e.Kind {
	case MissingPythonInterpreter,
		UnsatisfiableRequirement,
		TooManyPypiPackages,
		EditablePackageMismatch,
		SourceTreeHashMismatch,
		PythonVersionMismatch,
		InvalidRequirement:
		return true
	default:
		return false
	}
}

func (e *PlatformUnsat) Error() string {
	var msg string
	switch e.Kind {
	case MissingPlatform:
		msg = fmt.Sprintf("the platform %s is missing from the lock file", e.Platform)
	case DuplicateEntry:
		msg = fmt.Sprintf("the package %s is locked more than once", e.packages())
	case UnsatisfiableMatchSpec:
		msg = fmt.Sprintf("no locked package satisfies %s", e.packages())
	case TooManyCondaPackages:
		msg = fmt.Sprintf("the lock file contains conda packages that are not required: %s", e.packages())
	case CondaPackageShouldBePypi:
		msg = fmt.Sprintf("%s is locked as a conda package but is required as a pypi source", e.packages())
	case MissingPythonInterpreter:
		msg = "pypi packages are required but no python interpreter is locked"
	case UnsatisfiableRequirement:
		msg = fmt.Sprintf("no locked package satisfies %s", e.packages())
	case TooManyPypiPackages:
		msg = fmt.Sprintf("the lock file contains pypi packages that are not required: %s", e.packages())
	case EditablePackageMismatch:
		msg = fmt.Sprintf("the editable status of %s changed", e.packages())
	case SourceTreeHashMismatch:
		msg = fmt.Sprintf("the source tree of %s changed", e.packages())
	case PythonVersionMismatch:
		msg = fmt.Sprintf("the locked python version does not satisfy the requires-python of %s", e.packages())
	default:
		msg = fmt.Sprintf("cannot parse a requirement of %s", e.packages())
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *PlatformUnsat) packages() string {
	return strings.Join(e.Packages, ", ")
}
