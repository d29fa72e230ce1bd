package domain

import "strings"

// StepKind identifies the kind of work reported to the progress sink.
type StepKind string

const (
	// StepSolveConda is a binary ecosystem solve of one target.
	StepSolveConda StepKind = "solve-conda"
	// StepSolvePypi is a wheel ecosystem solve of one target.
	StepSolvePypi StepKind = "solve-pypi"
	// StepMaterialize is the installation of a throwaway prefix for source builds.
	StepMaterialize StepKind = "materialize"
	// StepDownload is the download of one binary package.
	StepDownload StepKind = "download"
	// StepLink is the linking of one binary package into a prefix.
	StepLink StepKind = "link"
	// StepUnlink is the removal of one binary package from a prefix.
	StepUnlink StepKind = "unlink"
	// StepBuild is a wheel build from a source distribution or tree.
	StepBuild StepKind = "build"
	// StepInstall is the installation of one wheel.
	StepInstall StepKind = "install"
	// StepUninstall is the removal of one wheel.
	StepUninstall StepKind = "uninstall"
)

// StepStatus represents the lifecycle state of a reported step.
type StepStatus string

const (
	// StepStatusPending indicates the step has not started.
	StepStatusPending StepStatus = "pending"
	// StepStatusRunning indicates the step is in progress.
	StepStatusRunning StepStatus = "running"
	// StepStatusCompleted indicates the step finished successfully.
	StepStatusCompleted StepStatus = "completed"
	// StepStatusFailed indicates the step failed.
	StepStatusFailed StepStatus = "failed"
	// StepStatusCached indicates the step was served from a cache.
	StepStatusCached StepStatus = "cached"
	// StepStatusSkipped indicates the step was not needed.
	StepStatusSkipped StepStatus = "skipped"
)

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// IsTerminal reports whether no further transitions follow the status.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusCompleted, StepStatusFailed, StepStatusCached, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// NormalizeStepStatus converts a string to a StepStatus, defaulting to pending if unknown.
func NormalizeStepStatus(s string) StepStatus {
	switch status := StepStatus(strings.ToLower(s)); status {
	case StepStatusRunning, StepStatusCompleted, StepStatusFailed, StepStatusCached, StepStatusSkipped:
		return status
	default:
		return StepStatusPending
	}
}
