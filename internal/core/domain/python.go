package domain

import "path/filepath"

// PythonInfo describes the interpreter of a prefix.
type PythonInfo struct {
	// Path is the interpreter executable relative to the prefix.
	Path         string
	Version      string
	ShortVersion string
	// SitePackages is the site-packages directory relative to the prefix.
	SitePackages string
}

// NewPythonInfo derives interpreter details from a Python version on platform p.
func NewPythonInfo(version string, p Platform) PythonInfo {
	short := ShortVersion(version)
	if p.IsWindows() {
		return PythonInfo{
			Path:         "python.exe",
			Version:      version,
			ShortVersion: short,
			SitePackages: filepath.Join("Lib", "site-packages"),
		}
	}
	return PythonInfo{
		Path:         filepath.Join("bin", "python"+short),
		Version:      version,
		ShortVersion: short,
		SitePackages: filepath.Join("lib", "python"+short, "site-packages"),
	}
}

// PythonInfoFromRecords returns the interpreter described by a locked set, if it contains one.
func PythonInfoFromRecords(records []LockedRecord, p Platform) (PythonInfo, bool) {
	python, ok := FindPython(records)
	if !ok {
		return PythonInfo{}, false
	}
	return NewPythonInfo(python.PackageVersion(), p), true
}

// PythonStatusKind enumerates how the interpreter of a prefix changed.
type PythonStatusKind int

const (
	// PythonDoesNotExist means there was no interpreter before or after.
	PythonDoesNotExist PythonStatusKind = iota
	// PythonAdded means an interpreter was installed.
	PythonAdded
	// PythonRemoved means the interpreter was removed.
	PythonRemoved
	// PythonChanged means the interpreter changed version.
	PythonChanged
	// PythonUnchanged means the interpreter is the same as before.
	PythonUnchanged
)

func (k PythonStatusKind) String() string {
	switch k {
	case PythonAdded:
		return "added"
	case PythonRemoved:
		return "removed"
	case PythonChanged:
		return "changed"
	case PythonUnchanged:
		return "unchanged"
	default:
		return "does-not-exist"
	}
}

// PythonStatus describes how the interpreter of a prefix changed during an update.
type PythonStatus struct {
	Kind PythonStatusKind
	Old  *PythonInfo
	New  *PythonInfo
}

// NewPythonStatus compares the interpreter before and after an update.
func NewPythonStatus(before, after *PythonInfo) PythonStatus {
	switch {
	case before == nil && after == nil:
		return PythonStatus{Kind: PythonDoesNotExist}
	case before == nil:
		return PythonStatus{Kind: PythonAdded, New: after}
	case after == nil:
		return PythonStatus{Kind: PythonRemoved, Old: before}
	case before.ShortVersion != after.ShortVersion:
		return PythonStatus{Kind: PythonChanged, Old: before, New: after}
	default:
		return PythonStatus{Kind: PythonUnchanged, Old: before, New: after}
	}
}

// CurrentInfo returns the interpreter present after the update, if any.
func (s PythonStatus) CurrentInfo() *PythonInfo {
	switch s.Kind {
	case PythonAdded, PythonChanged, PythonUnchanged:
		return s.New
	default:
		return nil
	}
}

// LocationChanged reports whether the site-packages directory moved, which invalidates
// every wheel installed into the old one.
func (s PythonStatus) LocationChanged() bool {
	return s.Kind == PythonChanged && s.Old.SitePackages != s.New.SitePackages
}
