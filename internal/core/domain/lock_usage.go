package domain

// LockFileUsage controls how a command treats the existing lock file.
type LockFileUsage int

const (
	// LockFileUpdate updates the lock file when it is outdated.
	LockFileUpdate LockFileUsage = iota
	// LockFileLocked fails when the lock file is outdated.
	LockFileLocked
	// LockFileFrozen uses the lock file as-is without checking it.
	LockFileFrozen
)

// AllowsUpdate reports whether the lock file may be rewritten.
func (u LockFileUsage) AllowsUpdate() bool {
	return u == LockFileUpdate
}

// ShouldCheck reports whether the lock file must be checked against the manifest.
func (u LockFileUsage) ShouldCheck() bool {
	return u != LockFileFrozen
}

func (u LockFileUsage) String() string {
	switch u {
	case LockFileLocked:
		return "locked"
	case LockFileFrozen:
		return "frozen"
	default:
		return "update"
	}
}
