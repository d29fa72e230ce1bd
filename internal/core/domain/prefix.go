package domain

import "path/filepath"

// CondaPrefixUpdated is the result of bringing a prefix in line with a locked binary package set.
type CondaPrefixUpdated struct {
	// Group is the solve group name, or the environment name when it has no group.
	Group        string
	Prefix       string
	Platform     Platform
	PythonStatus PythonStatus
	// Records are the records installed in the prefix after the update.
	Records []*BinaryRecord
	// Changed is false when the prefix already matched and nothing was linked or unlinked.
	Changed bool
}

// Transaction is the three-way diff between installed and required binary records.
type Transaction struct {
	Install   []*BinaryRecord
	Remove    []*BinaryRecord
	Unchanged []*BinaryRecord
}

// IsEmpty reports whether the transaction changes nothing.
func (t *Transaction) IsEmpty() bool {
	return len(t.Install) == 0 && len(t.Remove) == 0
}

// NewTransaction diffs the installed records against the required ones. A record whose
// content changed is removed and installed again.
func NewTransaction(installed, required []*BinaryRecord) *Transaction {
	current := make(map[string]*BinaryRecord, len(installed))
	for _, r := range installed {
		current[r.Name] = r
	}

	tx := &Transaction{}
	wanted := make(map[string]struct{}, len(required))
	for _, r := range required {
		wanted[r.Name] = struct{}{}
		old, ok := current[r.Name]
		switch {
		case !ok:
			tx.Install = append(tx.Install, r)
		case old.Identity() != r.Identity() || old.Version != r.Version || old.Build != r.Build:
			tx.Remove = append(tx.Remove, old)
			tx.Install = append(tx.Install, r)
		default:
			tx.Unchanged = append(tx.Unchanged, old)
		}
	}
	for _, r := range installed {
		if _, ok := wanted[r.Name]; !ok {
			tx.Remove = append(tx.Remove, r)
		}
	}
	return tx
}

// BuildEnvironment is a materialized prefix that source builds run against.
type BuildEnvironment struct {
	// Group is the solve group the prefix was materialized for.
	Group  string
	Prefix string
	Python PythonInfo
	// Env holds the activation variables as "KEY=VALUE" pairs.
	Env []string
}

// PythonPath returns the absolute interpreter path.
func (b *BuildEnvironment) PythonPath() string {
	return filepath.Join(b.Prefix, b.Python.Path)
}

// SitePackagesPath returns the absolute site-packages directory.
func (b *BuildEnvironment) SitePackagesPath() string {
	return filepath.Join(b.Prefix, b.Python.SitePackages)
}
