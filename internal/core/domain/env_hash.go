package domain

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// LockedEnvironmentHash creates a deterministic hash of the locked content of one environment
// and platform. It is recorded in the prefix so an unchanged environment can skip installation.
func LockedEnvironmentHash(locked *LockedPlatform) string {
	if locked == nil {
		locked = &LockedPlatform{}
	}

	lines := make([]string, 0, len(locked.Binary)+len(locked.Wheels))
	for _, r := range locked.Binary {
		switch rec := r.(type) {
		case *BinaryRecord:
			lines = append(lines, "conda:"+rec.Identity()+":"+rec.SHA256)
		case *SourceRecord:
			lines = append(lines, "source:"+rec.Identity()+":"+rec.InputHash)
		}
	}
	for _, w := range locked.Wheels {
		extras := make([]string, len(w.Env.Extras))
		for i, e := range w.Env.Extras {
			extras[i] = e.String()
		}
		slices.Sort(extras)
		lines = append(lines, "pypi:"+w.Package.Name.String()+"=="+w.Package.Version+
			":"+w.Package.Location+":"+w.Package.Hash+"["+strings.Join(extras, ",")+"]")
	}
	slices.Sort(lines)

	digest := xxhash.New()
	for _, line := range lines {
		_, _ = digest.WriteString(line)
		_, _ = digest.WriteString(";")
	}
	return strconv.FormatUint(digest.Sum64(), 16)
}

// EnvironmentFile is recorded in conda-meta of every installed prefix. It lets other tools find
// the project of a prefix and lets install skip a prefix whose locked content did not change.
type EnvironmentFile struct {
	ManifestPath    string `json:"manifest_path"`
	EnvironmentName string `json:"environment_name"`
	PixiVersion     string `json:"pixi_version"`
	// LockHash is the LockedEnvironmentHash of the content the prefix was installed from.
	LockHash string `json:"environment_lock_file_hash"`
}

// EnvironmentFilePath returns the path of the environment file of a prefix.
func EnvironmentFilePath(prefix string) string {
	return filepath.Join(prefix, CondaMetaDirName, EnvironmentFileName)
}

// NeedsReinstall reports whether a locked set must be installed even when its hash is
// unchanged. Source records and local path wheels can change without the lock file changing.
func (l *LockedPlatform) NeedsReinstall() bool {
	if l == nil {
		return false
	}
	for _, r := range l.Binary {
		if _, ok := r.(*SourceRecord); ok {
			return true
		}
	}
	for _, w := range l.Wheels {
		if w.Package.IsLocalPath() {
			return true
		}
	}
	return false
}
