package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// LockedRecord is a locked binary package. It is either a *BinaryRecord or a *SourceRecord;
// consumers type-switch over the two.
type LockedRecord interface {
	// PackageName returns the binary package name.
	PackageName() string
	// PackageVersion returns the locked version.
	PackageVersion() string
	// Identity returns the content identity used to compare the same package across environments.
	Identity() string
	// Dependencies returns the match spec strings the package depends on.
	Dependencies() []string

	lockedRecord()
}

// BinaryRecord is a fully resolved, pre-built binary package.
type BinaryRecord struct {
	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version" yaml:"version"`
	Build       string   `json:"build" yaml:"build"`
	BuildNumber int      `json:"build_number,omitempty" yaml:"build_number,omitempty"`
	Subdir      Platform `json:"subdir" yaml:"subdir"`
	Channel     string   `json:"channel,omitempty" yaml:"channel,omitempty"`
	URL         string   `json:"url" yaml:"url"`
	SHA256      string   `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	Size        int64    `json:"size,omitempty" yaml:"size,omitempty"`
	Depends     []string `json:"depends,omitempty" yaml:"depends,omitempty"`
	Constrains  []string `json:"constrains,omitempty" yaml:"constrains,omitempty"`
	// PurlNames are the PyPI names this package provides.
	PurlNames []string `json:"purls,omitempty" yaml:"purls,omitempty"`
}

func (r *BinaryRecord) PackageName() string    { return r.Name }
func (r *BinaryRecord) PackageVersion() string { return r.Version }
func (r *BinaryRecord) Dependencies() []string { return r.Depends }
func (r *BinaryRecord) lockedRecord()          {}

// Identity returns the record URL, or name-version-build when no URL is known.
func (r *BinaryRecord) Identity() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Name + "-" + r.Version + "-" + r.Build
}

// FileName returns the archive file name of the record, taken from its URL.
func (r *BinaryRecord) FileName() string {
	if r.URL != "" {
		if i := strings.LastIndexByte(r.URL, '/'); i >= 0 {
			return r.URL[i+1:]
		}
		return r.URL
	}
	return r.Name + "-" + r.Version + "-" + r.Build + ".tar.bz2"
}

// DistName returns the archive name without extension, e.g. "zlib-1.3.1-hb9d3cd8_2".
func (r *BinaryRecord) DistName() string {
	name := r.FileName()
	for _, ext := range []string{".tar.bz2", ".conda"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// SourceRecord is a binary package that still has to be built from a source reference.
type SourceRecord struct {
	Name    string   `json:"name" yaml:"name"`
	Version string   `json:"version" yaml:"version"`
	Subdir  Platform `json:"subdir" yaml:"subdir"`
	// Source is the path or URL of the package source.
	Source    string   `json:"source" yaml:"source"`
	Depends   []string `json:"depends,omitempty" yaml:"depends,omitempty"`
	InputHash string   `json:"input_hash,omitempty" yaml:"input_hash,omitempty"`
	PurlNames []string `json:"purls,omitempty" yaml:"purls,omitempty"`
}

func (r *SourceRecord) PackageName() string    { return r.Name }
func (r *SourceRecord) PackageVersion() string { return r.Version }
func (r *SourceRecord) Identity() string       { return r.Source }
func (r *SourceRecord) Dependencies() []string { return r.Depends }
func (r *SourceRecord) lockedRecord()          {}

// ProvidedPypiNames returns the PyPI names provided by a locked record.
func ProvidedPypiNames(r LockedRecord) []PackageName {
	var purls []string
	switch rec := r.(type) {
	case *BinaryRecord:
		purls = rec.PurlNames
	case *SourceRecord:
		purls = rec.PurlNames
	}
	return NewPackageNames(purls)
}

// RecordsByName indexes locked records by package name. A name locked twice is an error.
func RecordsByName(records []LockedRecord) (map[string]LockedRecord, error) {
	out := make(map[string]LockedRecord, len(records))
	for _, r := range records {
		name := r.PackageName()
		if _, exists := out[name]; exists {
			return nil, zerr.With(ErrDuplicateRecord, "package", name)
		}
		out[name] = r
	}
	return out, nil
}

// PythonRecordName is the binary package name of the Python interpreter.
const PythonRecordName = "python"

// FindPython returns the interpreter record in a locked set, if any.
func FindPython(records []LockedRecord) (LockedRecord, bool) {
	for _, r := range records {
		if r.PackageName() == PythonRecordName {
			return r, true
		}
	}
	return nil, false
}

// BinaryRecords returns the pre-built records of a locked set.
func BinaryRecords(records []LockedRecord) []*BinaryRecord {
	out := make([]*BinaryRecord, 0, len(records))
	for _, r := range records {
		if b, ok := r.(*BinaryRecord); ok {
			out = append(out, b)
		}
	}
	return out
}
