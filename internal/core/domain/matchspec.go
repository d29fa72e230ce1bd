package domain

import (
	"path"
	"strings"

	"go.trai.ch/zerr"
)

// MatchSpec is a requirement on a binary package.
type MatchSpec struct {
	Name    string
	Version VersionSpec
	// Build is a glob over the build string, empty matches any build.
	Build string
	// Channel restricts the package to a channel name or URL, empty matches any channel.
	Channel string
}

// ParseMatchSpec parses specs such as "python", "numpy >=1.26", "numpy==1.26",
// "openssl 3.* *_0", "conda-forge::zlib" and "python[version='3.12.*',build=*_cpython]".
func ParseMatchSpec(s string) (MatchSpec, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return MatchSpec{}, zerr.With(ErrInvalidMatchSpec, "spec", s)
	}

	var spec MatchSpec
	if channel, rest, found := strings.Cut(raw, "::"); found {
		spec.Channel = strings.TrimSpace(channel)
		raw = strings.TrimSpace(rest)
	}

	var bracket string
	if open := strings.IndexByte(raw, '['); open >= 0 {
		if !strings.HasSuffix(raw, "]") {
			return MatchSpec{}, zerr.With(ErrInvalidMatchSpec, "spec", s)
		}
		bracket = raw[open+1 : len(raw)-1]
		raw = strings.TrimSpace(raw[:open])
	}

	nameEnd := strings.IndexAny(raw, " <>=!~")
	if nameEnd < 0 {
		nameEnd = len(raw)
	}
	spec.Name = strings.ToLower(raw[:nameEnd])
	if !validPackageName(spec.Name) {
		return MatchSpec{}, zerr.With(ErrInvalidMatchSpec, "spec", s)
	}

	fields := strings.Fields(raw[nameEnd:])
	if len(fields) > 2 {
		return MatchSpec{}, zerr.With(ErrInvalidMatchSpec, "spec", s)
	}
	versionText := ""
	if len(fields) > 0 {
		versionText = fields[0]
	}
	if len(fields) == 2 {
		spec.Build = fields[1]
	}

	if bracket != "" {
		for _, attr := range strings.Split(bracket, ",") {
			key, value, ok := strings.Cut(attr, "=")
			if !ok {
				return MatchSpec{}, zerr.With(ErrInvalidMatchSpec, "spec", s)
			}
			value = strings.Trim(strings.TrimSpace(value), `"'`)
			switch strings.TrimSpace(key) {
			case "version":
				versionText = value
			case "build":
				spec.Build = value
			case "channel":
				spec.Channel = value
			default:
				// Other attributes (md5, subdir, ...) do not take part in matching.
			}
		}
	}

	version, err := ParseVersionSpec(versionText)
	if err != nil {
		return MatchSpec{}, zerr.With(err, "spec", s)
	}
	spec.Version = version
	if spec.Build != "" {
		if _, err := path.Match(spec.Build, ""); err != nil {
			return MatchSpec{}, zerr.With(ErrInvalidMatchSpec, "spec", s)
		}
	}
	return spec, nil
}

// MustParseMatchSpec is like ParseMatchSpec but panics on error.
func MustParseMatchSpec(s string) MatchSpec {
	spec, err := ParseMatchSpec(s)
	if err != nil {
		panic(err)
	}
	return spec
}

func validPackageName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// IsVirtual reports whether the spec names a virtual package such as "__glibc".
func (m MatchSpec) IsVirtual() bool {
	return IsVirtualPackage(m.Name)
}

// IsVirtualPackage reports whether a binary package name is a virtual package.
func IsVirtualPackage(name string) bool {
	return strings.HasPrefix(name, "__")
}

// Matches reports whether a locked binary record satisfies the spec.
func (m MatchSpec) Matches(r *BinaryRecord) bool {
	if r == nil || r.Name != m.Name {
		return false
	}
	if !m.Version.Matches(r.Version) {
		return false
	}
	if m.Build != "" {
		if ok, _ := path.Match(m.Build, r.Build); !ok {
			return false
		}
	}
	if m.Channel != "" && !channelMatches(r.Channel, m.Channel) {
		return false
	}
	return true
}

// MatchesSource reports whether a source record satisfies the spec. Build strings are not known
// before the build, so only name and version are compared.
func (m MatchSpec) MatchesSource(r *SourceRecord) bool {
	return r != nil && r.Name == m.Name && m.Version.Matches(r.Version)
}

func channelMatches(recordChannel, want string) bool {
	got := strings.TrimSuffix(recordChannel, "/")
	want = strings.TrimSuffix(want, "/")
	return got == want || strings.HasSuffix(got, "/"+want)
}

func (m MatchSpec) String() string {
	var b strings.Builder
	if m.Channel != "" {
		b.WriteString(m.Channel)
		b.WriteString("::")
	}
	b.WriteString(m.Name)
	if !m.Version.IsAny() || m.Build != "" {
		b.WriteByte(' ')
		if m.Version.IsAny() {
			b.WriteByte('*')
		} else {
			b.WriteString(m.Version.String())
		}
	}
	if m.Build != "" {
		b.WriteByte(' ')
		b.WriteString(m.Build)
	}
	return b.String()
}
