package domain

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
	"go.trai.ch/zerr"
)

type versionOp int

const (
	opEq versionOp = iota
	opNe
	opGt
	opGe
	opLt
	opLe
	opCompatible
	opPrefix
	opNotPrefix
	opArbitrary
)

var versionOps = []struct {
	token string
	op    versionOp
}{
	// Longest tokens first so "===" is not read as "==".
	{"===", opArbitrary},
	{"==", opEq},
	{"!=", opNe},
	{"~=", opCompatible},
	{">=", opGe},
	{"<=", opLe},
	{">", opGt},
	{"<", opLt},
	{"=", opPrefix},
}

type versionClause struct {
	op      versionOp
	raw     string
	version *version.Version
	release []int64
}

// VersionSpec is a version constraint in either conda or PEP 440 syntax.
// Clauses separated by "," must all hold; groups separated by "|" are alternatives.
type VersionSpec struct {
	raw   string
	anyOf [][]versionClause
}

// AnyVersion matches every version.
var AnyVersion = VersionSpec{}

// ParseVersionSpec parses a constraint such as ">=1.2,<2", "1.2.*", "~=3.4" or "3.11|3.12".
func ParseVersionSpec(s string) (VersionSpec, error) {
	raw := strings.TrimSpace(s)
	if raw == "" || raw == "*" {
		return VersionSpec{raw: raw}, nil
	}

	spec := VersionSpec{raw: raw}
	for _, alt := range strings.Split(raw, "|") {
		var group []versionClause
		for _, part := range strings.Split(alt, ",") {
			part = strings.TrimSpace(part)
			if part == "" || part == "*" {
				continue
			}
			clause, err := parseVersionClause(part)
			if err != nil {
				return VersionSpec{}, zerr.With(err, "spec", raw)
			}
			group = append(group, clause)
		}
		spec.anyOf = append(spec.anyOf, group)
	}
	return spec, nil
}

// MustParseVersionSpec is like ParseVersionSpec but panics on error. Intended for tests and constants.
func MustParseVersionSpec(s string) VersionSpec {
	spec, err := ParseVersionSpec(s)
	if err != nil {
		panic(err)
	}
	return spec
}

func parseVersionClause(part string) (versionClause, error) {
	op := opEq
	rest := part
	explicit := false
	for _, candidate := range versionOps {
		if strings.HasPrefix(part, candidate.token) {
			op = candidate.op
			rest = strings.TrimSpace(part[len(candidate.token):])
			explicit = true
			break
		}
	}
	if rest == "" {
		return versionClause{}, zerr.With(ErrInvalidVersionSpec, "clause", part)
	}

	wildcard := strings.HasSuffix(rest, "*")
	if wildcard {
		rest = strings.TrimRight(strings.TrimSuffix(rest, "*"), ".")
		switch {
		case !explicit, op == opEq, op == opPrefix:
			op = opPrefix
		case op == opNe:
			op = opNotPrefix
		default:
			// ">=1.2.*" is accepted by conda and means ">=1.2".
		}
	}

	clause := versionClause{op: op, raw: rest}
	if op == opArbitrary {
		return clause, nil
	}

	clause.release = releaseSegments(rest)
	if len(clause.release) == 0 && rest != "" {
		return versionClause{}, zerr.With(ErrInvalidVersionSpec, "clause", part)
	}
	if op == opCompatible && len(clause.release) < 2 {
		return versionClause{}, zerr.With(ErrInvalidVersionSpec, "clause", part)
	}
	if v, err := parseVersion(rest); err == nil {
		clause.version = v
	} else if op != opPrefix && op != opNotPrefix && op != opEq && op != opNe {
		return versionClause{}, zerr.With(zerr.Wrap(err, ErrInvalidVersionSpec.Error()), "clause", part)
	}
	return clause, nil
}

// Matches reports whether the version string v satisfies the constraint.
func (s VersionSpec) Matches(v string) bool {
	if len(s.anyOf) == 0 {
		return true
	}
	parsed, _ := parseVersion(v)
	release := releaseSegments(v)
	for _, group := range s.anyOf {
		if groupMatches(group, v, parsed, release) {
			return true
		}
	}
	return false
}

func groupMatches(group []versionClause, raw string, v *version.Version, release []int64) bool {
	for _, c := range group {
		if !c.matches(raw, v, release) {
			return false
		}
	}
	return true
}

func (c versionClause) matches(raw string, v *version.Version, release []int64) bool {
	switch c.op {
	case opArbitrary:
		return strings.EqualFold(strings.TrimSpace(raw), c.raw)
	case opPrefix:
		return hasReleasePrefix(release, c.release)
	case opNotPrefix:
		return !hasReleasePrefix(release, c.release)
	}

	if v == nil || c.version == nil {
		// Unparseable versions only support equality.
		eq := strings.TrimSpace(raw) == c.raw
		switch c.op {
		case opEq:
			return eq
		case opNe:
			return !eq
		default:
			return false
		}
	}

	// Compare directly: go-version's Constraint rejects pre-releases such as "3.13.0rc1".
	cmp := v.Compare(c.version)
	switch c.op {
	case opEq:
		return cmp == 0
	case opNe:
		return cmp != 0
	case opGt:
		return cmp > 0
	case opGe:
		return cmp >= 0
	case opLt:
		return cmp < 0
	case opLe:
		return cmp <= 0
	case opCompatible:
		return cmp >= 0 && hasReleasePrefix(release, c.release[:len(c.release)-1])
	default:
		return false
	}
}

func hasReleasePrefix(release, prefix []int64) bool {
	if len(prefix) > len(release) {
		// "1" has the prefix "1.0".
		for i := len(release); i < len(prefix); i++ {
			if prefix[i] != 0 {
				return false
			}
		}
		prefix = prefix[:len(release)]
	}
	for i, seg := range prefix {
		if release[i] != seg {
			return false
		}
	}
	return true
}

// releaseSegments extracts the numeric release segments of a version, ignoring any epoch.
func releaseSegments(v string) []int64 {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if _, after, found := strings.Cut(v, "!"); found {
		v = after
	}
	var out []int64
	for _, part := range strings.Split(v, ".") {
		digits := part
		for i, r := range part {
			if r < '0' || r > '9' {
				digits = part[:i]
				break
			}
		}
		if digits == "" {
			break
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			break
		}
		out = append(out, n)
		if len(digits) != len(part) {
			break
		}
	}
	return out
}

// parseVersion parses a conda or PEP 440 version with go-version after normalizing
// the spellings go-version does not understand.
func parseVersion(v string) (*version.Version, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if _, after, found := strings.Cut(v, "!"); found {
		v = after
	}
	v = strings.ReplaceAll(v, "_", "+")
	v = strings.Replace(v, ".post", "+post", 1)
	v = strings.Replace(v, ".dev", "-dev", 1)
	return version.NewVersion(v)
}

// CompareVersions orders two version strings. Unparseable versions compare lexically.
func CompareVersions(a, b string) int {
	va, errA := parseVersion(a)
	vb, errB := parseVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

// ShortVersion returns the "major.minor" part of a version, e.g. "3.11" for "3.11.4".
func ShortVersion(v string) string {
	segs := releaseSegments(v)
	switch len(segs) {
	case 0:
		return v
	case 1:
		return strconv.FormatInt(segs[0], 10)
	default:
		return strconv.FormatInt(segs[0], 10) + "." + strconv.FormatInt(segs[1], 10)
	}
}

// IsAny reports whether the spec matches every version.
func (s VersionSpec) IsAny() bool {
	return len(s.anyOf) == 0
}

func (s VersionSpec) String() string {
	return s.raw
}
