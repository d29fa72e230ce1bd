package domain

import (
	"strings"
	"unique"
)

// PackageName is a normalized, interned PyPI package name.
// Names are compared in their normalized form: lowercase, with runs of "-", "_" and "."
// collapsed to a single "-". Binary package names are already canonical and stay plain strings.
type PackageName struct {
	h unique.Handle[string]
}

// NewPackageName normalizes and interns a package name.
func NewPackageName(s string) PackageName {
	return PackageName{h: unique.Make(NormalizePackageName(s))}
}

// NewPackageNames normalizes and interns a list of names.
func NewPackageNames(s []string) []PackageName {
	res := make([]PackageName, len(s))
	for i, s := range s {
		res[i] = NewPackageName(s)
	}
	return res
}

// NormalizePackageName lowercases a name and collapses separator runs to "-".
func NormalizePackageName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	prevSep := false
	for _, r := range s {
		if r == '-' || r == '_' || r == '.' {
			if !prevSep {
				b.WriteByte('-')
			}
			prevSep = true
			continue
		}
		prevSep = false
		b.WriteRune(r)
	}
	return b.String()
}

// String returns the normalized name.
func (n PackageName) String() string {
	if n.IsZero() {
		return ""
	}
	return n.h.Value()
}

// IsZero reports whether the name was never set.
func (n PackageName) IsZero() bool {
	return n.h == unique.Handle[string]{}
}

// Compare orders names lexically, for use with slices.SortFunc.
func (n PackageName) Compare(other PackageName) int {
	return strings.Compare(n.String(), other.String())
}

// MarshalText implements encoding.TextMarshaler.
func (n PackageName) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *PackageName) UnmarshalText(text []byte) error {
	*n = NewPackageName(string(text))
	return nil
}
