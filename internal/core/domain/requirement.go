package domain

import (
	"net/url"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// PypiRequirement is a requirement on a wheel package. At most one of Path, Git and URL is set.
type PypiRequirement struct {
	Name      PackageName
	Specifier VersionSpec
	Extras    []PackageName
	Marker    Marker

	Path     string
	Editable bool
	Git      string
	Rev      string
	URL      string
}

// ParsePypiRequirement parses a PEP 508 requirement such as
// `requests[socks]>=2.31; python_version >= "3.8"` or `pkg @ git+https://host/repo.git@v1`.
func ParsePypiRequirement(s string) (PypiRequirement, error) {
	raw := strings.TrimSpace(s)
	body, markerText, _ := strings.Cut(raw, ";")
	body = strings.TrimSpace(body)

	var req PypiRequirement
	if markerText = strings.TrimSpace(markerText); markerText != "" {
		marker, err := ParseMarker(markerText)
		if err != nil {
			return PypiRequirement{}, zerr.With(zerr.Wrap(err, ErrInvalidRequirement.Error()), "requirement", raw)
		}
		req.Marker = marker
	}

	nameEnd := strings.IndexFunc(body, func(r rune) bool {
		return !(r == '-' || r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
	if nameEnd < 0 {
		nameEnd = len(body)
	}
	if nameEnd == 0 {
		return PypiRequirement{}, zerr.With(ErrInvalidRequirement, "requirement", raw)
	}
	req.Name = NewPackageName(body[:nameEnd])
	rest := strings.TrimSpace(body[nameEnd:])

	if strings.HasPrefix(rest, "[") {
		closing := strings.IndexByte(rest, ']')
		if closing < 0 {
			return PypiRequirement{}, zerr.With(ErrInvalidRequirement, "requirement", raw)
		}
		for _, extra := range strings.Split(rest[1:closing], ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				req.Extras = append(req.Extras, NewPackageName(extra))
			}
		}
		rest = strings.TrimSpace(rest[closing+1:])
	}

	if location, found := strings.CutPrefix(rest, "@"); found {
		if err := req.setLocation(strings.TrimSpace(location)); err != nil {
			return PypiRequirement{}, zerr.With(err, "requirement", raw)
		}
		return req, nil
	}

	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")"))
	spec, err := ParseVersionSpec(rest)
	if err != nil {
		return PypiRequirement{}, zerr.With(zerr.Wrap(err, ErrInvalidRequirement.Error()), "requirement", raw)
	}
	req.Specifier = spec
	return req, nil
}

// MustParsePypiRequirement is like ParsePypiRequirement but panics on error.
func MustParsePypiRequirement(s string) PypiRequirement {
	req, err := ParsePypiRequirement(s)
	if err != nil {
		panic(err)
	}
	return req
}

func (r *PypiRequirement) setLocation(location string) error {
	switch {
	case location == "":
		return ErrInvalidRequirement
	case strings.HasPrefix(location, "git+"):
		repo := strings.TrimPrefix(location, "git+")
		if at := strings.LastIndexByte(repo, '@'); at > strings.LastIndexByte(repo, '/') {
			r.Rev = repo[at+1:]
			repo = repo[:at]
		}
		r.Git = repo
	case strings.HasPrefix(location, "file://"):
		u, err := url.Parse(location)
		if err != nil {
			return zerr.Wrap(err, ErrInvalidRequirement.Error())
		}
		r.Path = u.Path
	case strings.Contains(location, "://"):
		r.URL = location
	default:
		r.Path = location
	}
	return nil
}

// IsDirect reports whether the requirement points at a path, repository or URL instead of an index.
func (r PypiRequirement) IsDirect() bool {
	return r.Path != "" || r.Git != "" || r.URL != ""
}

// NeedsBuild reports whether satisfying the requirement requires building from source.
func (r PypiRequirement) NeedsBuild() bool {
	switch {
	case r.Path != "":
		return !strings.HasSuffix(r.Path, ".whl")
	case r.Git != "":
		return true
	case r.URL != "":
		return !strings.HasSuffix(r.URL, ".whl")
	default:
		return false
	}
}

// Location returns the direct location of the requirement, or "" for index requirements.
func (r PypiRequirement) Location() string {
	switch {
	case r.Path != "":
		return r.Path
	case r.Git != "":
		if r.Rev != "" {
			return "git+" + r.Git + "@" + r.Rev
		}
		return "git+" + r.Git
	default:
		return r.URL
	}
}

// HasExtra reports whether the requirement activates the given extra.
func (r PypiRequirement) HasExtra(extra PackageName) bool {
	return slices.Contains(r.Extras, extra)
}

func (r PypiRequirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name.String())
	if len(r.Extras) > 0 {
		extras := make([]string, len(r.Extras))
		for i, e := range r.Extras {
			extras[i] = e.String()
		}
		b.WriteByte('[')
		b.WriteString(strings.Join(extras, ","))
		b.WriteByte(']')
	}
	if loc := r.Location(); loc != "" {
		b.WriteString(" @ ")
		b.WriteString(loc)
	} else if !r.Specifier.IsAny() {
		b.WriteString(r.Specifier.String())
	}
	if !r.Marker.IsEmpty() {
		b.WriteString("; ")
		b.WriteString(r.Marker.String())
	}
	return b.String()
}
