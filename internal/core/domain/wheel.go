package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// WheelPackageData is the locked description of one wheel package.
type WheelPackageData struct {
	Name    PackageName
	Version string
	// Location is the URL of the distribution or the path of a local source tree or archive.
	Location string
	// Hash is the sha256 of the archive, or the source tree hash of a local path.
	Hash           string
	RequiresDist   []string
	RequiresPython string
	Editable       bool
}

// WheelEnvironmentData is the per-environment part of a locked wheel.
type WheelEnvironmentData struct {
	// Extras are the extras activated for the package in the environment.
	Extras []PackageName
}

// LockedWheel is a wheel package locked for one environment and platform.
type LockedWheel struct {
	Package WheelPackageData
	Env     WheelEnvironmentData
}

// Identity returns the content identity of the wheel used to compare it across environments.
func (w LockedWheel) Identity() string {
	return w.Package.Location
}

// IsLocalPath reports whether the package was locked from a local path.
func (p WheelPackageData) IsLocalPath() bool {
	return p.Location != "" && !strings.Contains(p.Location, "://") && !strings.HasPrefix(p.Location, "git+")
}

// IsRemoteArchive reports whether the package is a pre-built wheel at a URL.
func (p WheelPackageData) IsRemoteArchive() bool {
	return strings.Contains(p.Location, "://") && strings.HasSuffix(urlPath(p.Location), ".whl")
}

// Requirements parses the requires-dist entries of the package.
func (p WheelPackageData) Requirements() ([]PypiRequirement, error) {
	out := make([]PypiRequirement, 0, len(p.RequiresDist))
	for _, raw := range p.RequiresDist {
		req, err := ParsePypiRequirement(raw)
		if err != nil {
			return nil, zerr.With(err, "package", p.Name.String())
		}
		out = append(out, req)
	}
	return out, nil
}

func urlPath(location string) string {
	location, _, _ = strings.Cut(location, "#")
	location, _, _ = strings.Cut(location, "?")
	return location
}

// WheelFilename is the parsed name of a wheel archive.
type WheelFilename struct {
	Name        PackageName
	Version     string
	Build       string
	PythonTag   string
	AbiTag      string
	PlatformTag string
}

// ParseWheelFilename parses "{name}-{version}(-{build})?-{python}-{abi}-{platform}.whl".
func ParseWheelFilename(name string) (WheelFilename, error) {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	base, ok := strings.CutSuffix(urlPath(name), ".whl")
	if !ok {
		return WheelFilename{}, zerr.With(ErrInvalidWheelFilename, "filename", name)
	}
	parts := strings.Split(base, "-")
	if len(parts) != 5 && len(parts) != 6 {
		return WheelFilename{}, zerr.With(ErrInvalidWheelFilename, "filename", name)
	}

	out := WheelFilename{
		Name:        NewPackageName(parts[0]),
		Version:     parts[1],
		PlatformTag: parts[len(parts)-1],
		AbiTag:      parts[len(parts)-2],
		PythonTag:   parts[len(parts)-3],
	}
	if len(parts) == 6 {
		out.Build = parts[2]
	}
	return out, nil
}

// DistInfoName returns the name of the .dist-info directory the wheel installs.
func (w WheelFilename) DistInfoName() string {
	return DistInfoDirName(w.Name, w.Version)
}

// DistInfoDirName returns "{name}-{version}.dist-info" with the name escaped the way wheels do.
func DistInfoDirName(name PackageName, version string) string {
	return strings.ReplaceAll(name.String(), "-", "_") + "-" + version + ".dist-info"
}
