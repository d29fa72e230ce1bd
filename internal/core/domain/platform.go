package domain

import (
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Platform is a conda subdir such as "linux-64" or "osx-arm64".
type Platform string

// Known platforms.
const (
	PlatformNoArch       Platform = "noarch"
	PlatformLinux32      Platform = "linux-32"
	PlatformLinux64      Platform = "linux-64"
	PlatformLinuxAarch64 Platform = "linux-aarch64"
	PlatformLinuxPpc64le Platform = "linux-ppc64le"
	PlatformLinuxS390x   Platform = "linux-s390x"
	PlatformOsx64        Platform = "osx-64"
	PlatformOsxArm64     Platform = "osx-arm64"
	PlatformWin32        Platform = "win-32"
	PlatformWin64        Platform = "win-64"
	PlatformWinArm64     Platform = "win-arm64"
)

var knownPlatforms = []Platform{
	PlatformNoArch,
	PlatformLinux32,
	PlatformLinux64,
	PlatformLinuxAarch64,
	PlatformLinuxPpc64le,
	PlatformLinuxS390x,
	PlatformOsx64,
	PlatformOsxArm64,
	PlatformWin32,
	PlatformWin64,
	PlatformWinArm64,
}

// ParsePlatform validates a platform string.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.TrimSpace(s))
	if !slices.Contains(knownPlatforms, p) {
		return "", zerr.With(ErrInvalidPlatform, "platform", s)
	}
	return p, nil
}

// CurrentPlatform returns the platform of the running host.
func CurrentPlatform() Platform {
	return platformFor(runtime.GOOS, runtime.GOARCH)
}

func platformFor(goos, goarch string) Platform {
	switch goos {
	case "darwin":
		if goarch == "arm64" {
			return PlatformOsxArm64
		}
		return PlatformOsx64
	case "windows":
		switch goarch {
		case "arm64":
			return PlatformWinArm64
		case "386":
			return PlatformWin32
		default:
			return PlatformWin64
		}
	default:
		switch goarch {
		case "arm64":
			return PlatformLinuxAarch64
		case "ppc64le":
			return PlatformLinuxPpc64le
		case "s390x":
			return PlatformLinuxS390x
		case "386":
			return PlatformLinux32
		default:
			return PlatformLinux64
		}
	}
}

// OS returns the operating system family of the platform ("linux", "osx", "win" or "").
func (p Platform) OS() string {
	os, _, found := strings.Cut(string(p), "-")
	if !found {
		return ""
	}
	return os
}

// Arch returns the architecture part of the platform.
func (p Platform) Arch() string {
	_, arch, _ := strings.Cut(string(p), "-")
	return arch
}

// IsWindows reports whether the platform is a Windows platform.
func (p Platform) IsWindows() bool {
	return p.OS() == "win"
}

// IsUnix reports whether the platform is a unix platform.
func (p Platform) IsUnix() bool {
	os := p.OS()
	return os == "linux" || os == "osx"
}

func (p Platform) String() string {
	return string(p)
}

// PlatformSet is a set of platforms.
type PlatformSet map[Platform]struct{}

// NewPlatformSet creates a set holding the given platforms.
func NewPlatformSet(platforms ...Platform) PlatformSet {
	s := make(PlatformSet, len(platforms))
	for _, p := range platforms {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p into the set.
func (s PlatformSet) Add(p Platform) {
	s[p] = struct{}{}
}

// Has reports whether p is in the set.
func (s PlatformSet) Has(p Platform) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the platforms in lexical order.
func (s PlatformSet) Sorted() []Platform {
	out := make([]Platform, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
