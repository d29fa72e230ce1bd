package domain

import (
	"maps"
	"slices"
)

// Target is one environment and platform pair.
type Target struct {
	Environment EnvironmentIdx
	Platform    Platform
}

// DisregardLockedContent marks environments whose whole locked content must not be reused.
type DisregardLockedContent struct {
	Conda map[EnvironmentIdx]struct{}
	Pypi  map[EnvironmentIdx]struct{}
}

// OutdatedEnvironments is the set of targets that must be solved again, per ecosystem.
type OutdatedEnvironments struct {
	Conda                  map[EnvironmentIdx]PlatformSet
	Pypi                   map[EnvironmentIdx]PlatformSet
	DisregardLockedContent DisregardLockedContent

	// AdditionalPlatforms are locked platforms the manifest no longer declares.
	AdditionalPlatforms map[EnvironmentIdx]PlatformSet
	// RemovedEnvironments are locked environments the manifest no longer declares.
	RemovedEnvironments []string
}

// NewOutdatedEnvironments returns an empty result.
func NewOutdatedEnvironments() *OutdatedEnvironments {
	return &OutdatedEnvironments{
		Conda: make(map[EnvironmentIdx]PlatformSet),
		Pypi:  make(map[EnvironmentIdx]PlatformSet),
		DisregardLockedContent: DisregardLockedContent{
			Conda: make(map[EnvironmentIdx]struct{}),
			Pypi:  make(map[EnvironmentIdx]struct{}),
		},
		AdditionalPlatforms: make(map[EnvironmentIdx]PlatformSet),
	}
}

// MarkConda marks a target stale for the binary ecosystem.
func (o *OutdatedEnvironments) MarkConda(env EnvironmentIdx, p Platform) {
	markTarget(o.Conda, env, p)
}

// MarkPypi marks a target stale for the wheel ecosystem.
func (o *OutdatedEnvironments) MarkPypi(env EnvironmentIdx, p Platform) {
	markTarget(o.Pypi, env, p)
}

func markTarget(m map[EnvironmentIdx]PlatformSet, env EnvironmentIdx, p Platform) {
	set, ok := m[env]
	if !ok {
		set = NewPlatformSet()
		m[env] = set
	}
	set.Add(p)
}

// IsCondaOutdated reports whether the target needs a binary solve.
func (o *OutdatedEnvironments) IsCondaOutdated(env EnvironmentIdx, p Platform) bool {
	return o.Conda[env].Has(p)
}

// IsPypiOutdated reports whether the target needs a wheel solve.
func (o *OutdatedEnvironments) IsPypiOutdated(env EnvironmentIdx, p Platform) bool {
	return o.Pypi[env].Has(p)
}

// IsOutdated reports whether the target needs any solve.
func (o *OutdatedEnvironments) IsOutdated(env EnvironmentIdx, p Platform) bool {
	return o.IsCondaOutdated(env, p) || o.IsPypiOutdated(env, p)
}

// DisregardConda reports whether the locked binary content of env must be ignored.
func (o *OutdatedEnvironments) DisregardConda(env EnvironmentIdx) bool {
	_, ok := o.DisregardLockedContent.Conda[env]
	return ok
}

// DisregardPypi reports whether the locked wheel content of env must be ignored.
func (o *OutdatedEnvironments) DisregardPypi(env EnvironmentIdx) bool {
	_, ok := o.DisregardLockedContent.Pypi[env]
	return ok
}

// Targets returns every stale target in a stable order.
func (o *OutdatedEnvironments) Targets() []Target {
	seen := make(map[Target]struct{})
	for _, m := range []map[EnvironmentIdx]PlatformSet{o.Conda, o.Pypi} {
		for env, platforms := range m {
			for p := range platforms {
				seen[Target{Environment: env, Platform: p}] = struct{}{}
			}
		}
	}
	out := slices.Collect(maps.Keys(seen))
	slices.SortFunc(out, compareTargets)
	return out
}

func compareTargets(a, b Target) int {
	if a.Environment != b.Environment {
		return int(a.Environment) - int(b.Environment)
	}
	switch {
	case a.Platform < b.Platform:
		return -1
	case a.Platform > b.Platform:
		return 1
	default:
		return 0
	}
}

// IsEmpty reports whether the lock file is up to date.
func (o *OutdatedEnvironments) IsEmpty() bool {
	return !hasTargets(o.Conda) && !hasTargets(o.Pypi) &&
		!hasTargets(o.AdditionalPlatforms) && len(o.RemovedEnvironments) == 0
}

func hasTargets(m map[EnvironmentIdx]PlatformSet) bool {
	for _, set := range m {
		if len(set) > 0 {
			return true
		}
	}
	return false
}
