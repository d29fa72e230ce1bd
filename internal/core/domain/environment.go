package domain

import (
	"slices"
)

// EnvironmentIdx identifies an environment within a Manifest.
type EnvironmentIdx int

// SolveGroupIdx identifies a solve group within a Manifest.
type SolveGroupIdx int

// NoSolveGroup marks an environment that is not part of a solve group.
const NoSolveGroup SolveGroupIdx = -1

// PypiIndexes is the wheel index configuration of an environment.
type PypiIndexes struct {
	IndexURL       string
	ExtraIndexURLs []string
	FindLinks      []string
}

// IsZero reports whether no index was configured.
func (i PypiIndexes) IsZero() bool {
	return i.IndexURL == "" && len(i.ExtraIndexURLs) == 0 && len(i.FindLinks) == 0
}

// Equal reports whether two index configurations are identical.
func (i PypiIndexes) Equal(other PypiIndexes) bool {
	return i.IndexURL == other.IndexURL &&
		slices.Equal(i.ExtraIndexURLs, other.ExtraIndexURLs) &&
		slices.Equal(i.FindLinks, other.FindLinks)
}

// DefaultPypiIndexURL is used when an environment declares wheel requirements but no index.
const DefaultPypiIndexURL = "https://pypi.org/simple"

// VirtualPackage is a system requirement such as "__glibc 2.28".
type VirtualPackage struct {
	Name    string
	Version string
}

// Requirements holds the merged requirements of an environment for one platform.
type Requirements struct {
	Binary []MatchSpec
	Pypi   []PypiRequirement
}

// Environment is a named combination of features solved for a set of platforms.
type Environment struct {
	Name       string
	Features   []string
	Platforms  []Platform
	SolveGroup SolveGroupIdx
	Channels   []string
	Indexes    PypiIndexes
	// Dependencies holds the merged requirements per platform.
	Dependencies    map[Platform]Requirements
	VirtualPackages []VirtualPackage
	// NoBuildIsolation names wheel packages that must be built without isolation.
	NoBuildIsolation []PackageName
}

// RequirementsFor returns the merged requirements of the environment for p.
func (e *Environment) RequirementsFor(p Platform) Requirements {
	return e.Dependencies[p]
}

// HasPypiDependencies reports whether any platform of the environment has wheel requirements.
func (e *Environment) HasPypiDependencies() bool {
	for _, reqs := range e.Dependencies {
		if len(reqs.Pypi) > 0 {
			return true
		}
	}
	return false
}

// SupportsPlatform reports whether p is declared for the environment.
func (e *Environment) SupportsPlatform(p Platform) bool {
	return slices.Contains(e.Platforms, p)
}

// BuildIsolated reports whether a wheel package may be built in an isolated environment.
func (e *Environment) BuildIsolated(name PackageName) bool {
	return !slices.Contains(e.NoBuildIsolation, name)
}

// SolveGroup is a set of environments that must be solved together.
type SolveGroup struct {
	Name         string
	Environments []EnvironmentIdx
}

// Manifest is the immutable project description consumed by the engine.
type Manifest struct {
	Root         string
	Name         string
	Path         string
	Environments []*Environment
	SolveGroups  []SolveGroup
}

// Environment resolves an environment index.
func (m *Manifest) Environment(idx EnvironmentIdx) *Environment {
	return m.Environments[idx]
}

// SolveGroup resolves a solve group index.
func (m *Manifest) SolveGroup(idx SolveGroupIdx) *SolveGroup {
	return &m.SolveGroups[idx]
}

// EnvironmentByName returns the index of the named environment.
func (m *Manifest) EnvironmentByName(name string) (EnvironmentIdx, bool) {
	for i, env := range m.Environments {
		if env.Name == name {
			return EnvironmentIdx(i), true
		}
	}
	return 0, false
}

// EnvironmentIndices returns the indices of all environments in declaration order.
func (m *Manifest) EnvironmentIndices() []EnvironmentIdx {
	out := make([]EnvironmentIdx, len(m.Environments))
	for i := range m.Environments {
		out[i] = EnvironmentIdx(i)
	}
	return out
}

// GroupMembers returns the environments solved together with idx, including idx itself.
// An environment without a solve group is its own single-member group.
func (m *Manifest) GroupMembers(idx EnvironmentIdx) []EnvironmentIdx {
	group := m.Environment(idx).SolveGroup
	if group == NoSolveGroup {
		return []EnvironmentIdx{idx}
	}
	return m.SolveGroup(group).Environments
}

// SolveGroupName returns the name used for the prefix of an environment's solve group,
// falling back to the environment name.
func (m *Manifest) SolveGroupName(idx EnvironmentIdx) string {
	env := m.Environment(idx)
	if env.SolveGroup == NoSolveGroup {
		return env.Name
	}
	return m.SolveGroup(env.SolveGroup).Name
}
