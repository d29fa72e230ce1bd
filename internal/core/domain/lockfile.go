package domain

import "maps"

// LockFileVersion is the newest lock file format this build reads and the one it writes.
const LockFileVersion = 6

// LockFile pins the packages of every environment and platform of a manifest.
type LockFile struct {
	Version      int
	Environments map[string]*LockedEnvironment
}

// LockedEnvironment is the locked content of one environment.
type LockedEnvironment struct {
	// Channels are the binary channels the environment was solved against, in order.
	Channels []string
	// Indexes is the wheel index configuration, nil when the environment locked no wheels.
	Indexes   *PypiIndexes
	Platforms map[Platform]*LockedPlatform
}

// LockedPlatform is the locked package set of one environment and platform.
type LockedPlatform struct {
	Binary []LockedRecord
	Wheels []LockedWheel
}

// NewLockFile returns an empty lock file of the current version.
func NewLockFile() *LockFile {
	return &LockFile{
		Version:      LockFileVersion,
		Environments: make(map[string]*LockedEnvironment),
	}
}

// Environment returns the locked environment with the given name.
func (l *LockFile) Environment(name string) (*LockedEnvironment, bool) {
	if l == nil {
		return nil, false
	}
	env, ok := l.Environments[name]
	return env, ok
}

// Platform returns the locked package set of an environment and platform.
func (l *LockFile) Platform(env string, p Platform) (*LockedPlatform, bool) {
	locked, ok := l.Environment(env)
	if !ok {
		return nil, false
	}
	platform, ok := locked.Platforms[p]
	return platform, ok
}

// Clone returns a copy of the lock file that can be modified without affecting l.
// Locked package sets are shared since they are only ever replaced whole.
func (l *LockFile) Clone() *LockFile {
	out := NewLockFile()
	if l == nil {
		return out
	}
	out.Version = l.Version
	for name, env := range l.Environments {
		copied := &LockedEnvironment{
			Channels:  env.Channels,
			Indexes:   env.Indexes,
			Platforms: maps.Clone(env.Platforms),
		}
		if copied.Platforms == nil {
			copied.Platforms = make(map[Platform]*LockedPlatform)
		}
		out.Environments[name] = copied
	}
	return out
}

// EnsureEnvironment returns the named environment, creating it when absent.
func (l *LockFile) EnsureEnvironment(name string) *LockedEnvironment {
	env, ok := l.Environments[name]
	if !ok {
		env = &LockedEnvironment{Platforms: make(map[Platform]*LockedPlatform)}
		l.Environments[name] = env
	}
	return env
}

// SetPlatform replaces the locked package set of an environment and platform.
func (l *LockFile) SetPlatform(env string, p Platform, locked *LockedPlatform) {
	l.EnsureEnvironment(env).Platforms[p] = locked
}

// RemoveEnvironment drops an environment from the lock file.
func (l *LockFile) RemoveEnvironment(name string) {
	delete(l.Environments, name)
}

// RemovePlatform drops one platform of an environment from the lock file.
func (l *LockFile) RemovePlatform(env string, p Platform) {
	if locked, ok := l.Environments[env]; ok {
		delete(locked.Platforms, p)
	}
}
