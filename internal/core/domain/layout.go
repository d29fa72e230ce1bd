package domain

import "path/filepath"

const (
	// PixiDirName is the name of the internal workspace directory.
	PixiDirName = ".pixi"

	// EnvsDirName is the name of the directory holding one prefix per environment.
	EnvsDirName = "envs"

	// SolveGroupEnvsDirName is the name of the directory holding throwaway solve group prefixes.
	SolveGroupEnvsDirName = "solve-group-envs"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// PkgsDirName is the name of the binary package cache directory.
	PkgsDirName = "pkgs"

	// WheelsDirName is the name of the wheel cache directory.
	WheelsDirName = "wheels"

	// ManifestFileName is the name of the project manifest.
	ManifestFileName = "pixi.toml"

	// LockFileName is the name of the lock file next to the manifest.
	LockFileName = "pixi.lock"

	// CondaMetaDirName is the directory inside a prefix that records installed binary packages.
	CondaMetaDirName = "conda-meta"

	// EnvironmentFileName is the file inside conda-meta recording the locked environment hash.
	EnvironmentFileName = "pixi"

	// PrefixLockFileName is the file used to serialize writes to a prefix's site-packages.
	PrefixLockFileName = ".pixi-lock"

	// DefaultEnvironmentName is the name of the implicit environment.
	DefaultEnvironmentName = "default"

	// InstallerName is recorded in the INSTALLER file of every wheel this tool installs.
	InstallerName = "pixi"

	// DebugLogFile is the name of the debug log file.
	DebugLogFile = "debug.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultPixiPath returns the workspace metadata directory under root.
func DefaultPixiPath(root string) string {
	return filepath.Join(root, PixiDirName)
}

// EnvironmentPrefix returns the installation prefix of the named environment.
// It joins .pixi, envs and the environment name.
func EnvironmentPrefix(root, env string) string {
	return filepath.Join(root, PixiDirName, EnvsDirName, env)
}

// SolveGroupPrefix returns the prefix used to materialize a solve group for source builds.
// It joins .pixi, solve-group-envs and the group name.
func SolveGroupPrefix(root, group string) string {
	return filepath.Join(root, PixiDirName, SolveGroupEnvsDirName, group)
}

// DefaultPackageCachePath returns the binary package cache directory.
// It joins .pixi, cache and pkgs.
func DefaultPackageCachePath(root string) string {
	return filepath.Join(root, PixiDirName, CacheDirName, PkgsDirName)
}

// DefaultWheelCachePath returns the wheel cache directory.
// It joins .pixi, cache and wheels.
func DefaultWheelCachePath(root string) string {
	return filepath.Join(root, PixiDirName, CacheDirName, WheelsDirName)
}

// LockFilePath returns the lock file path for a manifest rooted at root.
func LockFilePath(root string) string {
	return filepath.Join(root, LockFileName)
}

// DefaultDebugLogPath returns the default path for the debug log.
func DefaultDebugLogPath(root string) string {
	return filepath.Join(root, PixiDirName, DebugLogFile)
}
