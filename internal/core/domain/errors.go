package domain

import "go.trai.ch/zerr"

var (
	// ErrManifestNotFound is returned when no manifest can be found walking up from the working directory.
	ErrManifestNotFound = zerr.New("could not find pixi.toml")

	// ErrManifestReadFailed is returned when the manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestParseFailed is returned when the manifest file cannot be decoded.
	ErrManifestParseFailed = zerr.New("failed to parse manifest")

	// ErrManifestInvalid is returned when the decoded manifest fails validation.
	ErrManifestInvalid = zerr.New("invalid manifest")

	// ErrUnknownFeature is returned when an environment references a feature that is not declared.
	ErrUnknownFeature = zerr.New("environment references an unknown feature")

	// ErrDuplicateEnvironment is returned when two environments share a name.
	ErrDuplicateEnvironment = zerr.New("duplicate environment name")

	// ErrInvalidEnvironmentName is returned when an environment name contains invalid characters.
	ErrInvalidEnvironmentName = zerr.New("environment name can only contain lowercase alphanumeric characters and hyphens")

	// ErrEnvironmentNotFound is returned when a requested environment is not declared in the manifest.
	ErrEnvironmentNotFound = zerr.New("environment not found")

	// ErrInvalidPlatform is returned when a platform string is not a known platform.
	ErrInvalidPlatform = zerr.New("unknown platform")

	// ErrInvalidMatchSpec is returned when a binary package spec cannot be parsed.
	ErrInvalidMatchSpec = zerr.New("invalid match spec")

	// ErrInvalidVersionSpec is returned when a version constraint cannot be parsed.
	ErrInvalidVersionSpec = zerr.New("invalid version spec")

	// ErrInvalidRequirement is returned when a PyPI requirement cannot be parsed.
	ErrInvalidRequirement = zerr.New("invalid pypi requirement")

	// ErrInvalidMarker is returned when a PEP 508 environment marker cannot be parsed.
	ErrInvalidMarker = zerr.New("invalid environment marker")

	// ErrInvalidWheelFilename is returned when a wheel file name does not follow the wheel naming convention.
	ErrInvalidWheelFilename = zerr.New("invalid wheel filename")

	// ErrDuplicateRecord is returned when a locked package set contains the same package twice.
	ErrDuplicateRecord = zerr.New("duplicate locked package")

	// ErrLockFileReadFailed is returned when the lock file cannot be read.
	ErrLockFileReadFailed = zerr.New("failed to read lock file")

	// ErrLockFileParseFailed is returned when the lock file cannot be decoded.
	ErrLockFileParseFailed = zerr.New("failed to parse lock file")

	// ErrLockFileVersionTooNew is returned when the lock file was written by a newer version of pixi.
	ErrLockFileVersionTooNew = zerr.New("lock file version is newer than supported, please update pixi")

	// ErrLockFileWriteFailed is returned when the lock file cannot be persisted.
	ErrLockFileWriteFailed = zerr.New("failed to write lock file")

	// ErrLockFileOutdated is returned in locked mode when the lock file does not satisfy the manifest.
	ErrLockFileOutdated = zerr.New("lock file is not up-to-date with the manifest")

	// ErrLockFileMissing is returned in frozen or locked mode when no lock file exists.
	ErrLockFileMissing = zerr.New("lock file does not exist")

	// ErrBinarySolveFailed is returned when the binary package solver cannot find a solution.
	ErrBinarySolveFailed = zerr.New("failed to solve the conda requirements")

	// ErrWheelSolveFailed is returned when the wheel solver cannot find a solution.
	ErrWheelSolveFailed = zerr.New("failed to solve the pypi requirements")

	// ErrSolverNotConfigured is returned when no solver command is configured for an ecosystem.
	ErrSolverNotConfigured = zerr.New("no solver configured")

	// ErrSolverProtocol is returned when a solver returns an unreadable response.
	ErrSolverProtocol = zerr.New("solver returned an invalid response")

	// ErrTargetFailed is returned when resolving one environment and platform fails.
	ErrTargetFailed = zerr.New("failed to update the lock file for target")

	// ErrSolveGroupFailed is returned for every member of a solve group when a sibling target failed.
	ErrSolveGroupFailed = zerr.New("another environment in the solve group failed to resolve")

	// ErrNoBuildPlatform is returned when a source build is needed for a platform that cannot run on this host.
	ErrNoBuildPlatform = zerr.New("building from source requires the environment to support the current platform")

	// ErrInstallationRequiredButDisallowed is returned when a source build needs an interpreter but installs are forbidden.
	ErrInstallationRequiredButDisallowed = zerr.New("a python interpreter is required to build a source package, but installing is disallowed")

	// ErrPythonMissing is returned when a source build needs an interpreter but the binary solve contains none.
	ErrPythonMissing = zerr.New("no python interpreter found in the environment, add python to the dependencies")

	// ErrInterpreterQueryFailed is returned when the interpreter of a prefix cannot be inspected.
	ErrInterpreterQueryFailed = zerr.New("failed to query python interpreter")

	// ErrSourceRecordNotBuilt is returned when a source record reaches the installer without a builder.
	ErrSourceRecordNotBuilt = zerr.New("source package must be built before it can be installed")

	// ErrPackageFetchFailed is returned when a binary package archive cannot be downloaded.
	ErrPackageFetchFailed = zerr.New("failed to fetch package")

	// ErrChecksumMismatch is returned when a downloaded archive does not match the locked hash.
	ErrChecksumMismatch = zerr.New("package checksum mismatch")

	// ErrExtractFailed is returned when a package archive cannot be extracted.
	ErrExtractFailed = zerr.New("failed to extract package")

	// ErrLinkFailed is returned when a package cannot be linked into a prefix.
	ErrLinkFailed = zerr.New("failed to link package")

	// ErrUnlinkFailed is returned when a package cannot be removed from a prefix.
	ErrUnlinkFailed = zerr.New("failed to unlink package")

	// ErrPrefixReadFailed is returned when the installed packages of a prefix cannot be read.
	ErrPrefixReadFailed = zerr.New("failed to read installed packages")

	// ErrPrefixLockFailed is returned when the exclusive prefix lock cannot be acquired.
	ErrPrefixLockFailed = zerr.New("failed to lock prefix")

	// ErrSitePackagesReadFailed is returned when installed distributions cannot be enumerated.
	ErrSitePackagesReadFailed = zerr.New("failed to read installed distributions")

	// ErrMissingRecord is returned when an installed distribution has no RECORD file.
	ErrMissingRecord = zerr.New("installed distribution has no RECORD file")

	// ErrMissingTopLevel is returned when an installed egg-style distribution has no top_level.txt.
	ErrMissingTopLevel = zerr.New("installed distribution has no top_level.txt file")

	// ErrUnsafeRemoval is returned when a forced removal targets a path outside site-packages.
	ErrUnsafeRemoval = zerr.New("refusing to remove a directory outside of site-packages")

	// ErrUninstallFailed is returned when a distribution cannot be uninstalled.
	ErrUninstallFailed = zerr.New("failed to uninstall distribution")

	// ErrWheelBuildFailed is returned when a source distribution cannot be built into a wheel.
	ErrWheelBuildFailed = zerr.New("failed to build wheel")

	// ErrWheelInstallFailed is returned when a wheel cannot be installed.
	ErrWheelInstallFailed = zerr.New("failed to install wheel")

	// ErrSourceTreeHashFailed is returned when the hash of a local source tree cannot be computed.
	ErrSourceTreeHashFailed = zerr.New("failed to determine source tree hash")

	// ErrCacheMiss is returned when a requested item is not found in the cache.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrCacheWriteFailed is returned when an item cannot be stored in the cache.
	ErrCacheWriteFailed = zerr.New("failed to write to package cache")

	// ErrCommandFailed is returned when an external command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")
)
