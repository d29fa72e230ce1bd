package ports

import (
	"context"

	"go.trai.ch/pixi/internal/core/domain"
)

//go:generate mockgen -source=prefix.go -destination=mocks/mock_prefix.go -package=mocks

// PrefixInstaller brings a prefix in line with a locked binary package set.
type PrefixInstaller interface {
	// Update installs and removes binary packages until the prefix holds exactly required.
	Update(
		ctx context.Context,
		prefix, group string,
		platform domain.Platform,
		required []domain.LockedRecord,
	) (*domain.CondaPrefixUpdated, error)
}

// PackageFetcher makes binary package archives available as extracted directories.
type PackageFetcher interface {
	// Fetch downloads and extracts the package, returning the extracted directory.
	Fetch(ctx context.Context, record *domain.BinaryRecord) (string, error)
}

// PrefixLinker links extracted binary packages into a prefix and records them in conda-meta.
type PrefixLinker interface {
	// Installed returns the records found in the prefix's conda-meta directory.
	Installed(prefix string) ([]*domain.BinaryRecord, error)
	// Files returns the prefix-relative paths installed by each package, keyed by package name.
	Files(prefix string) (map[string][]string, error)
	// Link copies an extracted package into the prefix and writes its conda-meta entry.
	Link(ctx context.Context, prefix, extracted string, record *domain.BinaryRecord) error
	// Unlink removes the files of an installed package and its conda-meta entry.
	Unlink(ctx context.Context, prefix string, record *domain.BinaryRecord) error
}

// SourceBuilder turns a source record into a binary package.
type SourceBuilder interface {
	// Build builds the source package for the platform and returns the built record.
	Build(ctx context.Context, record *domain.SourceRecord, platform domain.Platform) (*domain.BinaryRecord, error)
}

// InterpreterQuerier inspects the interpreter of a prefix.
type InterpreterQuerier interface {
	// Query runs the interpreter and returns its actual version and site-packages location.
	Query(ctx context.Context, prefix string, expected domain.PythonInfo) (domain.PythonInfo, error)
}

// EnvironmentMarker records and reads the environment file of an installed prefix.
type EnvironmentMarker interface {
	// Read returns the file recorded in the prefix, or nil when none is recorded.
	Read(prefix string) (*domain.EnvironmentFile, error)
	// Write records the file in the prefix.
	Write(prefix string, file domain.EnvironmentFile) error
}
