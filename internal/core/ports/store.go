package ports

import (
	"context"

	"go.trai.ch/pixi/internal/core/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// ManifestLoader loads the project manifest.
type ManifestLoader interface {
	// Load discovers the manifest from cwd, or reads path when it is set.
	Load(cwd, path string) (*domain.Manifest, error)
}

// LockFileStore reads and writes the lock file.
type LockFileStore interface {
	// Exists reports whether a lock file exists at path.
	Exists(path string) bool
	// Load reads the lock file at path. A missing file yields an empty lock file.
	Load(path string) (*domain.LockFile, error)
	// WriteToDisk replaces the lock file at path atomically.
	WriteToDisk(path string, lf *domain.LockFile) error
}

// SourceTreeHasher computes the hash of a local source tree.
type SourceTreeHasher interface {
	// HashSourceTree returns a hash over the build-relevant files of the tree rooted at path.
	HashSourceTree(path string) (string, error)
}

// PackageCache is a content-keyed directory cache shared by all targets.
type PackageCache interface {
	// Get returns the cached directory for key.
	Get(key string) (string, bool)
	// Put fills a fresh directory with fill and publishes it under key.
	// Concurrent calls for the same key fill it once.
	Put(ctx context.Context, key string, fill func(dir string) error) (string, error)
	// Root returns the cache directory.
	Root() string
}
