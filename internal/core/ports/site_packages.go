package ports

import (
	"context"

	"go.trai.ch/pixi/internal/core/domain"
)

//go:generate mockgen -source=site_packages.go -destination=mocks/mock_site_packages.go -package=mocks

// SitePackages inspects and mutates the wheels installed in a site-packages directory.
type SitePackages interface {
	// Installed enumerates the distributions found in sitePackages.
	Installed(ctx context.Context, sitePackages string) ([]domain.InstalledDist, error)
	// Uninstall removes the files listed in the distribution's RECORD.
	// It fails with domain.ErrMissingRecord or domain.ErrMissingTopLevel when the metadata is incomplete.
	Uninstall(ctx context.Context, sitePackages string, dist domain.InstalledDist) error
	// RemoveAll forcibly removes a directory tree.
	RemoveAll(path string) error
	// Install unpacks a wheel archive into the prefix and records it as installed by this tool.
	Install(ctx context.Context, env *domain.BuildEnvironment, wheel string, dist domain.RequiredDist) error
	// WheelFiles lists the prefix relative paths a wheel archive installs when sitePackages is
	// its prefix relative site-packages directory.
	WheelFiles(wheel, sitePackages string) ([]string, error)
}

// WheelPreparer turns a required distribution into a local wheel archive.
type WheelPreparer interface {
	// Prepare downloads or builds the distribution and returns the wheel archive path.
	// build is the environment source builds run in.
	Prepare(ctx context.Context, dist domain.RequiredDist, build *domain.BuildEnvironment) (string, error)
}

// WheelCache locates previously prepared wheel archives.
type WheelCache interface {
	// Lookup returns the cached archive of a locked package.
	Lookup(pkg domain.WheelPackageData) (string, bool)
}

// PrefixLocker serializes writes to one prefix across goroutines and processes.
type PrefixLocker interface {
	// Lock blocks until the prefix is exclusively held or ctx ends. The returned function releases it.
	Lock(ctx context.Context, prefix string) (func(), error)
}
