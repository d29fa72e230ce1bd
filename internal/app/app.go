// Package app implements the application layer for pixi.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/pixi/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/pixi/internal/build"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/engine/scheduler"
	"go.trai.ch/pixi/internal/install/pypi"
	"go.trai.ch/pixi/internal/lockfile/outdated"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// LockUpdater solves the outdated targets of a lock file.
type LockUpdater interface {
	Update(ctx context.Context, uc scheduler.UpdateContext) (*scheduler.UpdateResult, error)
}

// WheelInstaller brings the site-packages of a prefix in line with its locked wheels.
type WheelInstaller interface {
	Update(ctx context.Context, req pypi.UpdateRequest) error
}

// App represents the main application logic.
type App struct {
	manifests ports.ManifestLoader
	locks     ports.LockFileStore
	updater   LockUpdater
	conda     ports.PrefixInstaller
	wheels    WheelInstaller
	marker    ports.EnvironmentMarker
	hasher    ports.SourceTreeHasher
	logger    ports.Logger

	renderer  ports.Renderer
	tracer    *telemetry.OTelTracer
	recorder  *metrics.Recorder
	cacheDirs []string

	stdout   io.Writer
	cwd      string
	platform domain.Platform
}

// New creates a new App instance.
func New(
	manifests ports.ManifestLoader,
	locks ports.LockFileStore,
	updater LockUpdater,
	conda ports.PrefixInstaller,
	wheels WheelInstaller,
	marker ports.EnvironmentMarker,
	hasher ports.SourceTreeHasher,
	log ports.Logger,
) *App {
	return &App{
		manifests: manifests,
		locks:     locks,
		updater:   updater,
		conda:     conda,
		wheels:    wheels,
		marker:    marker,
		hasher:    hasher,
		logger:    log,
		stdout:    os.Stdout,
		platform:  domain.CurrentPlatform(),
	}
}

// WithReporting sets the renderer that shows progress, the tracer whose spans it receives and
// the recorder that counts them. Without it, progress is not shown.
func (a *App) WithReporting(renderer ports.Renderer, tracer *telemetry.OTelTracer, recorder *metrics.Recorder) *App {
	a.renderer = renderer
	a.tracer = tracer
	a.recorder = recorder
	return a
}

// WithCacheDirs sets the cache directories removed by Clean.
func (a *App) WithCacheDirs(dirs ...string) *App {
	a.cacheDirs = dirs
	return a
}

// WithStdout sets the writer command output goes to.
func (a *App) WithStdout(w io.Writer) *App {
	a.stdout = w
	return a
}

// WithWorkingDir sets the directory the manifest is searched from. It defaults to the
// process working directory.
func (a *App) WithWorkingDir(dir string) *App {
	a.cwd = dir
	return a
}

// WithPlatform overrides the platform environments are installed for.
func (a *App) WithPlatform(p domain.Platform) *App {
	a.platform = p
	return a
}

// LockOptions configures how a command treats the lock file.
type LockOptions struct {
	ManifestPath string
	Usage        domain.LockFileUsage
	// NoInstall forbids installing prefixes while solving.
	NoInstall bool
	// MetricsFile receives the step metrics of the run when set.
	MetricsFile string
}

// Lock brings the lock file in line with the manifest. Targets that fail to solve keep their
// previous content, and the error of every failed target is returned after the lock file
// was written.
func (a *App) Lock(ctx context.Context, opts LockOptions) error {
	manifest, err := a.loadManifest(opts.ManifestPath)
	if err != nil {
		return err
	}

	return a.report(ctx, opts.MetricsFile, func(ctx context.Context) error {
		_, err := a.lock(ctx, manifest, opts)
		return err
	})
}

// InstallOptions configures Install.
type InstallOptions struct {
	LockOptions
	// Environments to install. Empty installs the default environment.
	Environments []string
}

// Install updates the lock file and installs the locked packages of the selected environments
// for the current platform. A prefix whose locked content did not change since its last
// installation is skipped.
func (a *App) Install(ctx context.Context, opts InstallOptions) error {
	manifest, err := a.loadManifest(opts.ManifestPath)
	if err != nil {
		return err
	}

	names := opts.Environments
	if len(names) == 0 {
		names = []string{domain.DefaultEnvironmentName}
	}
	envs := make([]domain.EnvironmentIdx, 0, len(names))
	for _, name := range names {
		idx, ok := manifest.EnvironmentByName(name)
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrEnvironmentNotFound, name), "manifest", manifest.Path)
		}
		envs = append(envs, idx)
	}

	return a.report(ctx, opts.MetricsFile, func(ctx context.Context) error {
		lockFile, err := a.lock(ctx, manifest, opts.LockOptions)
		if err != nil {
			return err
		}
		for _, idx := range envs {
			if err := a.installEnvironment(ctx, manifest, lockFile, idx); err != nil {
				return err
			}
		}
		return nil
	})
}

// Status prints the targets whose locked content no longer satisfies the manifest.
// It never modifies the lock file.
func (a *App) Status(ctx context.Context, manifestPath string) error {
	manifest, err := a.loadManifest(manifestPath)
	if err != nil {
		return err
	}

	lockFile, err := a.locks.Load(domain.LockFilePath(manifest.Root))
	if err != nil {
		return err
	}

	stale, err := outdated.Analyze(ctx, manifest, lockFile, outdated.Options{Logger: a.logger, Hasher: a.hasher})
	if err != nil {
		return err
	}

	if stale.IsEmpty() {
		_, _ = fmt.Fprintln(a.stdout, "lock file is up-to-date")
		return nil
	}
	for _, t := range stale.Targets() {
		_, _ = fmt.Fprintf(a.stdout, "%s %s: %s\n",
			manifest.Environment(t.Environment).Name, t.Platform, ecosystems(stale, t))
	}
	for _, idx := range manifest.EnvironmentIndices() {
		for _, p := range stale.AdditionalPlatforms[idx].Sorted() {
			_, _ = fmt.Fprintf(a.stdout, "%s %s: no longer declared\n", manifest.Environment(idx).Name, p)
		}
	}
	for _, name := range stale.RemovedEnvironments {
		_, _ = fmt.Fprintf(a.stdout, "%s: no longer declared\n", name)
	}
	return nil
}

func ecosystems(stale *domain.OutdatedEnvironments, t domain.Target) string {
	conda := stale.IsCondaOutdated(t.Environment, t.Platform)
	pypi := stale.IsPypiOutdated(t.Environment, t.Platform)
	switch {
	case conda && pypi:
		return "conda, pypi"
	case conda:
		return "conda"
	default:
		return "pypi"
	}
}

// CleanOptions configures Clean.
type CleanOptions struct {
	ManifestPath string
	// Cache also removes the package and wheel caches.
	Cache bool
}

// Clean removes the installed environments of the project and optionally the caches.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	manifest, err := a.loadManifest(opts.ManifestPath)
	if err != nil {
		return err
	}

	var errs error
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name), "path", path)
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove "+name), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	pixiDir := domain.DefaultPixiPath(manifest.Root)
	remove(filepath.Join(pixiDir, domain.EnvsDirName), "environments")
	remove(filepath.Join(pixiDir, domain.SolveGroupEnvsDirName), "solve group environments")

	if opts.Cache {
		for _, dir := range a.cacheDirs {
			remove(dir, "cache")
		}
	}

	return errs
}

func (a *App) loadManifest(path string) (*domain.Manifest, error) {
	cwd := a.cwd
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			return nil, zerr.Wrap(err, "failed to determine working directory")
		}
	}

	manifest, err := a.manifests.Load(cwd, path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load manifest")
	}
	return manifest, nil
}

// lock returns a lock file that satisfies the manifest, updating it on disk when the usage
// allows it.
func (a *App) lock(ctx context.Context, manifest *domain.Manifest, opts LockOptions) (*domain.LockFile, error) {
	path := domain.LockFilePath(manifest.Root)
	if opts.Usage != domain.LockFileUpdate && !a.locks.Exists(path) {
		err := zerr.With(zerr.Wrap(domain.ErrLockFileMissing, "run without --locked or --frozen to create it"), "path", path)
		return nil, zerr.With(err, "mode", opts.Usage.String())
	}

	lockFile, err := a.locks.Load(path)
	if err != nil {
		return nil, err
	}
	if !opts.Usage.ShouldCheck() {
		return lockFile, nil
	}

	stale, err := outdated.Analyze(ctx, manifest, lockFile, outdated.Options{Logger: a.logger, Hasher: a.hasher})
	if err != nil {
		return nil, err
	}
	if stale.IsEmpty() {
		a.logger.Debug("lock file is up-to-date", "path", path)
		return lockFile, nil
	}
	if !opts.Usage.AllowsUpdate() {
		err := zerr.With(zerr.Wrap(domain.ErrLockFileOutdated, "run without --locked to update it"), "path", path)
		return nil, zerr.With(err, "targets", len(stale.Targets()))
	}

	result, err := a.updater.Update(ctx, scheduler.UpdateContext{
		Manifest:     manifest,
		LockFile:     lockFile,
		Outdated:     stale,
		NoInstall:    opts.NoInstall,
		HostPlatform: a.platform,
	})
	if err != nil {
		return nil, err
	}

	if err := a.locks.WriteToDisk(path, result.LockFile); err != nil {
		return nil, err
	}
	a.logger.Info("updated lock file", "path", path)

	if result.Failures != nil {
		return nil, result.Failures
	}
	return result.LockFile, nil
}

func (a *App) installEnvironment(
	ctx context.Context,
	manifest *domain.Manifest,
	lockFile *domain.LockFile,
	idx domain.EnvironmentIdx,
) error {
	env := manifest.Environment(idx)
	if !env.SupportsPlatform(a.platform) {
		err := zerr.With(zerr.New("environment does not support the current platform"), "environment", env.Name)
		return zerr.With(err, "platform", a.platform.String())
	}

	locked, ok := lockFile.Platform(env.Name, a.platform)
	if !ok {
		locked = &domain.LockedPlatform{}
	}

	prefix := domain.EnvironmentPrefix(manifest.Root, env.Name)
	hash := domain.LockedEnvironmentHash(locked)
	file, err := a.marker.Read(prefix)
	if err != nil {
		return err
	}
	if file != nil && file.LockHash == hash && !locked.NeedsReinstall() {
		a.logger.Info("environment is up-to-date", "environment", env.Name)
		return nil
	}

	updated, err := a.conda.Update(ctx, prefix, manifest.SolveGroupName(idx), a.platform, locked.Binary)
	if err != nil {
		return zerr.With(err, "environment", env.Name)
	}

	err = a.wheels.Update(ctx, pypi.UpdateRequest{
		Prefix:           updated,
		Wheels:           locked.Wheels,
		Root:             manifest.Root,
		NoBuildIsolation: env.NoBuildIsolation,
	})
	if err != nil {
		return zerr.With(err, "environment", env.Name)
	}

	err = a.marker.Write(prefix, domain.EnvironmentFile{
		ManifestPath:    manifest.Path,
		EnvironmentName: env.Name,
		PixiVersion:     build.Version,
		LockHash:        hash,
	})
	if err != nil {
		return err
	}
	a.logger.Info("installed environment", "environment", env.Name, "prefix", prefix)
	return nil
}

// report runs work while its progress is rendered, then writes the metrics file.
func (a *App) report(ctx context.Context, metricsFile string, work func(context.Context) error) error {
	if a.renderer == nil || a.tracer == nil {
		return work(ctx)
	}

	renderer := a.renderer
	if a.recorder != nil {
		renderer = a.recorder.Wrap(renderer)
	}
	detach := a.tracer.Attach(renderer)

	g, gctx := errgroup.WithContext(ctx)

	// Renderer Routine
	g.Go(func() error {
		if err := renderer.Start(gctx); err != nil {
			return err
		}
		// Wait blocks until the renderer has terminated.
		return renderer.Wait()
	})

	// Work Routine
	g.Go(func() error {
		defer func() {
			_ = detach(context.WithoutCancel(gctx))
			_ = renderer.Stop()
		}()
		return work(gctx)
	})

	err := g.Wait()
	if metricsFile != "" && a.recorder != nil {
		err = errors.Join(err, a.recorder.WriteToTextfile(metricsFile))
	}
	return err
}
