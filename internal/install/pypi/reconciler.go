package pypi

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/resolve"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// UpdateRequest describes the wheels one prefix must hold.
type UpdateRequest struct {
	// Prefix is the result of the binary package update of the same prefix.
	Prefix *domain.CondaPrefixUpdated
	Wheels []domain.LockedWheel
	// Root is the project root relative wheel locations are resolved against.
	Root             string
	NoBuildIsolation []domain.PackageName
	Reinstall        []domain.PackageName
}

// Reconciler brings the site-packages of a prefix in line with a locked wheel set.
type Reconciler struct {
	site     ports.SitePackages
	preparer ports.WheelPreparer
	linker   ports.PrefixLinker
	locker   ports.PrefixLocker
	io       ports.IOLimiter
	planner  *Planner
	tracer   ports.Tracer
	logger   ports.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(
	site ports.SitePackages,
	preparer ports.WheelPreparer,
	linker ports.PrefixLinker,
	locker ports.PrefixLocker,
	io ports.IOLimiter,
	planner *Planner,
	tracer ports.Tracer,
	logger ports.Logger,
) *Reconciler {
	return &Reconciler{
		site:     site,
		preparer: preparer,
		linker:   linker,
		locker:   locker,
		io:       io,
		planner:  planner,
		tracer:   tracer,
		logger:   logger,
	}
}

// Update plans and executes the reconciliation while holding the prefix lock.
func (r *Reconciler) Update(ctx context.Context, req UpdateRequest) error {
	prefix := req.Prefix.Prefix
	unlock, err := r.locker.Lock(ctx, prefix)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPrefixLockFailed.Error()), "prefix", prefix)
	}
	defer unlock()

	status := req.Prefix.PythonStatus
	switch {
	case status.Kind == domain.PythonRemoved:
		return r.uninstallOurs(ctx, filepath.Join(prefix, status.Old.SitePackages))
	case status.Kind == domain.PythonDoesNotExist:
		if len(req.Wheels) > 0 {
			return zerr.With(domain.ErrPythonMissing, "prefix", prefix)
		}
		return nil
	case len(req.Wheels) == 0:
		return r.uninstallOurs(ctx, filepath.Join(prefix, status.New.SitePackages))
	}

	if status.LocationChanged() {
		if err := r.uninstallOurs(ctx, filepath.Join(prefix, status.Old.SitePackages)); err != nil {
			return err
		}
	}

	env, err := resolve.NewPreparedPrefix(req.Prefix).GetOrInit(ctx)
	if err != nil {
		return err
	}
	sitePackages := env.SitePackagesPath()

	installed, err := r.site.Installed(ctx, sitePackages)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSitePackagesReadFailed.Error()), "path", sitePackages)
	}

	plan, err := r.planner.Plan(installed, req.Wheels, PlanOptions{
		Root:             req.Root,
		NoBuildIsolation: req.NoBuildIsolation,
		Reinstall:        req.Reinstall,
	})
	if err != nil {
		return err
	}
	if plan.IsEmpty() {
		r.logger.Info("nothing to do", "prefix", prefix)
		return nil
	}

	r.logger.Debug("reconciling site-packages",
		"prefix", prefix,
		"cached", len(plan.Cached),
		"remote", len(plan.Remote),
		"reinstalls", len(plan.Reinstalls),
		"extraneous", len(plan.Extraneous),
		"duplicates", len(plan.Duplicates))

	return r.execute(ctx, env, plan)
}

func (r *Reconciler) execute(ctx context.Context, env *domain.BuildEnvironment, plan *domain.InstallationPlan) error {
	sitePackages := env.SitePackagesPath()

	for _, dist := range plan.Duplicates {
		if err := r.uninstall(ctx, sitePackages, dist); err != nil {
			return err
		}
	}

	removals := slices.Clone(plan.Extraneous)
	for _, re := range plan.Reinstalls {
		removals = append(removals, re.Installed)
	}
	for _, dist := range removals {
		if err := r.uninstall(ctx, sitePackages, dist); err != nil {
			return err
		}
	}

	var isolated, serial []domain.RequiredDist
	for _, dist := range plan.Remote {
		if dist.BuildIsolated {
			isolated = append(isolated, dist)
		} else {
			serial = append(serial, dist)
		}
	}

	prepared, err := r.prepareAll(ctx, env, isolated)
	if err != nil {
		return err
	}

	batch := make([]preparedWheel, 0, len(prepared)+len(plan.Cached))
	batch = append(batch, prepared...)
	for _, dist := range plan.Cached {
		batch = append(batch, preparedWheel{dist: dist, archive: dist.CachePath})
	}

	owners := r.fileOwners(env)
	clobbered := r.clobbers(env, owners, batch, nil)
	r.warnClobbers(clobbered)
	r.reportInstallerMismatch(plan.Reinstalls, clobbered)

	if err := r.installAll(ctx, env, batch); err != nil {
		return err
	}

	// Wheels built without isolation need the batch installed first, so their files are only
	// known one at a time. Their clobbers are reported together once the loop ends.
	var late []string
	defer func() { r.warnClobbers(late) }()
	for _, dist := range serial {
		archive, err := r.prepare(ctx, env, dist)
		if err != nil {
			return err
		}
		w := preparedWheel{dist: dist, archive: archive}
		late = append(late, r.clobbers(env, owners, []preparedWheel{w}, slices.Concat(clobbered, late))...)
		if err := r.install(ctx, env, w); err != nil {
			return err
		}
	}
	return nil
}

type preparedWheel struct {
	dist    domain.RequiredDist
	archive string
}

func (r *Reconciler) prepareAll(
	ctx context.Context,
	env *domain.BuildEnvironment,
	dists []domain.RequiredDist,
) ([]preparedWheel, error) {
	out := make([]preparedWheel, len(dists))
	g, gctx := errgroup.WithContext(ctx)
	for idx, dist := range dists {
		g.Go(func() error {
			return r.io.Do(gctx, func(ctx context.Context) error {
				archive, err := r.prepare(ctx, env, dist)
				out[idx] = preparedWheel{dist: dist, archive: archive}
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reconciler) prepare(
	ctx context.Context,
	env *domain.BuildEnvironment,
	dist domain.RequiredDist,
) (string, error) {
	kind, verb := domain.StepBuild, "build "
	if dist.Wheel.Package.IsRemoteArchive() {
		kind, verb = domain.StepDownload, "download "
	}
	ctx, span := r.tracer.Start(ctx, verb+dist.Name().String(), ports.WithStepKind(kind))
	defer span.End()

	archive, err := r.preparer.Prepare(ctx, dist, env)
	if err != nil {
		span.RecordError(err)
		return "", zerr.With(zerr.Wrap(err, domain.ErrWheelBuildFailed.Error()), "package", dist.Name().String())
	}
	return archive, nil
}

func (r *Reconciler) installAll(ctx context.Context, env *domain.BuildEnvironment, batch []preparedWheel) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range batch {
		g.Go(func() error {
			return r.io.Do(gctx, func(ctx context.Context) error {
				return r.install(ctx, env, w)
			})
		})
	}
	return g.Wait()
}

func (r *Reconciler) install(ctx context.Context, env *domain.BuildEnvironment, w preparedWheel) error {
	ctx, span := r.tracer.Start(ctx, "install "+w.dist.Name().String(), ports.WithStepKind(domain.StepInstall))
	defer span.End()
	if w.dist.IsCached() {
		span.SetStatus(domain.StepStatusCached)
	}

	if err := r.site.Install(ctx, env, w.archive, w.dist); err != nil {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, domain.ErrWheelInstallFailed.Error()), "package", w.dist.Name().String())
	}
	return nil
}

// uninstallOurs removes every distribution this tool installed into sitePackages.
func (r *Reconciler) uninstallOurs(ctx context.Context, sitePackages string) error {
	installed, err := r.site.Installed(ctx, sitePackages)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSitePackagesReadFailed.Error()), "path", sitePackages)
	}
	for _, dist := range installed {
		if !dist.IsOurs() {
			continue
		}
		if err := r.uninstall(ctx, sitePackages, dist); err != nil {
			return err
		}
	}
	return nil
}

// uninstall removes one distribution. Distributions without usable metadata are removed by
// deleting their directory, but only when it lies inside a site-packages directory.
func (r *Reconciler) uninstall(ctx context.Context, sitePackages string, dist domain.InstalledDist) error {
	ctx, span := r.tracer.Start(ctx, "uninstall "+dist.Name.String(), ports.WithStepKind(domain.StepUninstall))
	defer span.End()

	err := r.site.Uninstall(ctx, sitePackages, dist)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrMissingRecord), errors.Is(err, domain.ErrMissingTopLevel):
		r.logger.Debug("uninstall failed, removing directory", "package", dist.Name.String(), "error", err.Error())
		if !insideSitePackages(dist.Path) {
			r.logger.Warn(domain.ErrUnsafeRemoval.Error(), "path", dist.Path)
			return nil
		}
		if err := r.site.RemoveAll(dist.Path); err != nil {
			span.RecordError(err)
			return zerr.With(zerr.Wrap(err, domain.ErrUninstallFailed.Error()), "package", dist.Name.String())
		}
		return nil
	default:
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, domain.ErrUninstallFailed.Error()), "package", dist.Name.String())
	}
}

func insideSitePackages(path string) bool {
	return slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "site-packages")
}

// fileOwners maps every file of the binary packages in the prefix to its package. It returns nil
// when the prefix metadata cannot be read, which disables clobber detection.
func (r *Reconciler) fileOwners(env *domain.BuildEnvironment) map[string]string {
	owners, err := r.linker.Files(env.Prefix)
	if err != nil {
		r.logger.Debug("skipping clobber detection", "prefix", env.Prefix, "error", err.Error())
		return nil
	}

	byPath := make(map[string]string)
	for pkg, files := range owners {
		for _, f := range files {
			byPath[filepath.ToSlash(f)] = pkg
		}
	}
	return byPath
}

// clobbers returns the binary packages, other than those in known, whose files the wheels
// overwrite.
func (r *Reconciler) clobbers(
	env *domain.BuildEnvironment,
	owners map[string]string,
	wheels []preparedWheel,
	known []string,
) []string {
	if len(owners) == 0 {
		return nil
	}

	var clobbered []string
	for _, w := range wheels {
		files, err := r.site.WheelFiles(w.archive, env.Python.SitePackages)
		if err != nil {
			r.logger.Debug("skipping clobber detection", "wheel", w.archive, "error", err.Error())
			continue
		}
		for _, f := range files {
			pkg, ok := owners[filepath.ToSlash(f)]
			if ok && !slices.Contains(clobbered, pkg) && !slices.Contains(known, pkg) {
				clobbered = append(clobbered, pkg)
			}
		}
	}
	slices.Sort(clobbered)
	return clobbered
}

func (r *Reconciler) warnClobbers(clobbered []string) {
	if len(clobbered) == 0 {
		return
	}
	names := slices.Sorted(slices.Values(clobbered))
	r.logger.Warn("These conda-packages will be overridden by pypi: \n\t" + strings.Join(names, ", "))
}

func (r *Reconciler) reportInstallerMismatch(reinstalls []domain.Reinstall, warned []string) {
	var names []string
	for _, re := range reinstalls {
		name := re.Installed.Name.String()
		if re.Reason.Kind == domain.ReinstallInstallerMismatch && !slices.Contains(warned, name) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	r.logger.Info("These pypi-packages were re-installed because they were previously installed by a " +
		"different installer but are currently managed by pixi: " + strings.Join(names, ", "))
}
