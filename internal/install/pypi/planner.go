// Package pypi plans and executes the reconciliation of a prefix's site-packages with a locked wheel set.
package pypi

import (
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

// FreshnessFunc reports whether the local source of an installed distribution changed after it was installed.
type FreshnessFunc func(source string, installed domain.InstalledDist) (bool, error)

// PlanOptions configures one planning pass.
type PlanOptions struct {
	// Root is the directory relative wheel locations are resolved against.
	Root string
	// NoBuildIsolation names packages built without an isolated build environment.
	NoBuildIsolation []domain.PackageName
	// Reinstall names packages that are reinstalled even when they are up to date.
	Reinstall []domain.PackageName
}

// Planner computes the installation plan of a site-packages directory.
type Planner struct {
	cache ports.WheelCache
	fresh FreshnessFunc
}

// NewPlanner creates a Planner. cache and fresh may be nil.
func NewPlanner(cache ports.WheelCache, fresh FreshnessFunc) *Planner {
	return &Planner{cache: cache, fresh: fresh}
}

// Plan sorts every installed and required distribution into exactly one bucket: cached or remote
// installs, reinstalls, extraneous removals or duplicates. Installed distributions that another
// installer manages and that are not required are left alone.
func (p *Planner) Plan(
	installed []domain.InstalledDist,
	required []domain.LockedWheel,
	opts PlanOptions,
) (*domain.InstallationPlan, error) {
	wanted := make(map[domain.PackageName]domain.LockedWheel, len(required))
	for _, w := range required {
		if _, dup := wanted[w.Package.Name]; dup {
			return nil, zerr.With(domain.ErrDuplicateRecord, "package", w.Package.Name.String())
		}
		wanted[w.Package.Name] = w
	}

	plan := &domain.InstallationPlan{}
	seen := make(map[domain.PackageName]struct{}, len(installed))

	for _, group := range groupByName(installed) {
		name := group[0].Name
		wheel, isRequired := wanted[name]

		if len(group) > 1 {
			// Several dist-info directories for one name: remove them all and install fresh.
			if isRequired || slices.ContainsFunc(group, domain.InstalledDist.IsOurs) {
				plan.Duplicates = append(plan.Duplicates, group...)
			}
			continue
		}

		dist := group[0]
		switch {
		case isRequired:
			seen[name] = struct{}{}
			reason, reinstall, err := p.needReinstall(dist, wheel, opts)
			if err != nil {
				return nil, err
			}
			if !reinstall {
				continue
			}
			plan.Reinstalls = append(plan.Reinstalls, domain.Reinstall{Installed: dist, Reason: reason})
			p.addInstall(plan, wheel, opts)
		case !dist.IsOurs():
			continue
		default:
			plan.Extraneous = append(plan.Extraneous, dist)
		}
	}

	for _, w := range required {
		if _, ok := seen[w.Package.Name]; !ok {
			p.addInstall(plan, w, opts)
		}
	}
	return plan, nil
}

func (p *Planner) addInstall(plan *domain.InstallationPlan, wheel domain.LockedWheel, opts PlanOptions) {
	// Preparing and installing happen away from the project root, so local paths become absolute.
	if wheel.Package.IsLocalPath() {
		wheel.Package.Location = lockedPath(wheel.Package.Location, opts.Root)
	}
	dist := domain.RequiredDist{
		Wheel:         wheel,
		BuildIsolated: !slices.Contains(opts.NoBuildIsolation, wheel.Package.Name),
	}
	if p.cache != nil && !slices.Contains(opts.Reinstall, wheel.Package.Name) {
		if path, ok := p.cache.Lookup(wheel.Package); ok {
			dist.CachePath = path
			plan.Cached = append(plan.Cached, dist)
			return
		}
	}
	plan.Remote = append(plan.Remote, dist)
}

// needReinstall validates an installed distribution against its locked wheel.
func (p *Planner) needReinstall(
	dist domain.InstalledDist,
	wheel domain.LockedWheel,
	opts PlanOptions,
) (domain.NeedReinstall, bool, error) {
	if !dist.IsOurs() {
		return domain.NeedReinstall{Kind: domain.ReinstallInstallerMismatch, Detail: dist.Installer}, true, nil
	}

	locked := wheel.Package
	reason, ok := p.validateSource(dist, locked, opts.Root)
	if !ok {
		return reason, true, nil
	}
	if reason.Kind == domain.ReinstallSourceNewerThanCache {
		fresh, err := p.sourceIsFresh(dist, reason.Detail)
		if err != nil {
			return domain.NeedReinstall{}, false, err
		}
		if !fresh {
			return reason, true, nil
		}
	}

	if dist.Version != locked.Version {
		return domain.NeedReinstall{
			Kind:   domain.ReinstallVersionMismatch,
			Detail: dist.Version + " != " + locked.Version,
		}, true, nil
	}
	if slices.Contains(opts.Reinstall, locked.Name) {
		return domain.NeedReinstall{Kind: domain.ReinstallRequested}, true, nil
	}
	return domain.NeedReinstall{}, false, nil
}

func (p *Planner) sourceIsFresh(dist domain.InstalledDist, source string) (bool, error) {
	if p.fresh == nil {
		return true, nil
	}
	newer, err := p.fresh(source, dist)
	if err != nil {
		return false, zerr.With(err, "package", dist.Name.String())
	}
	return !newer, nil
}

// validateSource compares where a distribution was installed from with its locked location.
// It returns ok=false with a reason when they differ. For matching local sources the returned
// reason carries ReinstallSourceNewerThanCache and the source path so the caller checks freshness.
func (p *Planner) validateSource(
	dist domain.InstalledDist,
	locked domain.WheelPackageData,
	root string,
) (domain.NeedReinstall, bool) {
	installedURL := dist.DirectURL

	if installedURL == "" {
		if !strings.Contains(locked.Location, "://") {
			return domain.NeedReinstall{
				Kind:   domain.ReinstallSourceMismatch,
				Detail: "registry != " + locked.Location,
			}, false
		}
		return domain.NeedReinstall{}, true
	}

	switch {
	case strings.HasPrefix(installedURL, "file://"):
		u, err := url.Parse(installedURL)
		if err != nil {
			return domain.NeedReinstall{Kind: domain.ReinstallUnableToParseFileURL, Detail: installedURL}, false
		}
		if !locked.IsLocalPath() {
			return domain.NeedReinstall{Kind: domain.ReinstallURLMismatch, Detail: installedURL + " != " + locked.Location}, false
		}
		source := lockedPath(locked.Location, root)
		if filepath.Clean(filepath.FromSlash(u.Path)) != source {
			return domain.NeedReinstall{Kind: domain.ReinstallURLMismatch, Detail: installedURL + " != " + source}, false
		}
		if dist.Editable != locked.Editable {
			return domain.NeedReinstall{Kind: domain.ReinstallEditableStatusChanged}, false
		}
		return domain.NeedReinstall{Kind: domain.ReinstallSourceNewerThanCache, Detail: source}, true

	case strings.HasPrefix(installedURL, "git+"):
		if !strings.HasPrefix(locked.Location, "git+") {
			return domain.NeedReinstall{Kind: domain.ReinstallSourceMismatch, Detail: installedURL + " != " + locked.Location}, false
		}
		if stripFragment(installedURL) != stripFragment(locked.Location) {
			return domain.NeedReinstall{Kind: domain.ReinstallURLMismatch, Detail: installedURL + " != " + locked.Location}, false
		}
		return domain.NeedReinstall{}, true

	default:
		if _, err := url.Parse(installedURL); err != nil {
			return domain.NeedReinstall{Kind: domain.ReinstallUnableToParseInstalledURL, Detail: installedURL}, false
		}
		if stripFragment(installedURL) != stripFragment(locked.Location) {
			return domain.NeedReinstall{Kind: domain.ReinstallURLMismatch, Detail: installedURL + " != " + locked.Location}, false
		}
		return domain.NeedReinstall{}, true
	}
}

func lockedPath(location, root string) string {
	path := filepath.FromSlash(location)
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return filepath.Clean(path)
}

func stripFragment(location string) string {
	location, _, _ = strings.Cut(location, "#")
	return location
}

// groupByName groups installed distributions by name, in name order.
func groupByName(installed []domain.InstalledDist) [][]domain.InstalledDist {
	sorted := slices.Clone(installed)
	slices.SortStableFunc(sorted, func(a, b domain.InstalledDist) int {
		return a.Name.Compare(b.Name)
	})

	var out [][]domain.InstalledDist
	for _, d := range sorted {
		if n := len(out); n > 0 && out[n-1][0].Name == d.Name {
			out[n-1] = append(out[n-1], d)
			continue
		}
		out = append(out, []domain.InstalledDist{d})
	}
	return out
}
