// Package outdated decides which environment and platform pairs of a lock file must be solved again.
package outdated

import (
	"context"
	"errors"
	"slices"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/lockfile/satisfiability"
)

// Options configures an analysis.
type Options struct {
	Logger ports.Logger
	// Hasher hashes local source trees. Without it, changes to local wheel sources go unnoticed.
	Hasher ports.SourceTreeHasher
}

// Analyze compares the lock file against the manifest and returns the stale targets per ecosystem.
// It only fails when ctx is canceled.
func Analyze(
	ctx context.Context,
	manifest *domain.Manifest,
	lockFile *domain.LockFile,
	opts Options,
) (*domain.OutdatedEnvironments, error) {
	a := &analyzer{
		manifest: manifest,
		lockFile: lockFile,
		logger:   opts.Logger,
		checker:  satisfiability.NewChecker(manifest.Root, opts.Hasher),
		out:      domain.NewOutdatedEnvironments(),
	}

	for _, idx := range manifest.EnvironmentIndices() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.checkEnvironment(idx)
	}
	a.findRemovedEnvironments()
	a.propagateSolveGroups()
	a.verifySolveGroupConsistency()

	// A changed binary set can change the interpreter, so every conda-stale target is pypi-stale too.
	for env, platforms := range a.out.Conda {
		for p := range platforms {
			a.out.MarkPypi(env, p)
		}
	}
	return a.out, nil
}

type analyzer struct {
	manifest *domain.Manifest
	lockFile *domain.LockFile
	logger   ports.Logger
	checker  *satisfiability.Checker
	out      *domain.OutdatedEnvironments
}

func (a *analyzer) checkEnvironment(idx domain.EnvironmentIdx) {
	env := a.manifest.Environment(idx)

	locked, ok := a.lockFile.Environment(env.Name)
	if !ok {
		a.logger.Info("environment is missing from the lock file", "environment", env.Name)
		a.markAllConda(idx)
		return
	}

	if err := satisfiability.CheckEnvironment(env, locked); err != nil {
		a.logger.Info("environment is out of date", "environment", env.Name, "reason", err.Error())
		a.markAllConda(idx)

		var unsat *satisfiability.EnvironmentUnsat
		if errors.As(err, &unsat) {
			switch unsat.Kind {
			case satisfiability.ChannelsMismatch:
				a.out.DisregardLockedContent.Conda[idx] = struct{}{}
			case satisfiability.IndexesMismatch:
				a.out.DisregardLockedContent.Pypi[idx] = struct{}{}
			}
		}
		return
	}

	for _, p := range env.Platforms {
		err := a.checker.CheckPlatform(env, locked, p)
		if err == nil {
			continue
		}
		a.logger.Info("platform is out of date",
			"environment", env.Name, "platform", p.String(), "reason", err.Error())

		var unsat *satisfiability.PlatformUnsat
		if errors.As(err, &unsat) && unsat.IsPypiOnly() {
			a.out.MarkPypi(idx, p)
		} else {
			a.out.MarkConda(idx, p)
		}
	}

	for p := range locked.Platforms {
		if env.SupportsPlatform(p) {
			continue
		}
		a.logger.Info("platform is no longer declared",
			"environment", env.Name, "platform", p.String())
		set, ok := a.out.AdditionalPlatforms[idx]
		if !ok {
			set = domain.NewPlatformSet()
			a.out.AdditionalPlatforms[idx] = set
		}
		set.Add(p)
	}
}

func (a *analyzer) markAllConda(idx domain.EnvironmentIdx) {
	for _, p := range a.manifest.Environment(idx).Platforms {
		a.out.MarkConda(idx, p)
	}
}

func (a *analyzer) findRemovedEnvironments() {
	if a.lockFile == nil {
		return
	}
	for name := range a.lockFile.Environments {
		if _, ok := a.manifest.EnvironmentByName(name); !ok {
			a.logger.Info("environment is no longer declared", "environment", name)
			a.out.RemovedEnvironments = append(a.out.RemovedEnvironments, name)
		}
	}
	slices.Sort(a.out.RemovedEnvironments)
}

// groups returns every solve group plus each grouped environment as a group of its own.
// Environments without a solve group are single-member groups already.
func (a *analyzer) groups() [][]domain.EnvironmentIdx {
	var out [][]domain.EnvironmentIdx
	for _, g := range a.manifest.SolveGroups {
		if len(g.Environments) > 0 {
			out = append(out, g.Environments)
		}
	}
	for _, idx := range a.manifest.EnvironmentIndices() {
		out = append(out, []domain.EnvironmentIdx{idx})
	}
	return out
}

func (a *analyzer) propagateSolveGroups() {
	for _, g := range a.manifest.SolveGroups {
		for _, ecosystem := range []map[domain.EnvironmentIdx]domain.PlatformSet{a.out.Conda, a.out.Pypi} {
			stale := domain.NewPlatformSet()
			for _, idx := range g.Environments {
				for p := range ecosystem[idx] {
					stale.Add(p)
				}
			}
			for p := range stale {
				a.markGroup(g.Environments, p, ecosystem, "solve group "+g.Name+" is out of date")
			}
		}
	}
}

func (a *analyzer) markGroup(
	members []domain.EnvironmentIdx,
	p domain.Platform,
	ecosystem map[domain.EnvironmentIdx]domain.PlatformSet,
	reason string,
) {
	for _, idx := range members {
		env := a.manifest.Environment(idx)
		if !env.SupportsPlatform(p) || ecosystem[idx].Has(p) {
			continue
		}
		a.logger.Info("platform is out of date",
			"environment", env.Name, "platform", p.String(), "reason", reason)
		set, ok := ecosystem[idx]
		if !ok {
			set = domain.NewPlatformSet()
			ecosystem[idx] = set
		}
		set.Add(p)
	}
}

// verifySolveGroupConsistency marks groups whose members lock the same package name from different sources.
func (a *analyzer) verifySolveGroupConsistency() {
	for _, members := range a.groups() {
		for _, p := range a.groupPlatforms(members) {
			a.verifyGroupPlatform(members, p)
		}
	}
}

func (a *analyzer) groupPlatforms(members []domain.EnvironmentIdx) []domain.Platform {
	set := domain.NewPlatformSet()
	for _, idx := range members {
		for _, p := range a.manifest.Environment(idx).Platforms {
			set.Add(p)
		}
	}
	return set.Sorted()
}

func (a *analyzer) verifyGroupPlatform(members []domain.EnvironmentIdx, p domain.Platform) {
	condaIdentities := make(map[string]string)
	wheelIdentities := make(map[domain.PackageName]string)
	condaMismatch, wheelMismatch := "", ""

	for _, idx := range members {
		env := a.manifest.Environment(idx)
		if !env.SupportsPlatform(p) {
			continue
		}
		if a.out.IsOutdated(idx, p) {
			// The group is already known to be stale.
			return
		}
		locked, ok := a.lockFile.Platform(env.Name, p)
		if !ok {
			continue
		}

		for _, r := range locked.Binary {
			if prev, seen := condaIdentities[r.PackageName()]; seen && prev != r.Identity() && condaMismatch == "" {
				condaMismatch = r.PackageName()
			}
			condaIdentities[r.PackageName()] = r.Identity()
		}
		for _, w := range locked.Wheels {
			if prev, seen := wheelIdentities[w.Package.Name]; seen && prev != w.Identity() && wheelMismatch == "" {
				wheelMismatch = w.Package.Name.String()
			}
			wheelIdentities[w.Package.Name] = w.Identity()
		}
	}

	switch {
	case condaMismatch != "":
		a.markGroup(members, p, a.out.Conda, "the solve group locks "+condaMismatch+" from different sources")
	case wheelMismatch != "":
		a.markGroup(members, p, a.out.Pypi, "the solve group locks "+wheelMismatch+" from different sources")
	}
}
