package lockstore

import (
	"cmp"
	"maps"
	"slices"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/zerr"
)

// packageKind orders the package list: binary packages first, then source builds, then wheels.
type packageKind int

const (
	kindConda packageKind = iota
	kindSource
	kindPypi
)

// packageKey identifies an entry of the package list.
type packageKey struct {
	kind     packageKind
	location string
	// subdir distinguishes source packages built from one path for several platforms.
	subdir string
}

func (p *packageDTO) key() packageKey {
	switch {
	case p.Source != "":
		return packageKey{kind: kindSource, location: p.Source, subdir: p.Subdir}
	case p.Pypi != "":
		return packageKey{kind: kindPypi, location: p.Pypi}
	default:
		return packageKey{kind: kindConda, location: p.Conda}
	}
}

func toDTO(lf *domain.LockFile) *lockFileDTO {
	dto := &lockFileDTO{
		Version:      domain.LockFileVersion,
		Environments: make(map[string]*environmentDTO, len(lf.Environments)),
	}
	packages := make(map[packageKey]*packageDTO)

	for name, env := range lf.Environments {
		envDTO := &environmentDTO{
			Channels: make([]channelDTO, len(env.Channels)),
			Packages: make(map[string][]packageRefDTO, len(env.Platforms)),
		}
		for i, ch := range env.Channels {
			envDTO.Channels[i] = channelDTO{URL: ch}
		}
		if env.Indexes != nil {
			envDTO.Indexes = &indexesDTO{
				IndexURL:       env.Indexes.IndexURL,
				ExtraIndexURLs: env.Indexes.ExtraIndexURLs,
				FindLinks:      env.Indexes.FindLinks,
			}
		}

		for platform, locked := range env.Platforms {
			refs := make([]packageRefDTO, 0, len(locked.Binary)+len(locked.Wheels))
			for _, r := range locked.Binary {
				pkg := recordDTO(r)
				packages[pkg.key()] = pkg
				refs = append(refs, packageRefDTO{Conda: pkg.Conda, Source: pkg.Source})
			}
			for _, w := range locked.Wheels {
				pkg := wheelDTO(w.Package)
				packages[pkg.key()] = pkg
				refs = append(refs, packageRefDTO{Pypi: pkg.Pypi, Extras: packageNames(w.Env.Extras)})
			}
			slices.SortStableFunc(refs, compareRefs)
			envDTO.Packages[platform.String()] = refs
		}
		dto.Environments[name] = envDTO
	}

	keys := slices.SortedFunc(maps.Keys(packages), func(a, b packageKey) int {
		return cmp.Or(
			cmp.Compare(a.kind, b.kind),
			cmp.Compare(a.location, b.location),
			cmp.Compare(a.subdir, b.subdir),
		)
	})
	dto.Packages = make([]*packageDTO, len(keys))
	for i, k := range keys {
		dto.Packages[i] = packages[k]
	}
	return dto
}

func compareRefs(a, b packageRefDTO) int {
	return cmp.Or(
		cmp.Compare(a.kind(), b.kind()),
		cmp.Compare(a.location(), b.location()),
	)
}

func (r packageRefDTO) kind() packageKind {
	switch {
	case r.Source != "":
		return kindSource
	case r.Pypi != "":
		return kindPypi
	default:
		return kindConda
	}
}

func (r packageRefDTO) location() string {
	return cmp.Or(r.Conda, r.Source, r.Pypi)
}

func recordDTO(r domain.LockedRecord) *packageDTO {
	switch rec := r.(type) {
	case *domain.SourceRecord:
		return &packageDTO{
			Source:    rec.Source,
			Name:      rec.Name,
			Version:   rec.Version,
			Subdir:    rec.Subdir.String(),
			Depends:   rec.Depends,
			Purls:     rec.PurlNames,
			InputHash: rec.InputHash,
		}
	case *domain.BinaryRecord:
		return &packageDTO{
			Conda:       rec.URL,
			Name:        rec.Name,
			Version:     rec.Version,
			Build:       rec.Build,
			BuildNumber: rec.BuildNumber,
			Subdir:      rec.Subdir.String(),
			Channel:     rec.Channel,
			SHA256:      rec.SHA256,
			Size:        rec.Size,
			Depends:     rec.Depends,
			Constrains:  rec.Constrains,
			Purls:       rec.PurlNames,
		}
	default:
		return &packageDTO{Conda: r.Identity(), Name: r.PackageName(), Version: r.PackageVersion()}
	}
}

func wheelDTO(pkg domain.WheelPackageData) *packageDTO {
	return &packageDTO{
		Pypi:           pkg.Location,
		Name:           pkg.Name.String(),
		Version:        pkg.Version,
		SHA256:         pkg.Hash,
		RequiresDist:   pkg.RequiresDist,
		RequiresPython: pkg.RequiresPython,
		Editable:       pkg.Editable,
	}
}

func packageNames(names []domain.PackageName) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}
	slices.Sort(out)
	return out
}

func fromDTO(dto *lockFileDTO) (*domain.LockFile, error) {
	lf := domain.NewLockFile()
	lf.Version = dto.Version

	packages := make(map[packageKey]*packageDTO, len(dto.Packages))
	for _, pkg := range dto.Packages {
		if pkg == nil {
			continue
		}
		if countSet(pkg.Conda, pkg.Source, pkg.Pypi) != 1 {
			return nil, zerr.With(zerr.Wrap(domain.ErrLockFileParseFailed, "package needs exactly one of conda, source and pypi"), "package", pkg.Name)
		}
		packages[pkg.key()] = pkg
	}

	for name, envDTO := range dto.Environments {
		if envDTO == nil {
			continue
		}
		env := lf.EnsureEnvironment(name)
		for _, ch := range envDTO.Channels {
			env.Channels = append(env.Channels, ch.URL)
		}
		if envDTO.Indexes != nil {
			env.Indexes = &domain.PypiIndexes{
				IndexURL:       envDTO.Indexes.IndexURL,
				ExtraIndexURLs: envDTO.Indexes.ExtraIndexURLs,
				FindLinks:      envDTO.Indexes.FindLinks,
			}
		}

		for rawPlatform, refs := range envDTO.Packages {
			platform, err := domain.ParsePlatform(rawPlatform)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFileParseFailed.Error()), "environment", name)
			}
			locked, err := resolveRefs(packages, platform, refs)
			if err != nil {
				return nil, zerr.With(zerr.With(err, "environment", name), "platform", rawPlatform)
			}
			lf.SetPlatform(name, platform, locked)
		}
	}
	return lf, nil
}

func resolveRefs(packages map[packageKey]*packageDTO, platform domain.Platform, refs []packageRefDTO) (*domain.LockedPlatform, error) {
	locked := &domain.LockedPlatform{}
	for _, ref := range refs {
		switch ref.kind() {
		case kindPypi:
			pkg, ok := packages[packageKey{kind: kindPypi, location: ref.Pypi}]
			if !ok {
				return nil, unknownPackage(ref)
			}
			locked.Wheels = append(locked.Wheels, domain.LockedWheel{
				Package: domain.WheelPackageData{
					Name:           domain.NewPackageName(pkg.Name),
					Version:        pkg.Version,
					Location:       pkg.Pypi,
					Hash:           pkg.SHA256,
					RequiresDist:   pkg.RequiresDist,
					RequiresPython: pkg.RequiresPython,
					Editable:       pkg.Editable,
				},
				Env: domain.WheelEnvironmentData{Extras: extras(ref.Extras)},
			})
		case kindSource:
			pkg, ok := packages[packageKey{kind: kindSource, location: ref.Source, subdir: platform.String()}]
			if !ok {
				pkg, ok = packages[packageKey{kind: kindSource, location: ref.Source, subdir: domain.PlatformNoArch.String()}]
			}
			if !ok {
				return nil, unknownPackage(ref)
			}
			locked.Binary = append(locked.Binary, &domain.SourceRecord{
				Name:      pkg.Name,
				Version:   pkg.Version,
				Subdir:    domain.Platform(pkg.Subdir),
				Source:    pkg.Source,
				Depends:   pkg.Depends,
				InputHash: pkg.InputHash,
				PurlNames: pkg.Purls,
			})
		default:
			pkg, ok := packages[packageKey{kind: kindConda, location: ref.Conda}]
			if !ok {
				return nil, unknownPackage(ref)
			}
			locked.Binary = append(locked.Binary, &domain.BinaryRecord{
				Name:        pkg.Name,
				Version:     pkg.Version,
				Build:       pkg.Build,
				BuildNumber: pkg.BuildNumber,
				Subdir:      domain.Platform(pkg.Subdir),
				Channel:     pkg.Channel,
				URL:         pkg.Conda,
				SHA256:      pkg.SHA256,
				Size:        pkg.Size,
				Depends:     pkg.Depends,
				Constrains:  pkg.Constrains,
				PurlNames:   pkg.Purls,
			})
		}
	}
	return locked, nil
}

func extras(names []string) []domain.PackageName {
	if len(names) == 0 {
		return nil
	}
	return domain.NewPackageNames(names)
}

func unknownPackage(ref packageRefDTO) error {
	return zerr.With(zerr.Wrap(domain.ErrLockFileParseFailed, "reference to a package that is not in the package list"), "package", ref.location())
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
