package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/zerr"
)

// defaultFeatureName is the implicit feature formed by the root level tables.
const defaultFeatureName = "default"

// environmentDecl is one entry of the [environments] table.
type environmentDecl struct {
	features         []string
	solveGroup       string
	noDefaultFeature bool
}

type builder struct {
	file     *manifestFile
	features map[string]*featureTable
}

func newBuilder(file *manifestFile) *builder {
	features := make(map[string]*featureTable, len(file.Features)+1)
	maps.Copy(features, file.Features)
	features[defaultFeatureName] = file.defaultFeature()
	return &builder{file: file, features: features}
}

func (b *builder) build() (*domain.Manifest, error) {
	m := &domain.Manifest{Name: b.file.project().Name}
	groups := make(map[string]domain.SolveGroupIdx)

	for _, name := range environmentNames(b.file.Environments) {
		if err := validateEnvironmentName(name); err != nil {
			return nil, err
		}
		decl, err := parseEnvironmentDecl(name, b.file.Environments[name])
		if err != nil {
			return nil, err
		}

		env, err := b.environment(name, decl)
		if err != nil {
			return nil, zerr.With(err, "environment", name)
		}

		idx := domain.EnvironmentIdx(len(m.Environments))
		if decl.solveGroup != "" {
			group, ok := groups[decl.solveGroup]
			if !ok {
				group = domain.SolveGroupIdx(len(m.SolveGroups))
				groups[decl.solveGroup] = group
				m.SolveGroups = append(m.SolveGroups, domain.SolveGroup{Name: decl.solveGroup})
			}
			env.SolveGroup = group
			m.SolveGroups[group].Environments = append(m.SolveGroups[group].Environments, idx)
		}
		m.Environments = append(m.Environments, env)
	}
	return m, nil
}

// parseEnvironmentDecl accepts both `name = ["feature"]` and
// `name = { features = [...], solve-group = "...", no-default-feature = true }`.
func parseEnvironmentDecl(name string, raw any) (environmentDecl, error) {
	var decl environmentDecl
	switch v := raw.(type) {
	case nil:
		return decl, nil
	case []any:
		features, err := stringList(v)
		if err != nil {
			return decl, zerr.With(err, "environment", name)
		}
		decl.features = features
	case map[string]any:
		for key, value := range v {
			switch key {
			case "features":
				list, ok := value.([]any)
				if !ok {
					return decl, invalidEnvironment(name, "features must be a list")
				}
				features, err := stringList(list)
				if err != nil {
					return decl, zerr.With(err, "environment", name)
				}
				decl.features = features
			case "solve-group":
				group, ok := value.(string)
				if !ok || group == "" {
					return decl, invalidEnvironment(name, "solve-group must be a non-empty string")
				}
				decl.solveGroup = group
			case "no-default-feature":
				flag, ok := value.(bool)
				if !ok {
					return decl, invalidEnvironment(name, "no-default-feature must be a boolean")
				}
				decl.noDefaultFeature = flag
			default:
				return decl, invalidEnvironment(name, "unknown key "+key)
			}
		}
	default:
		return decl, invalidEnvironment(name, "expected a list of features or a table")
	}
	return decl, nil
}

func invalidEnvironment(name, msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrManifestInvalid, msg), "environment", name)
}

func stringList(values []any) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, zerr.Wrap(domain.ErrManifestInvalid, fmt.Sprintf("expected a string, got %T", v))
		}
		out = append(out, s)
	}
	return out, nil
}

// environment merges the features of one environment. Later features override earlier ones,
// the default feature comes last unless it is excluded.
func (b *builder) environment(name string, decl environmentDecl) (*domain.Environment, error) {
	featureNames := slices.Clone(decl.features)
	if !decl.noDefaultFeature && !slices.Contains(featureNames, defaultFeatureName) {
		featureNames = append(featureNames, defaultFeatureName)
	}

	features := make([]*featureTable, 0, len(featureNames))
	for _, fname := range featureNames {
		f, ok := b.features[fname]
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnknownFeature, fname), "feature", fname)
		}
		features = append(features, f)
	}

	env := &domain.Environment{
		Name:         name,
		Features:     featureNames,
		SolveGroup:   domain.NoSolveGroup,
		Dependencies: make(map[domain.Platform]domain.Requirements),
	}

	platforms, err := mergePlatforms(b.file.project().Platforms, features)
	if err != nil {
		return nil, err
	}
	env.Platforms = platforms

	// The default feature is last in the list but owns the highest priority channels.
	for i := len(features) - 1; i >= 0; i-- {
		for _, ch := range features[i].Channels {
			if !slices.Contains(env.Channels, ch) {
				env.Channels = append(env.Channels, ch)
			}
		}
	}

	for _, f := range features {
		mergeIndexes(env, f.PypiOptions)
		vpkgs, err := virtualPackages(f.SystemRequirements)
		if err != nil {
			return nil, err
		}
		env.VirtualPackages = mergeVirtualPackages(env.VirtualPackages, vpkgs)
	}

	for _, p := range env.Platforms {
		reqs, err := requirementsFor(features, p)
		if err != nil {
			return nil, zerr.With(err, "platform", p.String())
		}
		env.Dependencies[p] = reqs
	}
	return env, nil
}

// mergePlatforms intersects the project platforms with those of every feature that declares any.
func mergePlatforms(project []string, features []*featureTable) ([]domain.Platform, error) {
	var out []domain.Platform
	for _, raw := range project {
		p, err := domain.ParsePlatform(raw)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	for _, f := range features {
		if len(f.Platforms) == 0 {
			continue
		}
		out = slices.DeleteFunc(out, func(p domain.Platform) bool {
			return !slices.Contains(f.Platforms, p.String())
		})
	}
	return out, nil
}

func mergeIndexes(env *domain.Environment, opts *pypiOptions) {
	if opts == nil {
		return
	}
	if env.Indexes.IndexURL == "" {
		env.Indexes.IndexURL = opts.IndexURL
	}
	for _, u := range opts.ExtraIndexURLs {
		if !slices.Contains(env.Indexes.ExtraIndexURLs, u) {
			env.Indexes.ExtraIndexURLs = append(env.Indexes.ExtraIndexURLs, u)
		}
	}
	for _, link := range opts.FindLinks {
		if loc := link.location(); !slices.Contains(env.Indexes.FindLinks, loc) {
			env.Indexes.FindLinks = append(env.Indexes.FindLinks, loc)
		}
	}
	for _, name := range domain.NewPackageNames(opts.NoBuildIsolation) {
		if !slices.Contains(env.NoBuildIsolation, name) {
			env.NoBuildIsolation = append(env.NoBuildIsolation, name)
		}
	}
}

// virtualPackageNames maps system requirement keys to virtual package names.
var virtualPackageNames = map[string]string{
	"linux":    "__linux",
	"libc":     "__glibc",
	"macos":    "__osx",
	"cuda":     "__cuda",
	"archspec": "__archspec",
}

func virtualPackages(reqs map[string]any) ([]domain.VirtualPackage, error) {
	out := make([]domain.VirtualPackage, 0, len(reqs))
	for _, key := range slices.Sorted(maps.Keys(reqs)) {
		name, ok := virtualPackageNames[key]
		if !ok {
			name = "__" + key
		}

		var version string
		switch v := reqs[key].(type) {
		case string:
			version = v
		case map[string]any:
			version, _ = v["version"].(string)
			if family, _ := v["family"].(string); key == "libc" && family != "" && !strings.EqualFold(family, "glibc") {
				name = "__" + strings.ToLower(family)
			}
		default:
			return nil, zerr.With(zerr.Wrap(domain.ErrManifestInvalid, "invalid system requirement"), "requirement", key)
		}
		out = append(out, domain.VirtualPackage{Name: name, Version: version})
	}
	return out, nil
}

// mergeVirtualPackages adds the packages of next that base does not name yet.
func mergeVirtualPackages(base, next []domain.VirtualPackage) []domain.VirtualPackage {
	for _, vp := range next {
		if !slices.ContainsFunc(base, func(existing domain.VirtualPackage) bool { return existing.Name == vp.Name }) {
			base = append(base, vp)
		}
	}
	return base
}

// requirementsFor merges the dependency tables of the features for one platform. Target
// specific tables override the generic ones of the same feature.
func requirementsFor(features []*featureTable, p domain.Platform) (domain.Requirements, error) {
	binary := make(map[string]domain.MatchSpec)
	pypi := make(map[domain.PackageName]domain.PypiRequirement)

	// Features listed first win, so merge from the back.
	for i := len(features) - 1; i >= 0; i-- {
		f := features[i]
		tables := []struct{ deps, pypiDeps map[string]any }{{f.Dependencies, f.PypiDependencies}}
		if target, ok := f.Target[p.String()]; ok && target != nil {
			tables = append(tables, struct{ deps, pypiDeps map[string]any }{target.Dependencies, target.PypiDependencies})
		}
		for _, t := range tables {
			for name, raw := range t.deps {
				spec, err := parseBinaryDependency(name, raw)
				if err != nil {
					return domain.Requirements{}, err
				}
				binary[spec.Name] = spec
			}
			for name, raw := range t.pypiDeps {
				req, err := parsePypiDependency(name, raw)
				if err != nil {
					return domain.Requirements{}, err
				}
				pypi[req.Name] = req
			}
		}
	}

	var out domain.Requirements
	for _, name := range slices.Sorted(maps.Keys(binary)) {
		out.Binary = append(out.Binary, binary[name])
	}
	for _, name := range slices.SortedFunc(maps.Keys(pypi), domain.PackageName.Compare) {
		out.Pypi = append(out.Pypi, pypi[name])
	}
	return out, nil
}

// parseBinaryDependency accepts `name = "version"` and `name = { version, build, channel }`.
func parseBinaryDependency(name string, raw any) (domain.MatchSpec, error) {
	var version, build, channel string
	switch v := raw.(type) {
	case string:
		version = v
	case map[string]any:
		version, _ = v["version"].(string)
		build, _ = v["build"].(string)
		channel, _ = v["channel"].(string)
	default:
		return domain.MatchSpec{}, zerr.With(zerr.Wrap(domain.ErrInvalidMatchSpec, "expected a string or table"), "package", name)
	}

	spec := name
	if channel != "" {
		spec = channel + "::" + spec
	}
	version = strings.TrimSpace(version)
	if version == "" && build != "" {
		version = "*"
	}
	if version != "" {
		spec += " " + strings.ReplaceAll(version, " ", "")
	}
	if build != "" {
		spec += " " + build
	}
	return domain.ParseMatchSpec(spec)
}

// parsePypiDependency accepts `name = "specifier"` and the table form with version, extras,
// path, editable, git, rev, branch, tag and url keys.
func parsePypiDependency(name string, raw any) (domain.PypiRequirement, error) {
	req := domain.PypiRequirement{Name: domain.NewPackageName(name)}

	var version string
	switch v := raw.(type) {
	case string:
		version = v
	case map[string]any:
		version, _ = v["version"].(string)
		if extras, ok := v["extras"].([]any); ok {
			names, err := stringList(extras)
			if err != nil {
				return req, zerr.With(err, "package", name)
			}
			req.Extras = domain.NewPackageNames(names)
		}
		req.Path, _ = v["path"].(string)
		req.Editable, _ = v["editable"].(bool)
		req.Git, _ = v["git"].(string)
		req.URL, _ = v["url"].(string)
		for _, key := range []string{"rev", "tag", "branch"} {
			if rev, ok := v[key].(string); ok && rev != "" {
				req.Rev = rev
				break
			}
		}
		if marker, ok := v["env"].(string); ok {
			m, err := domain.ParseMarker(marker)
			if err != nil {
				return req, zerr.With(err, "package", name)
			}
			req.Marker = m
		}
	default:
		return req, zerr.With(zerr.Wrap(domain.ErrInvalidRequirement, "expected a string or table"), "package", name)
	}

	if sources := countSet(req.Path, req.Git, req.URL); sources > 1 {
		return req, zerr.With(zerr.Wrap(domain.ErrInvalidRequirement, "only one of path, git and url may be set"), "package", name)
	}
	if req.Editable && req.Path == "" {
		return req, zerr.With(zerr.Wrap(domain.ErrInvalidRequirement, "editable requires a path"), "package", name)
	}

	spec, err := domain.ParseVersionSpec(version)
	if err != nil {
		return req, zerr.With(err, "package", name)
	}
	req.Specifier = spec
	return req, nil
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
