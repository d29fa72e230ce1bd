package satisfiability

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
)

// CheckEnvironment verifies the environment level metadata of a locked environment.
// It returns nil or an *EnvironmentUnsat.
func CheckEnvironment(env *domain.Environment, locked *domain.LockedEnvironment) error {
	if !slices.Equal(env.Channels, locked.Channels) {
		return &EnvironmentUnsat{Kind: ChannelsMismatch, Expected: env.Channels, Locked: locked.Channels}
	}

	if !env.HasPypiDependencies() {
		return nil
	}
	expected := EffectiveIndexes(env)
	if locked.Indexes == nil || !expected.Equal(*locked.Indexes) {
		var lockedURLs []string
		if locked.Indexes != nil {
			lockedURLs = indexURLs(*locked.Indexes)
		}
		return &EnvironmentUnsat{Kind: IndexesMismatch, Expected: indexURLs(expected), Locked: lockedURLs}
	}
	return nil
}

// EffectiveIndexes returns the index configuration an environment is solved with.
func EffectiveIndexes(env *domain.Environment) domain.PypiIndexes {
	if env.Indexes.IsZero() {
		return domain.PypiIndexes{IndexURL: domain.DefaultPypiIndexURL}
	}
	return env.Indexes
}

func indexURLs(i domain.PypiIndexes) []string {
	out := make([]string, 0, 1+len(i.ExtraIndexURLs)+len(i.FindLinks))
	if i.IndexURL != "" {
		out = append(out, i.IndexURL)
	}
	out = append(out, i.ExtraIndexURLs...)
	return append(out, i.FindLinks...)
}

// Checker verifies locked package sets against the requirements of an environment.
// Its only I/O is hashing local source trees through the injected hasher.
type Checker struct {
	root   string
	hasher ports.SourceTreeHasher
}

// NewChecker creates a Checker. Relative path requirements are resolved against root.
// hasher may be nil, in which case source tree hashes are not compared.
func NewChecker(root string, hasher ports.SourceTreeHasher) *Checker {
	return &Checker{root: root, hasher: hasher}
}

// CheckPlatform verifies the locked packages of one platform. It returns nil or a *PlatformUnsat.
func (c *Checker) CheckPlatform(env *domain.Environment, locked *domain.LockedEnvironment, platform domain.Platform) error {
	lockedPlatform, ok := locked.Platforms[platform]
	if !ok || lockedPlatform == nil {
		return &PlatformUnsat{Kind: MissingPlatform, Platform: platform}
	}

	records, err := domain.RecordsByName(lockedPlatform.Binary)
	if err != nil {
		return &PlatformUnsat{Kind: DuplicateEntry, Platform: platform, Packages: duplicateRecordNames(lockedPlatform.Binary)}
	}

	reqs := env.RequirementsFor(platform)
	visited, err := verifyBinary(env, reqs.Binary, records, platform)
	if err != nil {
		return err
	}

	return c.verifyWheels(env, reqs.Pypi, lockedPlatform, records, visited, platform)
}

func duplicateRecordNames(records []domain.LockedRecord) []string {
	seen := make(map[string]int, len(records))
	var dups []string
	for _, r := range records {
		seen[r.PackageName()]++
		if seen[r.PackageName()] == 2 {
			dups = append(dups, r.PackageName())
		}
	}
	return dups
}

// verifyBinary walks the dependency graph from the declared specs and returns the visited records.
func verifyBinary(
	env *domain.Environment,
	specs []domain.MatchSpec,
	records map[string]domain.LockedRecord,
	platform domain.Platform,
) (map[string]struct{}, error) {
	visited := make(map[string]struct{}, len(records))
	queue := slices.Clone(specs)

	for len(queue) > 0 {
		spec := queue[0]
		queue = queue[1:]

		if spec.IsVirtual() {
			if !virtualSatisfied(env, spec) {
				return nil, &PlatformUnsat{Kind: UnsatisfiableMatchSpec, Platform: platform, Packages: []string{spec.String()},
					Detail: "the virtual package is not declared in the system requirements"}
			}
			continue
		}

		record, ok := records[spec.Name]
		if !ok || !specMatches(spec, record) {
			return nil, &PlatformUnsat{Kind: UnsatisfiableMatchSpec, Platform: platform, Packages: []string{spec.String()}}
		}
		if _, seen := visited[spec.Name]; seen {
			continue
		}
		visited[spec.Name] = struct{}{}

		for _, dep := range record.Dependencies() {
			depSpec, err := domain.ParseMatchSpec(dep)
			if err != nil {
				return nil, &PlatformUnsat{Kind: UnsatisfiableMatchSpec, Platform: platform, Packages: []string{dep},
					Detail: "the locked dependency of " + spec.Name + " cannot be parsed"}
			}
			if depSpec.IsVirtual() {
				// Virtual dependencies of locked packages were checked by the solver.
				continue
			}
			queue = append(queue, depSpec)
		}
	}

	var extra []string
	for name := range records {
		if _, ok := visited[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		slices.Sort(extra)
		return nil, &PlatformUnsat{Kind: TooManyCondaPackages, Platform: platform, Packages: extra}
	}
	return visited, nil
}

func specMatches(spec domain.MatchSpec, record domain.LockedRecord) bool {
	switch r := record.(type) {
	case *domain.BinaryRecord:
		return spec.Matches(r)
	case *domain.SourceRecord:
		return spec.MatchesSource(r)
	default:
		return false
	}
}

func virtualSatisfied(env *domain.Environment, spec domain.MatchSpec) bool {
	for _, vp := range env.VirtualPackages {
		if vp.Name == spec.Name && spec.Version.Matches(vp.Version) {
			return true
		}
	}
	return false
}

type wheelVisit struct {
	req    domain.PypiRequirement
	parent string
}

func (c *Checker) verifyWheels(
	env *domain.Environment,
	roots []domain.PypiRequirement,
	locked *domain.LockedPlatform,
	records map[string]domain.LockedRecord,
	visitedRecords map[string]struct{},
	platform domain.Platform,
) error {
	wheels := make(map[domain.PackageName]domain.LockedWheel, len(locked.Wheels))
	for _, w := range locked.Wheels {
		if _, dup := wheels[w.Package.Name]; dup {
			return &PlatformUnsat{Kind: DuplicateEntry, Platform: platform, Packages: []string{w.Package.Name.String()}}
		}
		wheels[w.Package.Name] = w
	}
	if len(roots) == 0 {
		if len(wheels) == 0 {
			return nil
		}
		extra := make([]string, 0, len(wheels))
		for name := range wheels {
			extra = append(extra, name.String())
		}
		slices.Sort(extra)
		return &PlatformUnsat{Kind: TooManyPypiPackages, Platform: platform, Packages: extra}
	}

	python, ok := domain.FindPython(lockedValues(records))
	if !ok {
		return &PlatformUnsat{Kind: MissingPythonInterpreter, Platform: platform}
	}
	pythonVersion := python.PackageVersion()
	markerEnv := domain.MarkerEnvFor(platform, pythonVersion)

	provided := make(map[domain.PackageName]domain.LockedRecord)
	for name := range visitedRecords {
		for _, purl := range domain.ProvidedPypiNames(records[name]) {
			provided[purl] = records[name]
		}
	}

	activated := make(map[domain.PackageName]map[domain.PackageName]struct{})
	var queue []wheelVisit
	for _, req := range roots {
		if req.Marker.Evaluate(markerEnv) {
			queue = append(queue, wheelVisit{req: req})
		}
	}

	for len(queue) > 0 {
		visit := queue[0]
		queue = queue[1:]
		req := visit.req

		if record, ok := provided[req.Name]; ok {
			if req.IsDirect() {
				return &PlatformUnsat{Kind: CondaPackageShouldBePypi, Platform: platform, Packages: []string{req.Name.String()},
					Detail: "provided by conda package " + record.PackageName()}
			}
			if !req.Specifier.Matches(record.PackageVersion()) {
				return &PlatformUnsat{Kind: UnsatisfiableRequirement, Platform: platform, Packages: []string{req.String()},
					Detail: "the conda package " + record.PackageName() + " " + record.PackageVersion() + " does not match"}
			}
			continue
		}

		wheel, ok := wheels[req.Name]
		if !ok {
			return &PlatformUnsat{Kind: UnsatisfiableRequirement, Platform: platform, Packages: []string{req.String()}}
		}
		if err := c.verifyWheelRequirement(req, wheel, visit.parent == "", platform); err != nil {
			return err
		}
		if wheel.Package.RequiresPython != "" {
			spec, err := domain.ParseVersionSpec(wheel.Package.RequiresPython)
			if err != nil {
				return &PlatformUnsat{Kind: InvalidRequirement, Platform: platform, Packages: []string{wheel.Package.Name.String()},
					Detail: err.Error()}
			}
			if !spec.Matches(pythonVersion) {
				return &PlatformUnsat{Kind: PythonVersionMismatch, Platform: platform, Packages: []string{wheel.Package.Name.String()},
					Detail: "python " + pythonVersion + " does not satisfy " + wheel.Package.RequiresPython}
			}
		}

		extras, seen := activated[req.Name]
		if !seen {
			extras = make(map[domain.PackageName]struct{})
			activated[req.Name] = extras
		}
		var newExtras []domain.PackageName
		for _, extra := range req.Extras {
			if _, ok := extras[extra]; !ok {
				extras[extra] = struct{}{}
				newExtras = append(newExtras, extra)
			}
		}
		if seen && len(newExtras) == 0 {
			continue
		}

		deps, err := wheel.Package.Requirements()
		if err != nil {
			return &PlatformUnsat{Kind: InvalidRequirement, Platform: platform, Packages: []string{wheel.Package.Name.String()},
				Detail: err.Error()}
		}
		for _, dep := range deps {
			if dependencyActive(dep, markerEnv, seen, newExtras) {
				queue = append(queue, wheelVisit{req: dep, parent: wheel.Package.Name.String()})
			}
		}
	}

	var extra []string
	for name := range wheels {
		if _, ok := activated[name]; !ok {
			extra = append(extra, name.String())
		}
	}
	if len(extra) > 0 {
		slices.Sort(extra)
		return &PlatformUnsat{Kind: TooManyPypiPackages, Platform: platform, Packages: extra}
	}
	return nil
}

// dependencyActive evaluates the marker of a requires-dist entry. On the first visit of a package
// the entry is evaluated without extras and with each newly activated extra; on later visits only
// the new extras can activate entries that were not followed yet.
func dependencyActive(dep domain.PypiRequirement, env domain.MarkerEnv, seen bool, newExtras []domain.PackageName) bool {
	if !seen && dep.Marker.Evaluate(env) {
		return true
	}
	if !dep.Marker.ReferencesExtra() {
		return false
	}
	for _, extra := range newExtras {
		if dep.Marker.Evaluate(env.WithExtra(extra.String())) {
			return true
		}
	}
	return false
}

func (c *Checker) verifyWheelRequirement(req domain.PypiRequirement, wheel domain.LockedWheel, root bool, platform domain.Platform) error {
	pkg := wheel.Package
	unsat := func(kind PlatformUnsatKind, detail string) error {
		return &PlatformUnsat{Kind: kind, Platform: platform, Packages: []string{req.String()}, Detail: detail}
	}

	switch {
	case req.Path != "":
		if filepath.Clean(pkg.Location) != filepath.Clean(req.Path) {
			return unsat(UnsatisfiableRequirement, "locked from "+pkg.Location)
		}
		if root && pkg.Editable != req.Editable {
			return &PlatformUnsat{Kind: EditablePackageMismatch, Platform: platform, Packages: []string{req.Name.String()}}
		}
		return c.verifySourceTree(req, pkg, platform)
	case req.Git != "":
		if !strings.HasPrefix(pkg.Location, "git+"+req.Git) {
			return unsat(UnsatisfiableRequirement, "locked from "+pkg.Location)
		}
		if req.Rev != "" && !strings.Contains(pkg.Location, "@"+req.Rev) {
			return unsat(UnsatisfiableRequirement, "locked at a different revision")
		}
		return nil
	case req.URL != "":
		if stripFragment(pkg.Location) != stripFragment(req.URL) {
			return unsat(UnsatisfiableRequirement, "locked from "+pkg.Location)
		}
		return nil
	default:
		if !req.Specifier.Matches(pkg.Version) {
			return unsat(UnsatisfiableRequirement, "locked version is "+pkg.Version)
		}
		return nil
	}
}

func (c *Checker) verifySourceTree(req domain.PypiRequirement, pkg domain.WheelPackageData, platform domain.Platform) error {
	if c.hasher == nil || pkg.Hash == "" {
		return nil
	}
	path := req.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.root, path)
	}
	hash, err := c.hasher.HashSourceTree(path)
	if err != nil {
		return &PlatformUnsat{Kind: SourceTreeHashMismatch, Platform: platform, Packages: []string{req.Name.String()},
			Detail: err.Error()}
	}
	if hash != pkg.Hash {
		return &PlatformUnsat{Kind: SourceTreeHashMismatch, Platform: platform, Packages: []string{req.Name.String()}}
	}
	return nil
}

func stripFragment(location string) string {
	location, _, _ = strings.Cut(location, "#")
	return location
}

func lockedValues(records map[string]domain.LockedRecord) []domain.LockedRecord {
	out := make([]domain.LockedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	return out
}
