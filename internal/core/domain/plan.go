package domain

// InstallerNames are the INSTALLER values recognised as wheels managed by this tool.
var InstallerNames = []string{InstallerName, "uv-pixi"}

// IsOurInstaller reports whether an INSTALLER value belongs to this tool.
func IsOurInstaller(installer string) bool {
	for _, name := range InstallerNames {
		if installer == name {
			return true
		}
	}
	return false
}

// InstalledDist is a distribution found in site-packages.
type InstalledDist struct {
	Name    PackageName
	Version string
	// Path is the .dist-info or .egg-info directory, absolute.
	Path      string
	Installer string
	// DirectURL is the url recorded in direct_url.json, empty for index installs.
	DirectURL string
	Editable  bool
	// Files are the RECORD entries relative to site-packages.
	Files []string
}

// IsOurs reports whether the distribution was installed by this tool.
func (d InstalledDist) IsOurs() bool {
	return IsOurInstaller(d.Installer)
}

// RequiredDist is a locked wheel that must be present in site-packages.
type RequiredDist struct {
	Wheel LockedWheel
	// CachePath is the local wheel archive when it is already in the cache.
	CachePath string
	// BuildIsolated is false for packages configured to build without isolation.
	BuildIsolated bool
}

// Name returns the normalized package name.
func (d RequiredDist) Name() PackageName {
	return d.Wheel.Package.Name
}

// IsCached reports whether the wheel can be installed from the local cache.
func (d RequiredDist) IsCached() bool {
	return d.CachePath != ""
}

// NeedReinstallKind enumerates the reasons an installed distribution must be replaced.
type NeedReinstallKind int

const (
	ReinstallInstallerMismatch NeedReinstallKind = iota
	ReinstallVersionMismatch
	ReinstallSourceMismatch
	ReinstallMissingDirectURL
	ReinstallURLMismatch
	ReinstallSourceNewerThanCache
	ReinstallEditableStatusChanged
	ReinstallUnableToParseFileURL
	ReinstallUnableToParseInstalledURL
	ReinstallRequested
)

func (k NeedReinstallKind) String() string {
	switch k {
	case ReinstallInstallerMismatch:
		return "installer mismatch"
	case ReinstallVersionMismatch:
		return "version mismatch"
	case ReinstallSourceMismatch:
		return "source mismatch"
	case ReinstallMissingDirectURL:
		return "missing direct url"
	case ReinstallURLMismatch:
		return "url mismatch"
	case ReinstallSourceNewerThanCache:
		return "source newer than cache"
	case ReinstallEditableStatusChanged:
		return "editable status changed"
	case ReinstallUnableToParseFileURL:
		return "unable to parse file url"
	case ReinstallUnableToParseInstalledURL:
		return "unable to parse installed url"
	default:
		return "reinstallation requested"
	}
}

// NeedReinstall is the reason an installed distribution is replaced.
type NeedReinstall struct {
	Kind   NeedReinstallKind
	Detail string
}

func (r NeedReinstall) String() string {
	if r.Detail == "" {
		return r.Kind.String()
	}
	return r.Kind.String() + ": " + r.Detail
}

// Reinstall pairs an installed distribution with the reason it is replaced.
type Reinstall struct {
	Installed InstalledDist
	Reason    NeedReinstall
}

// InstallationPlan is the five-way plan of a wheel reconciliation.
type InstallationPlan struct {
	Cached     []RequiredDist
	Remote     []RequiredDist
	Reinstalls []Reinstall
	Extraneous []InstalledDist
	Duplicates []InstalledDist
}

// IsEmpty reports whether the plan has nothing to do.
func (p *InstallationPlan) IsEmpty() bool {
	return len(p.Cached) == 0 && len(p.Remote) == 0 && len(p.Reinstalls) == 0 &&
		len(p.Extraneous) == 0 && len(p.Duplicates) == 0
}
