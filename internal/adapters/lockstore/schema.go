package lockstore

// lockFileDTO is the on-disk shape of pixi.lock. Packages are stored once and referenced by
// location from every environment and platform that locks them.
type lockFileDTO struct {
	Version      int                        `yaml:"version"`
	Environments map[string]*environmentDTO `yaml:"environments"`
	Packages     []*packageDTO              `yaml:"packages"`
}

type environmentDTO struct {
	Channels []channelDTO               `yaml:"channels"`
	Indexes  *indexesDTO                `yaml:"indexes,omitempty"`
	Packages map[string][]packageRefDTO `yaml:"packages"`
}

type indexesDTO struct {
	IndexURL       string   `yaml:"index-url,omitempty"`
	ExtraIndexURLs []string `yaml:"extra-index-urls,omitempty"`
	FindLinks      []string `yaml:"find-links,omitempty"`
}

type channelDTO struct {
	URL string `yaml:"url"`
}

// packageRefDTO points at an entry of the package list. Exactly one location key is set.
type packageRefDTO struct {
	Conda  string   `yaml:"conda,omitempty"`
	Source string   `yaml:"source,omitempty"`
	Pypi   string   `yaml:"pypi,omitempty"`
	Extras []string `yaml:"extras,omitempty,flow"`
}

// packageDTO is one locked package. Conda holds the archive URL of a binary package, Source
// the path of a package built from source and Pypi the location of a wheel package.
type packageDTO struct {
	Conda  string `yaml:"conda,omitempty"`
	Source string `yaml:"source,omitempty"`
	Pypi   string `yaml:"pypi,omitempty"`

	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Build       string   `yaml:"build,omitempty"`
	BuildNumber int      `yaml:"build_number,omitempty"`
	Subdir      string   `yaml:"subdir,omitempty"`
	Channel     string   `yaml:"channel,omitempty"`
	SHA256      string   `yaml:"sha256,omitempty"`
	Size        int64    `yaml:"size,omitempty"`
	Depends     []string `yaml:"depends,omitempty"`
	Constrains  []string `yaml:"constrains,omitempty"`
	Purls       []string `yaml:"purls,omitempty"`
	InputHash   string   `yaml:"input_hash,omitempty"`

	RequiresDist   []string `yaml:"requires_dist,omitempty"`
	RequiresPython string   `yaml:"requires_python,omitempty"`
	Editable       bool     `yaml:"editable,omitempty"`
}
