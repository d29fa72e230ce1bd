package manifest

// manifestFile is the decoded pixi.toml. The root level dependency tables form the default feature.
type manifestFile struct {
	Project   *projectTable `toml:"project"`
	Workspace *projectTable `toml:"workspace"`

	Dependencies       map[string]any          `toml:"dependencies"`
	PypiDependencies   map[string]any          `toml:"pypi-dependencies"`
	SystemRequirements map[string]any          `toml:"system-requirements"`
	PypiOptions        *pypiOptions            `toml:"pypi-options"`
	Target             map[string]*targetTable `toml:"target" validate:"dive,keys,platform,endkeys"`

	Features     map[string]*featureTable `toml:"feature" validate:"dive"`
	Environments map[string]any           `toml:"environments"`
}

// projectTable is the [project] or [workspace] table.
type projectTable struct {
	Name      string   `toml:"name" validate:"required"`
	Version   string   `toml:"version"`
	Channels  []string `toml:"channels" validate:"required,min=1,dive,required"`
	Platforms []string `toml:"platforms" validate:"required,min=1,dive,platform"`
}

type featureTable struct {
	Channels           []string                `toml:"channels" validate:"dive,required"`
	Platforms          []string                `toml:"platforms" validate:"dive,platform"`
	Dependencies       map[string]any          `toml:"dependencies"`
	PypiDependencies   map[string]any          `toml:"pypi-dependencies"`
	SystemRequirements map[string]any          `toml:"system-requirements"`
	PypiOptions        *pypiOptions            `toml:"pypi-options"`
	Target             map[string]*targetTable `toml:"target" validate:"dive,keys,platform,endkeys"`
}

type targetTable struct {
	Dependencies     map[string]any `toml:"dependencies"`
	PypiDependencies map[string]any `toml:"pypi-dependencies"`
}

type pypiOptions struct {
	IndexURL         string     `toml:"index-url" validate:"omitempty,url"`
	ExtraIndexURLs   []string   `toml:"extra-index-urls" validate:"dive,url"`
	FindLinks        []findLink `toml:"find-links" validate:"dive"`
	NoBuildIsolation []string   `toml:"no-build-isolation"`
}

type findLink struct {
	Path string `toml:"path" validate:"required_without=URL"`
	URL  string `toml:"url" validate:"omitempty,url"`
}

// location returns the path or URL of the link.
func (f findLink) location() string {
	if f.URL != "" {
		return f.URL
	}
	return f.Path
}
