// Package manifest loads the pixi.toml project manifest.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestLoader = (*Loader)(nil)

var validEnvironmentNameRegex = regexp.MustCompile("^[a-z0-9-]+$")

// Loader implements ports.ManifestLoader for pixi.toml files.
type Loader struct {
	Logger   ports.Logger
	validate *validator.Validate
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		_, err := domain.ParsePlatform(fl.Field().String())
		return err == nil
	})

	return &Loader{Logger: logger, validate: validate}
}

// Load reads the manifest at path, or discovers it by walking up from cwd when path is empty.
// A directory path selects the pixi.toml inside it.
func (l *Loader) Load(cwd, path string) (*domain.Manifest, error) {
	manifestPath, err := l.findManifest(cwd, path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path is the user's manifest
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", manifestPath)
	}

	var file manifestFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestParseFailed, err.Error()), "path", manifestPath)
	}
	if err := l.validateFile(&file); err != nil {
		return nil, zerr.With(err, "path", manifestPath)
	}

	m, err := newBuilder(&file).build()
	if err != nil {
		return nil, zerr.With(err, "path", manifestPath)
	}
	m.Path = manifestPath
	m.Root = filepath.Dir(manifestPath)
	l.Logger.Debug("loaded manifest", "path", manifestPath, "environments", len(m.Environments))
	return m, nil
}

func (l *Loader) findManifest(cwd, path string) (string, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, domain.ManifestFileName)
		}
		if _, err := os.Stat(path); err != nil {
			return "", zerr.With(zerr.Wrap(domain.ErrManifestNotFound, "manifest path does not exist"), "path", path)
		}
		return filepath.Clean(path), nil
	}

	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ManifestFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrManifestNotFound, "searched up to the filesystem root"), "cwd", cwd)
}

func (l *Loader) validateFile(file *manifestFile) error {
	if file.Project == nil && file.Workspace == nil {
		return zerr.Wrap(domain.ErrManifestInvalid, "missing [project] or [workspace] table")
	}
	if file.Project != nil && file.Workspace != nil {
		return zerr.Wrap(domain.ErrManifestInvalid, "[project] and [workspace] cannot both be set")
	}

	err := l.validate.Struct(file)
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		field := strings.TrimPrefix(fe.Namespace(), "manifestFile.")
		msg := fmt.Sprintf("%s failed the %q check", field, fe.Tag())
		return zerr.With(zerr.Wrap(domain.ErrManifestInvalid, msg), "value", fe.Value())
	}
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestInvalid.Error())
	}
	return nil
}

func (f *manifestFile) project() *projectTable {
	if f.Workspace != nil {
		return f.Workspace
	}
	return f.Project
}

// defaultFeature returns the root level tables as a feature.
func (f *manifestFile) defaultFeature() *featureTable {
	return &featureTable{
		Channels:           f.project().Channels,
		Platforms:          f.project().Platforms,
		Dependencies:       f.Dependencies,
		PypiDependencies:   f.PypiDependencies,
		SystemRequirements: f.SystemRequirements,
		PypiOptions:        f.PypiOptions,
		Target:             f.Target,
	}
}

func validateEnvironmentName(name string) error {
	if !validEnvironmentNameRegex.MatchString(name) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidEnvironmentName, name), "environment", name)
	}
	return nil
}

// environmentNames returns the declared environment names with the default environment first.
func environmentNames(envs map[string]any) []string {
	names := make([]string, 0, len(envs)+1)
	names = append(names, domain.DefaultEnvironmentName)
	for name := range envs {
		if name != domain.DefaultEnvironmentName {
			names = append(names, name)
		}
	}
	slices.Sort(names[1:])
	return names
}
