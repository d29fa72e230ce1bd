// Package pypi reads, installs and removes Python distributions in site-packages and prepares
// the wheel archives they are installed from.
package pypi

import (
	"bufio"
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SitePackages = (*SitePackages)(nil)

// SitePackages manages the distributions of a site-packages directory.
type SitePackages struct {
	logger ports.Logger
}

// NewSitePackages creates a new SitePackages.
func NewSitePackages(logger ports.Logger) *SitePackages {
	return &SitePackages{logger: logger}
}

// Installed returns every .dist-info and .egg-info distribution in sitePackages. A missing
// directory holds no distributions.
func (s *SitePackages) Installed(ctx context.Context, sitePackages string) ([]domain.InstalledDist, error) {
	entries, err := os.ReadDir(sitePackages)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSitePackagesReadFailed.Error()), "path", sitePackages)
	}

	var out []domain.InstalledDist
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if !strings.HasSuffix(name, distInfoSuffix) && !strings.HasSuffix(name, eggInfoSuffix) {
			continue
		}
		dist, err := readDist(filepath.Join(sitePackages, name))
		if err != nil {
			return nil, err
		}
		out = append(out, dist)
	}
	return out, nil
}

// Uninstall removes the files a distribution recorded and then its metadata directory.
// Directories emptied inside site-packages are removed as well.
func (s *SitePackages) Uninstall(ctx context.Context, sitePackages string, dist domain.InstalledDist) error {
	if strings.HasSuffix(dist.Path, eggInfoSuffix) {
		return s.uninstallEgg(ctx, sitePackages, dist)
	}

	files, err := readRecord(filepath.Join(dist.Path, "RECORD"))
	if errors.Is(err, iofs.ErrNotExist) {
		return zerr.With(zerr.Wrap(domain.ErrMissingRecord, dist.Name.String()), "path", dist.Path)
	}
	if err != nil {
		return err
	}

	dirs := make(map[string]struct{})
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.FromSlash(rel)
		if !filepath.IsAbs(path) {
			path = filepath.Join(sitePackages, path)
		}
		if err := removeFile(path); err != nil {
			return err
		}
		if strings.HasSuffix(path, ".py") {
			removeBytecode(path)
			dirs[filepath.Join(filepath.Dir(path), "__pycache__")] = struct{}{}
		}
		dirs[filepath.Dir(path)] = struct{}{}
	}

	if err := os.RemoveAll(dist.Path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove distribution metadata"), "path", dist.Path)
	}
	pruneEmptyDirs(sitePackages, dirs)
	s.logger.Debug("uninstalled distribution", "package", dist.Name.String(), "files", len(files))
	return nil
}

// uninstallEgg removes the top level modules of an egg-style distribution.
func (s *SitePackages) uninstallEgg(ctx context.Context, sitePackages string, dist domain.InstalledDist) error {
	f, err := os.Open(filepath.Join(dist.Path, "top_level.txt")) //nolint:gosec // Path is inside site-packages
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrMissingTopLevel, dist.Name.String()), "path", dist.Path)
	}
	defer f.Close() //nolint:errcheck // Read only

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		module := strings.TrimSpace(scanner.Text())
		if module == "" || strings.ContainsAny(module, `/\`) || module == "." || module == ".." {
			continue
		}
		base := filepath.Join(sitePackages, module)
		if err := os.RemoveAll(base); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove module"), "path", base)
		}
		for _, ext := range []string{".py", ".pyc"} {
			if err := removeFile(base + ext); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read top_level.txt"), "path", dist.Path)
	}

	if err := os.RemoveAll(dist.Path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove distribution metadata"), "path", dist.Path)
	}
	s.logger.Debug("uninstalled egg distribution", "package", dist.Name.String())
	return nil
}

// RemoveAll removes a directory tree.
func (s *SitePackages) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove directory"), "path", path)
	}
	return nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove file"), "path", path)
	}
	return nil
}

// removeBytecode removes the compiled files of a module from its __pycache__ directory.
func removeBytecode(module string) {
	stem := strings.TrimSuffix(filepath.Base(module), ".py")
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(module), "__pycache__", stem+".*.pyc"))
	for _, m := range matches {
		_ = os.Remove(m)
	}
}

// pruneEmptyDirs removes emptied directories inside root, deepest first. Directories outside
// root, such as the scripts directory, are left alone.
func pruneEmptyDirs(root string, dirs map[string]struct{}) {
	root = filepath.Clean(root)
	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, filepath.Clean(d))
	}
	slices.SortFunc(sorted, func(a, b string) int { return len(b) - len(a) })
	for _, dir := range sorted {
		for dir != root && strings.HasPrefix(dir, root+string(os.PathSeparator)) {
			if os.Remove(dir) != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
}
