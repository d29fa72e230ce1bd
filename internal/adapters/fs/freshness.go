package fs

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/zerr"
)

// SourceNewerThanInstall reports whether a local source was modified after the distribution
// built from it was installed. For a directory only the build files count, for an archive its
// own modification time.
func SourceNewerThanInstall(source string, installed domain.InstalledDist) (bool, error) {
	installedAt, err := modTime(installed.Path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(source)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to stat source"), "path", source)
	}
	if !info.IsDir() {
		return info.ModTime().After(installedAt), nil
	}

	for _, name := range BuildFiles {
		changed, err := modTime(filepath.Join(source, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return false, err
		}
		if changed.After(installedAt) {
			return true, nil
		}
	}
	return false, nil
}

func modTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}
	return info.ModTime(), nil
}
