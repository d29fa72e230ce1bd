// Package lockstore reads and writes the pixi.lock lock file.
package lockstore

import (
	"bytes"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.LockFileStore = (*Store)(nil)

// Store implements ports.LockFileStore with YAML files.
type Store struct {
	logger ports.Logger
}

// NewStore creates a new Store.
func NewStore(logger ports.Logger) *Store {
	return &Store{logger: logger}
}

// Exists reports whether a lock file exists at path.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the lock file at path. A missing file yields an empty lock file.
func (s *Store) Load(path string) (*domain.LockFile, error) {
	// #nosec G304 -- path is the project's lock file
	data, err := os.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return domain.NewLockFile(), nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFileReadFailed.Error()), "path", path)
	}

	lf, err := Decode(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	s.logger.Debug("loaded lock file", "path", path, "version", lf.Version, "environments", len(lf.Environments))
	return lf, nil
}

// WriteToDisk replaces the lock file at path atomically.
func (s *Store) WriteToDisk(path string, lf *domain.LockFile) error {
	data, err := Encode(lf)
	if err != nil {
		return zerr.With(err, "path", path)
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".pixi-lock-*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrLockFileWriteFailed.Error()), "path", path)
	}
	tmpName := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if _, err := os.Stat(tmpName); err == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrLockFileWriteFailed.Error()), "path", path)
	}
	if err := tmpFile.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrLockFileWriteFailed.Error()), "path", path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrLockFileWriteFailed.Error()), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrLockFileWriteFailed.Error()), "path", path)
	}

	s.logger.Debug("wrote lock file", "path", path)
	return nil
}

// Encode serializes a lock file in the current format.
func Encode(lf *domain.LockFile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toDTO(lf)); err != nil {
		return nil, zerr.Wrap(err, domain.ErrLockFileWriteFailed.Error())
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrLockFileWriteFailed.Error())
	}
	return buf.Bytes(), nil
}

// Decode parses lock file content. Files written by a newer format version are rejected.
func Decode(data []byte) (*domain.LockFile, error) {
	var header struct {
		Version int `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, zerr.Wrap(err, domain.ErrLockFileParseFailed.Error())
	}
	if header.Version > domain.LockFileVersion {
		err := zerr.With(zerr.Wrap(domain.ErrLockFileVersionTooNew, "unsupported lock file version"), "version", header.Version)
		return nil, zerr.With(err, "supported", domain.LockFileVersion)
	}

	var dto lockFileDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, zerr.Wrap(err, domain.ErrLockFileParseFailed.Error())
	}
	return fromDTO(&dto)
}
