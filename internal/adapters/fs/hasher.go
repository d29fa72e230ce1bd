package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceTreeHasher = (*SourceTreeHasher)(nil)

// BuildFiles are the files of a Python source tree that decide what its wheel contains.
var BuildFiles = []string{"pyproject.toml", "setup.py", "setup.cfg"}

// SourceTreeHasher hashes local Python source trees and archives.
type SourceTreeHasher struct{}

// NewSourceTreeHasher creates a new SourceTreeHasher.
func NewSourceTreeHasher() *SourceTreeHasher {
	return &SourceTreeHasher{}
}

// HashSourceTree hashes the build files found directly in a source directory, or the content
// of a source archive. A directory without any build file cannot be hashed.
func (h *SourceTreeHasher) HashSourceTree(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrSourceTreeHashFailed.Error()), "path", path)
	}

	digest := xxhash.New()
	if !info.IsDir() {
		if err := hashFile(digest, filepath.Base(path), path); err != nil {
			return "", err
		}
		return fmt.Sprintf("%016x", digest.Sum64()), nil
	}

	found := 0
	for _, name := range BuildFiles {
		file := filepath.Join(path, name)
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", zerr.With(zerr.Wrap(err, domain.ErrSourceTreeHashFailed.Error()), "path", file)
		}
		if err := hashFile(digest, name, file); err != nil {
			return "", err
		}
		found++
	}
	if found == 0 {
		return "", zerr.With(zerr.Wrap(domain.ErrSourceTreeHashFailed, "no pyproject.toml, setup.py or setup.cfg"),
			"path", path)
	}
	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

// ComputeFileHash computes the XXHash of a file's content.
func ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return digest.Sum64(), nil
}

// hashFile writes the name and the content hash of a file. The name is relative so the hash
// does not depend on where the tree is checked out.
func hashFile(digest io.Writer, name, path string) error {
	_, _ = digest.Write([]byte(name))
	_, _ = digest.Write([]byte{0})

	hash, err := ComputeFileHash(path)
	if err != nil {
		return err
	}
	if err := binary.Write(digest, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
