package fs

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// sourceNoise are build byproducts and VCS state that never change what a wheel contains.
var sourceNoise = []string{
	"{.git,.hg,.svn,.tox,.nox,.venv,.pixi,build,dist}",
	"*.egg-info",
	"{__pycache__,**/__pycache__}",
	"**/*.pyc",
}

// SourceFingerprint summarizes every file of a local source tree or archive by path, size and
// modification time. It changes whenever a file is added, removed or touched, without reading
// file contents.
func SourceFingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to stat source"), "path", path)
	}

	digest := xxhash.New()
	if !info.IsDir() {
		writeStat(digest, filepath.Base(path), info)
		return fmt.Sprintf("%016x", digest.Sum64()), nil
	}

	for rel, err := range NewWalker(sourceNoise...).Files(path) {
		if err != nil {
			return "", err
		}
		fi, err := os.Lstat(filepath.Join(path, filepath.FromSlash(rel)))
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to stat source file"), "path", rel)
		}
		writeStat(digest, rel, fi)
	}
	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

func writeStat(digest *xxhash.Digest, name string, info os.FileInfo) {
	_, _ = digest.WriteString(name)
	_, _ = digest.Write([]byte{0})
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(info.Size()))                //nolint:gosec // Sizes are never negative
	binary.LittleEndian.PutUint64(buf[8:], uint64(info.ModTime().UnixNano())) //nolint:gosec // Only used as hash input
	_, _ = digest.Write(buf[:])
}
