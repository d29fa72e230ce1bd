// Package cas implements the content keyed package cache shared by every prefix.
package cas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.PackageCache = (*Store)(nil)

// CacheDirEnv overrides the cache location.
const CacheDirEnv = "PIXI_CACHE_DIR"

// tmpPrefix marks directories that are still being filled.
const tmpPrefix = ".tmp-"

// Dir returns the cache directory for sub, below $PIXI_CACHE_DIR or the user cache directory.
func Dir(sub string) (string, error) {
	if dir := os.Getenv(CacheDirEnv); dir != "" {
		return filepath.Join(dir, sub), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", zerr.Wrap(err, "failed to determine user cache directory")
	}
	return filepath.Join(base, domain.InstallerName, sub), nil
}

// Store is a directory per key. Entries are filled in a temporary directory and renamed into
// place, so an entry that exists is complete.
type Store struct {
	root  string
	group singleflight.Group
}

// NewStore creates a Store rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the cache directory.
func (s *Store) Root() string {
	return s.root
}

// Get returns the directory of key when it has been published.
func (s *Store) Get(key string) (string, bool) {
	dir := s.entryPath(key)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

// Put publishes the directory filled by fill under key. Concurrent callers for one key share a
// single fill; a caller whose ctx ends stops waiting without canceling the others.
func (s *Store) Put(ctx context.Context, key string, fill func(dir string) error) (string, error) {
	if dir, ok := s.Get(key); ok {
		return dir, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		return s.fill(key, fill)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil //nolint:forcetypeassert // fill only returns strings
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Store) fill(key string, fill func(dir string) error) (string, error) {
	if dir, ok := s.Get(key); ok {
		return dir, nil
	}
	if err := os.MkdirAll(s.root, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", s.root)
	}

	tmp := filepath.Join(s.root, tmpPrefix+uuid.NewString())
	if err := os.Mkdir(tmp, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", tmp)
	}
	if err := fill(tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return "", zerr.With(err, "key", key)
	}

	dir := s.entryPath(key)
	if err := os.Rename(tmp, dir); err != nil {
		_ = os.RemoveAll(tmp)
		// Another process published the same key first.
		if existing, ok := s.Get(key); ok {
			return existing, nil
		}
		return "", zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "key", key)
	}
	return dir, nil
}

// Prune removes leftovers of fills that were interrupted.
func (s *Store) Prune() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read cache directory"), "path", s.root)
	}
	var errs []error
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), tmpPrefix) {
			errs = append(errs, os.RemoveAll(filepath.Join(s.root, e.Name())))
		}
	}
	return errors.Join(errs...)
}

// entryPath keeps readable keys as directory names and hashes the rest.
func (s *Store) entryPath(key string) string {
	if validName(key) {
		return filepath.Join(s.root, key)
	}
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(s.root, hex.EncodeToString(hash[:]))
}

func validName(key string) bool {
	if key == "" || key == "." || key == ".." || strings.HasPrefix(key, tmpPrefix) {
		return false
	}
	return !strings.ContainsAny(key, `/\:*?"<>|`)
}
