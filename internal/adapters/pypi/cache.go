package pypi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.WheelCache = (*WheelCache)(nil)

// FingerprintFunc summarizes the current state of a local source tree or archive.
type FingerprintFunc func(path string) (string, error)

// WheelCache keeps built and downloaded wheels in a package cache. Entries are keyed by the
// locked location and its hash; local sources are keyed by a fingerprint of their files so an
// edited tree is rebuilt.
type WheelCache struct {
	store       ports.PackageCache
	fingerprint FingerprintFunc
}

// NewWheelCache creates a WheelCache over store.
func NewWheelCache(store ports.PackageCache, fingerprint FingerprintFunc) *WheelCache {
	return &WheelCache{store: store, fingerprint: fingerprint}
}

// Root returns the cache directory.
func (c *WheelCache) Root() string {
	return c.store.Root()
}

// Lookup returns the cached wheel of a locked package. Editable packages are never cached.
func (c *WheelCache) Lookup(pkg domain.WheelPackageData) (string, bool) {
	if pkg.Editable {
		return "", false
	}
	key, err := c.key(pkg)
	if err != nil {
		return "", false
	}
	dir, ok := c.store.Get(key)
	if !ok {
		return "", false
	}
	wheel, err := findWheel(dir)
	if err != nil {
		return "", false
	}
	return wheel, true
}

// Put stores the single wheel fill writes into its directory and returns its cached path.
func (c *WheelCache) Put(ctx context.Context, pkg domain.WheelPackageData, fill func(dir string) error) (string, error) {
	key, err := c.key(pkg)
	if err != nil {
		return "", err
	}
	dir, err := c.store.Put(ctx, key, func(dir string) error {
		if err := fill(dir); err != nil {
			return err
		}
		_, err := findWheel(dir)
		return err
	})
	if err != nil {
		return "", err
	}
	return findWheel(dir)
}

func (c *WheelCache) key(pkg domain.WheelPackageData) (string, error) {
	state := pkg.Hash
	if pkg.IsLocalPath() && c.fingerprint != nil {
		fp, err := c.fingerprint(pkg.Location)
		if err != nil {
			return "", err
		}
		state = fp
	}
	digest := xxhash.New()
	_, _ = digest.WriteString(pkg.Location)
	_, _ = digest.Write([]byte{0})
	_, _ = digest.WriteString(state)
	return fmt.Sprintf("%s-%s-%016x", pkg.Name.String(), pkg.Version, digest.Sum64()), nil
}

// findWheel returns the only wheel archive in dir.
func findWheel(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.whl"))
	if err != nil {
		return "", zerr.Wrap(err, "failed to list wheels")
	}
	if len(matches) != 1 {
		return "", zerr.With(zerr.With(zerr.New("expected exactly one wheel"), "dir", dir), "found", len(matches))
	}
	if info, err := os.Stat(matches[0]); err != nil || info.IsDir() {
		return "", zerr.With(zerr.New("wheel is not a file"), "path", matches[0])
	}
	return matches[0], nil
}

// wheelName returns the file name of a wheel URL.
func wheelName(location string) string {
	location, _, _ = strings.Cut(location, "#")
	location, _, _ = strings.Cut(location, "?")
	return location[strings.LastIndexByte(location, '/')+1:]
}
