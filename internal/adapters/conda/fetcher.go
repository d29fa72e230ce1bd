// Package conda downloads, extracts and links binary packages and reads the conda-meta
// directory of a prefix.
package conda

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dustin/go-humanize"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PackageFetcher = (*Fetcher)(nil)

const defaultMaxTries = 3

// Fetcher downloads package archives into the package cache and extracts them there.
type Fetcher struct {
	cache    ports.PackageCache
	client   *http.Client
	logger   ports.Logger
	maxTries uint
	backoff  func() backoff.BackOff
}

// NewFetcher creates a Fetcher. Transient HTTP failures are retried with exponential backoff.
func NewFetcher(cache ports.PackageCache, client *http.Client, logger ports.Logger) *Fetcher {
	return &Fetcher{
		cache:    cache,
		client:   client,
		logger:   logger,
		maxTries: defaultMaxTries,
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Fetch returns the extracted directory of the record, downloading it on a cache miss.
func (f *Fetcher) Fetch(ctx context.Context, record *domain.BinaryRecord) (string, error) {
	key := record.DistName()
	if dir, ok := f.cache.Get(key); ok {
		return dir, nil
	}
	return f.cache.Put(ctx, key, func(dir string) error {
		return f.download(ctx, record, dir)
	})
}

func (f *Fetcher) download(ctx context.Context, record *domain.BinaryRecord, dest string) error {
	start := time.Now()
	body, err := f.open(ctx, record.URL)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPackageFetchFailed.Error()), "url", record.URL)
	}
	defer body.Close() //nolint:errcheck // Read only

	// The archive sits next to the entry being filled so an interrupted download is pruned with it.
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*-"+record.FileName())
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Best effort cleanup

	digest := sha256.New()
	size, err := io.Copy(tmp, io.TeeReader(body, digest))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPackageFetchFailed.Error()), "url", record.URL)
	}

	if record.SHA256 != "" {
		actual := hex.EncodeToString(digest.Sum(nil))
		if !strings.EqualFold(actual, record.SHA256) {
			err := zerr.With(zerr.Wrap(domain.ErrChecksumMismatch, record.FileName()), "expected", record.SHA256)
			return zerr.With(err, "actual", actual)
		}
	}

	if err := extractArchive(tmp.Name(), record.FileName(), dest); err != nil {
		return err
	}
	f.logger.Debug("downloaded package",
		"package", record.DistName(),
		"size", humanize.Bytes(uint64(size)), //nolint:gosec // Size is never negative
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// open reads an http(s) URL, a file URL or a plain path.
func (f *Fetcher) open(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// No scheme, or a Windows drive letter.
		return os.Open(location) //nolint:gosec // Location comes from the lock file
	}

	switch u.Scheme {
	case "file":
		return os.Open(filepath.FromSlash(u.Path)) //nolint:gosec // Location comes from the lock file
	case "http", "https":
		return backoff.Retry(ctx, func() (io.ReadCloser, error) {
			return f.get(ctx, location)
		}, backoff.WithBackOff(f.backoff()), backoff.WithMaxTries(f.maxTries))
	default:
		return nil, zerr.With(zerr.New("unsupported url scheme"), "scheme", u.Scheme)
	}
}

func (f *Fetcher) get(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}

	_ = resp.Body.Close()
	statusErr := zerr.With(zerr.New("unexpected http status"), "status", resp.Status)
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, statusErr
	}
	return nil, backoff.Permanent(statusErr)
}
