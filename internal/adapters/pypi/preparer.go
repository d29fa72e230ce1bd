package pypi

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.WheelPreparer = (*Preparer)(nil)

const defaultMaxTries = 3

// Preparer turns locked distributions into wheel archives: pre-built wheels are downloaded,
// everything else is built with the build environment's pip. Results land in the wheel cache.
type Preparer struct {
	cache    *WheelCache
	executor ports.Executor
	client   *http.Client
	logger   ports.Logger
	maxTries uint
	backoff  func() backoff.BackOff
}

// NewPreparer creates a new Preparer.
func NewPreparer(cache *WheelCache, executor ports.Executor, client *http.Client, logger ports.Logger) *Preparer {
	return &Preparer{
		cache:    cache,
		executor: executor,
		client:   client,
		logger:   logger,
		maxTries: defaultMaxTries,
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Prepare returns the wheel archive of dist, downloading or building it on a cache miss.
// Editable packages get a wheel that points the interpreter at the source tree.
func (p *Preparer) Prepare(
	ctx context.Context,
	dist domain.RequiredDist,
	build *domain.BuildEnvironment,
) (string, error) {
	pkg := dist.Wheel.Package
	if pkg.Editable {
		return p.editable(pkg)
	}
	if wheel, ok := p.cache.Lookup(pkg); ok {
		return wheel, nil
	}

	return p.cache.Put(ctx, pkg, func(dir string) error {
		if pkg.IsRemoteArchive() {
			return p.download(ctx, pkg, dir)
		}
		return p.build(ctx, dist, build, dir)
	})
}

func (p *Preparer) download(ctx context.Context, pkg domain.WheelPackageData, dir string) error {
	start := time.Now()
	body, err := backoff.Retry(ctx, func() (io.ReadCloser, error) {
		return p.get(ctx, pkg.Location)
	}, backoff.WithBackOff(p.backoff()), backoff.WithMaxTries(p.maxTries))
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPackageFetchFailed.Error()), "url", pkg.Location)
	}
	defer body.Close() //nolint:errcheck // Read only

	name := wheelName(pkg.Location)
	dst := filepath.Join(dir, name)
	f, err := os.Create(dst) //nolint:gosec // Destination is inside the cache
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	digest := sha256.New()
	size, err := io.Copy(f, io.TeeReader(body, digest))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPackageFetchFailed.Error()), "url", pkg.Location)
	}

	if expected := strings.TrimPrefix(pkg.Hash, "sha256:"); expected != "" {
		actual := hex.EncodeToString(digest.Sum(nil))
		if !strings.EqualFold(actual, expected) {
			err := zerr.With(zerr.Wrap(domain.ErrChecksumMismatch, name), "expected", expected)
			return zerr.With(err, "actual", actual)
		}
	}

	p.logger.Debug("downloaded wheel",
		"package", pkg.Name.String(),
		"size", humanize.Bytes(uint64(size)), //nolint:gosec // Size is never negative
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (p *Preparer) get(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := p.client.Do(req)
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

// build runs "pip wheel" for the source of dist inside the build environment.
func (p *Preparer) build(
	ctx context.Context,
	dist domain.RequiredDist,
	env *domain.BuildEnvironment,
	dir string,
) error {
	pkg := dist.Wheel.Package
	if env == nil {
		return zerr.With(zerr.New("no build environment available"), "package", pkg.Name.String())
	}

	args := []string{"-m", "pip", "wheel", "--no-deps", "--disable-pip-version-check", "--wheel-dir", dir}
	if !dist.BuildIsolated {
		args = append(args, "--no-build-isolation")
	}
	args = append(args, pipSource(pkg.Location))

	start := time.Now()
	var output bytes.Buffer
	out := io.MultiWriter(&output, ports.StepOutput(ctx))
	err := p.executor.Execute(ctx, ports.Command{
		Path: env.PythonPath(),
		Args: args,
		Env:  env.Env,
	}, out, out)
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrWheelBuildFailed.Error()), "package", pkg.Name.String())
		return zerr.With(err, "output", lastLines(output.String(), 20))
	}
	p.logger.Debug("built wheel",
		"package", pkg.Name.String(),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// pipSource spells a locked location the way pip accepts it as a requirement.
func pipSource(location string) string {
	if !strings.HasPrefix(location, "git+") {
		return location
	}
	base, commit, _ := strings.Cut(location, "#")
	base, _, _ = strings.Cut(base, "?")
	if commit == "" {
		return base
	}
	return base + "@" + commit
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// pyprojectScripts is the part of pyproject.toml that declares entry point scripts.
type pyprojectScripts struct {
	Project struct {
		Scripts    map[string]string `toml:"scripts"`
		GUIScripts map[string]string `toml:"gui-scripts"`
	} `toml:"project"`
}

// editable writes a wheel whose only module is a .pth file adding the source tree to sys.path.
// Scripts declared in pyproject.toml are carried over as entry points.
func (p *Preparer) editable(pkg domain.WheelPackageData) (string, error) {
	source := pkg.Location
	root := source
	if info, err := os.Stat(filepath.Join(source, "src")); err == nil && info.IsDir() {
		root = filepath.Join(source, "src")
	}

	var scripts pyprojectScripts
	if data, err := os.ReadFile(filepath.Join(source, "pyproject.toml")); err == nil { //nolint:gosec // Locked source path
		if err := toml.Unmarshal(data, &scripts); err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrWheelBuildFailed.Error()), "path", source)
		}
	}

	if err := os.MkdirAll(p.cache.Root(), domain.DirPerm); err != nil {
		return "", zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	dir, err := os.MkdirTemp(p.cache.Root(), ".tmp-editable-*")
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	escaped := strings.ReplaceAll(pkg.Name.String(), "-", "_")
	distInfo := domain.DistInfoDirName(pkg.Name, pkg.Version)
	members := []struct{ name, content string }{
		{"__editable__." + escaped + ".pth", root + "\n"},
		{distInfo + "/METADATA", "Metadata-Version: 2.1\nName: " + pkg.Name.String() + "\nVersion: " + pkg.Version + "\n"},
		{distInfo + "/WHEEL", "Wheel-Version: 1.0\nGenerator: " + domain.InstallerName + "\nRoot-Is-Purelib: true\nTag: py3-none-any\n"},
	}
	if entryPoints := formatEntryPoints(scripts); entryPoints != "" {
		members = append(members, struct{ name, content string }{distInfo + "/entry_points.txt", entryPoints})
	}

	wheel := filepath.Join(dir, escaped+"-"+pkg.Version+"-0.editable-py3-none-any.whl")
	f, err := os.Create(wheel) //nolint:gosec // Destination is inside the cache
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err == nil {
			_, err = io.WriteString(w, m.content)
		}
		if err != nil {
			_ = f.Close()
			return "", zerr.With(zerr.Wrap(err, domain.ErrWheelBuildFailed.Error()), "package", pkg.Name.String())
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return "", zerr.Wrap(err, domain.ErrWheelBuildFailed.Error())
	}
	if err := f.Close(); err != nil {
		return "", zerr.Wrap(err, domain.ErrWheelBuildFailed.Error())
	}
	return wheel, nil
}

func formatEntryPoints(s pyprojectScripts) string {
	var b strings.Builder
	for _, section := range []struct {
		name    string
		entries map[string]string
	}{
		{"console_scripts", s.Project.Scripts},
		{"gui_scripts", s.Project.GUIScripts},
	} {
		if len(section.entries) == 0 {
			continue
		}
		b.WriteString("[" + section.name + "]\n")
		for _, name := range slices.Sorted(maps.Keys(section.entries)) {
			b.WriteString(name + " = " + section.entries[name] + "\n")
		}
	}
	return b.String()
}
