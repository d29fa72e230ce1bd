package pypi

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	iofs "io/fs"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	distInfoSuffix = ".dist-info"
	eggInfoSuffix  = ".egg-info"
)

// directURL is the direct_url.json record of a distribution installed from a URL or path.
type directURL struct {
	URL     string   `json:"url"`
	DirInfo *dirInfo `json:"dir_info,omitempty"`
	VCSInfo *vcsInfo `json:"vcs_info,omitempty"`
}

type dirInfo struct {
	Editable bool `json:"editable,omitempty"`
}

type vcsInfo struct {
	VCS      string `json:"vcs"`
	CommitID string `json:"commit_id,omitempty"`
}

// location returns the url the way lock files spell it, with the VCS scheme prefixed.
func (d directURL) location() string {
	if d.VCSInfo == nil {
		return d.URL
	}
	loc := d.VCSInfo.VCS + "+" + d.URL
	if d.VCSInfo.CommitID != "" {
		loc += "#" + d.VCSInfo.CommitID
	}
	return loc
}

// newDirectURL returns the direct_url.json content for a locked location, or nil for
// distributions that come from an index.
func newDirectURL(pkg domain.WheelPackageData) *directURL {
	switch {
	case pkg.IsLocalPath():
		return &directURL{URL: fileURL(pkg.Location), DirInfo: &dirInfo{Editable: pkg.Editable}}
	case strings.HasPrefix(pkg.Location, "git+"):
		u, commit, _ := strings.Cut(strings.TrimPrefix(pkg.Location, "git+"), "#")
		return &directURL{URL: u, VCSInfo: &vcsInfo{VCS: "git", CommitID: commit}}
	default:
		return nil
	}
}

func fileURL(path string) string {
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		// Windows drive paths.
		slashed = "/" + slashed
	}
	return "file://" + slashed
}

// readDist reads the metadata directory of one installed distribution.
func readDist(path string) (domain.InstalledDist, error) {
	base := filepath.Base(path)
	name, version := splitDistDirName(base)
	dist := domain.InstalledDist{
		Name:    domain.NewPackageName(name),
		Version: version,
		Path:    path,
	}

	info, err := os.Stat(path)
	if err != nil {
		return dist, zerr.With(zerr.Wrap(err, "failed to stat distribution"), "path", path)
	}
	if !info.IsDir() {
		// A legacy egg-info file only holds the package metadata.
		return dist, nil
	}

	metaFile := "METADATA"
	if strings.HasSuffix(base, eggInfoSuffix) {
		metaFile = "PKG-INFO"
	}
	if header, err := readHeader(filepath.Join(path, metaFile)); err == nil {
		if v := header.Get("Name"); v != "" {
			dist.Name = domain.NewPackageName(v)
		}
		if v := header.Get("Version"); v != "" {
			dist.Version = v
		}
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return dist, err
	}

	if data, err := os.ReadFile(filepath.Join(path, "INSTALLER")); err == nil { //nolint:gosec // Path is inside site-packages
		dist.Installer = strings.TrimSpace(string(data))
	}

	if data, err := os.ReadFile(filepath.Join(path, "direct_url.json")); err == nil { //nolint:gosec // Path is inside site-packages
		var du directURL
		if err := json.Unmarshal(data, &du); err != nil {
			return dist, zerr.With(zerr.Wrap(err, "failed to decode direct_url.json"), "path", path)
		}
		dist.DirectURL = du.location()
		dist.Editable = du.DirInfo != nil && du.DirInfo.Editable
	}

	files, err := readRecord(filepath.Join(path, "RECORD"))
	switch {
	case err == nil:
		dist.Files = files
	case errors.Is(err, iofs.ErrNotExist):
	default:
		return dist, err
	}
	return dist, nil
}

// splitDistDirName splits "{name}-{version}.dist-info" into its parts.
func splitDistDirName(base string) (string, string) {
	stem := strings.TrimSuffix(strings.TrimSuffix(base, distInfoSuffix), eggInfoSuffix)
	name, version, _ := strings.Cut(stem, "-")
	// Egg names may carry a python tag after the version.
	version, _, _ = strings.Cut(version, "-")
	return name, version
}

func readHeader(path string) (textproto.MIMEHeader, error) {
	f, err := os.Open(path) //nolint:gosec // Path is inside site-packages
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // Read only

	header, err := textproto.NewReader(bufio.NewReader(f)).ReadMIMEHeader()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse metadata"), "path", path)
	}
	return header, nil
}

// readRecord returns the paths listed in a RECORD file, relative to site-packages.
func readRecord(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is inside site-packages
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // Read only

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var files []string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to parse RECORD"), "path", path)
		}
		if len(row) > 0 && row[0] != "" {
			files = append(files, row[0])
		}
	}
}
