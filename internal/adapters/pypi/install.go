package pypi

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	scriptPerm = 0o755
	// pythonShebang marks scripts whose interpreter line the installer rewrites.
	pythonShebang = "#!python"
)

// layout maps the install schemes of a wheel to slash separated paths relative to the prefix.
type layout struct {
	purelib string
	scripts string
	headers string
	data    string
}

func newLayout(sitePackages string, name domain.PackageName) layout {
	site := path.Clean(filepath.ToSlash(sitePackages))
	scripts := "bin"
	if strings.HasPrefix(site, "Lib/") {
		scripts = "Scripts"
	}
	return layout{
		purelib: site,
		scripts: scripts,
		headers: path.Join("include", name.String()),
		data:    "",
	}
}

// target returns the prefix relative destination of an archive member, and false for members
// that are not installed.
func (l layout) target(member, dataDir string) (string, bool) {
	rest, ok := strings.CutPrefix(member, dataDir+"/")
	if !ok {
		return path.Join(l.purelib, member), true
	}
	scheme, rel, ok := strings.Cut(rest, "/")
	if !ok || rel == "" {
		return "", false
	}
	switch scheme {
	case "purelib", "platlib":
		return path.Join(l.purelib, rel), true
	case "scripts":
		return path.Join(l.scripts, rel), true
	case "headers":
		return path.Join(l.headers, rel), true
	case "data":
		return path.Join(l.data, rel), true
	default:
		return "", false
	}
}

// wheelArchive is an opened wheel with the names of its metadata directories.
type wheelArchive struct {
	*zip.ReadCloser
	distInfo string
	dataDir  string
}

func openWheel(wheel string) (*wheelArchive, error) {
	zr, err := zip.OpenReader(wheel)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open wheel"), "wheel", wheel)
	}
	for _, f := range zr.File {
		dir, file, ok := strings.Cut(f.Name, "/")
		if ok && file == "WHEEL" && strings.HasSuffix(dir, distInfoSuffix) {
			return &wheelArchive{
				ReadCloser: zr,
				distInfo:   dir,
				dataDir:    strings.TrimSuffix(dir, distInfoSuffix) + ".data",
			}, nil
		}
	}
	_ = zr.Close()
	return nil, zerr.With(zerr.New("wheel has no .dist-info/WHEEL file"), "wheel", wheel)
}

func (w *wheelArchive) member(name string) ([]byte, bool) {
	for _, f := range w.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, false
			}
			defer rc.Close() //nolint:errcheck // Read only
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, false
			}
			return data, true
		}
	}
	return nil, false
}

// WheelFiles lists the prefix relative paths the archive members of a wheel install to.
func (s *SitePackages) WheelFiles(wheel, sitePackages string) ([]string, error) {
	w, err := openWheel(wheel)
	if err != nil {
		return nil, err
	}
	defer w.Close() //nolint:errcheck // Read only

	name, _ := splitDistDirName(w.distInfo)
	l := newLayout(sitePackages, domain.NewPackageName(name))

	var files []string
	for _, f := range w.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if rel, ok := l.target(f.Name, w.dataDir); ok {
			files = append(files, rel)
		}
	}
	slices.Sort(files)
	return files, nil
}

// recordEntry is one row of a RECORD file.
type recordEntry struct {
	path string
	hash string
	size int64
}

// Install unpacks a wheel into the prefix of env, generates its entry point scripts and
// records the installed files in RECORD with this tool as INSTALLER.
func (s *SitePackages) Install(
	ctx context.Context,
	env *domain.BuildEnvironment,
	wheel string,
	dist domain.RequiredDist,
) error {
	w, err := openWheel(wheel)
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck // Read only

	l := newLayout(env.Python.SitePackages, dist.Name())
	site := env.SitePackagesPath()
	python := env.PythonPath()

	var record []recordEntry
	for _, f := range w.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() || f.Name == w.distInfo+"/RECORD" {
			continue
		}
		rel, ok := l.target(f.Name, w.dataDir)
		if !ok {
			continue
		}
		dst, err := safeJoin(env.Prefix, rel)
		if err != nil {
			return err
		}

		isScript := strings.HasPrefix(f.Name, w.dataDir+"/scripts/")
		entry, err := extractMember(f, dst, python, isScript)
		if err != nil {
			return zerr.With(err, "member", f.Name)
		}
		entry.path = recordPath(site, dst)
		record = append(record, entry)
	}

	distInfo := filepath.Join(site, w.distInfo)
	extra := map[string][]byte{
		"INSTALLER": []byte(domain.InstallerName + "\n"),
	}
	if du := newDirectURL(dist.Wheel.Package); du != nil {
		data, err := json.Marshal(du)
		if err != nil {
			return zerr.Wrap(err, "failed to encode direct_url.json")
		}
		extra["direct_url.json"] = data
	}
	for _, name := range slices.Sorted(maps.Keys(extra)) {
		entry, err := writeRecorded(filepath.Join(distInfo, name), extra[name], domain.FilePerm)
		if err != nil {
			return err
		}
		entry.path = recordPath(site, filepath.Join(distInfo, name))
		record = append(record, entry)
	}

	if data, ok := w.member(w.distInfo + "/entry_points.txt"); ok {
		scriptsDir := filepath.Join(env.Prefix, filepath.FromSlash(l.scripts))
		scripts, err := writeEntryPoints(data, scriptsDir, python, l.scripts == "Scripts")
		if err != nil {
			return err
		}
		for _, sc := range scripts {
			sc.path = recordPath(site, sc.path)
			record = append(record, sc)
		}
	}

	recordFile := filepath.Join(distInfo, "RECORD")
	if err := writeRecord(recordFile, recordPath(site, recordFile), record); err != nil {
		return err
	}
	s.logger.Debug("installed wheel", "package", dist.Name().String(), "files", len(record))
	return nil
}

func extractMember(f *zip.File, dst, python string, isScript bool) (recordEntry, error) {
	rc, err := f.Open()
	if err != nil {
		return recordEntry{}, err
	}
	defer rc.Close() //nolint:errcheck // Read only

	data, err := io.ReadAll(rc) //nolint:gosec // Wheels are verified by hash before install
	if err != nil {
		return recordEntry{}, err
	}

	perm := os.FileMode(domain.FilePerm)
	if f.Mode()&0o111 != 0 {
		perm = scriptPerm
	}
	if isScript {
		perm = scriptPerm
		if rest, ok := bytes.CutPrefix(data, []byte(pythonShebang)); ok {
			// "#!python" and "#!pythonw" both become the prefix interpreter.
			if i := bytes.IndexByte(rest, '\n'); i >= 0 {
				data = append([]byte("#!"+python), rest[i:]...)
			}
		}
	}
	return writeRecorded(dst, data, perm)
}

// writeRecorded writes a file and returns its RECORD entry without the path.
func writeRecorded(dst string, data []byte, perm os.FileMode) (recordEntry, error) {
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return recordEntry{}, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}
	// Replace rather than truncate so hard links into a package cache are never written through.
	_ = os.Remove(dst)
	if err := os.WriteFile(dst, data, perm); err != nil {
		return recordEntry{}, zerr.With(zerr.Wrap(err, "failed to write file"), "path", dst)
	}
	sum := sha256.Sum256(data)
	return recordEntry{
		hash: "sha256=" + base64.RawURLEncoding.EncodeToString(sum[:]),
		size: int64(len(data)),
	}, nil
}

func writeRecord(dst, self string, entries []recordEntry) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	for _, e := range entries {
		_ = cw.Write([]string{e.path, e.hash, strconv.FormatInt(e.size, 10)})
	}
	_ = cw.Write([]string{self, "", ""})
	cw.Flush()
	if err := cw.Error(); err != nil {
		return zerr.Wrap(err, "failed to encode RECORD")
	}
	if err := os.WriteFile(dst, buf.Bytes(), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write RECORD"), "path", dst)
	}
	return nil
}

// recordPath spells an installed file relative to site-packages, the way RECORD does.
func recordPath(site, path string) string {
	rel, err := filepath.Rel(site, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// entryPoint is a console or gui script declared in entry_points.txt.
type entryPoint struct {
	name   string
	module string
	attr   string
}

// parseEntryPoints returns the console_scripts and gui_scripts of an entry_points.txt file.
func parseEntryPoints(data []byte) []entryPoint {
	var out []entryPoint
	section := ""
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		case section != "console_scripts" && section != "gui_scripts":
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		// Extras in brackets do not change the generated script.
		value, _, _ = strings.Cut(value, "[")
		module, attr, _ := strings.Cut(strings.TrimSpace(value), ":")
		name, module, attr = strings.TrimSpace(name), strings.TrimSpace(module), strings.TrimSpace(attr)
		if name == "" || module == "" || strings.ContainsAny(name, `/\`) {
			continue
		}
		out = append(out, entryPoint{name: name, module: module, attr: attr})
	}
	return out
}

// scriptSource is the launcher generated for an entry point.
func scriptSource(python string, ep entryPoint) string {
	importName, call := ep.module, ep.module
	if ep.attr != "" {
		top, _, _ := strings.Cut(ep.attr, ".")
		importName, call = top, ep.attr
	}
	var b strings.Builder
	b.WriteString("#!" + python + "\n")
	b.WriteString("# -*- coding: utf-8 -*-\n")
	b.WriteString("import re\nimport sys\n")
	if ep.attr != "" {
		b.WriteString("from " + ep.module + " import " + importName + "\n")
	} else {
		b.WriteString("import " + importName + "\n")
	}
	b.WriteString("if __name__ == \"__main__\":\n")
	b.WriteString("    sys.argv[0] = re.sub(r\"(-script\\.pyw|\\.exe)?$\", \"\", sys.argv[0])\n")
	b.WriteString("    sys.exit(" + call + "())\n")
	return b.String()
}

// writeEntryPoints generates the launcher scripts and returns their RECORD entries with
// absolute paths.
// On Windows only the "-script.py" half of a launcher is written.
func writeEntryPoints(data []byte, scriptsDir, python string, windows bool) ([]recordEntry, error) {
	var out []recordEntry
	for _, ep := range parseEntryPoints(data) {
		dst := filepath.Join(scriptsDir, ep.name)
		if windows {
			dst += "-script.py"
		}
		entry, err := writeRecorded(dst, []byte(scriptSource(python, ep)), scriptPerm)
		if err != nil {
			return nil, err
		}
		entry.path = dst
		out = append(out, entry)
	}
	return out, nil
}

// safeJoin rejects destinations outside the prefix.
func safeJoin(prefix, rel string) (string, error) {
	root := filepath.Clean(prefix)
	dst := filepath.Join(root, filepath.FromSlash(rel))
	if dst != root && !strings.HasPrefix(dst, root+string(os.PathSeparator)) {
		return "", zerr.With(zerr.New("wheel member escapes the prefix"), "path", rel)
	}
	return dst, nil
}
