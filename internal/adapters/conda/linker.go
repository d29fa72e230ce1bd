package conda

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pixi/internal/adapters/fs"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PrefixLinker = (*Linker)(nil)

// prefixRecord is the conda-meta entry of an installed package.
type prefixRecord struct {
	*domain.BinaryRecord
	Files               []string `json:"files"`
	ExtractedPackageDir string   `json:"extracted_package_dir,omitempty"`
}

// pathsJSON is the info/paths.json manifest of an extracted package.
type pathsJSON struct {
	Paths []struct {
		Path              string `json:"_path"`
		PrefixPlaceholder string `json:"prefix_placeholder"`
		FileMode          string `json:"file_mode"`
	} `json:"paths"`
}

type placeholder struct {
	value  string
	binary bool
}

// Linker links extracted packages into prefixes. Files are hard linked from the package cache
// when possible and copied otherwise; files carrying a prefix placeholder are always rewritten.
type Linker struct {
	walker *fs.Walker
}

// NewLinker creates a new Linker.
func NewLinker() *Linker {
	// info/ holds package metadata and is never linked.
	return &Linker{walker: fs.NewWalker("info")}
}

// Installed returns the records of every conda-meta entry of the prefix.
func (l *Linker) Installed(prefix string) ([]*domain.BinaryRecord, error) {
	entries, err := l.entries(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.BinaryRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.BinaryRecord)
	}
	return out, nil
}

// Files returns the prefix relative files of every installed package, keyed by package name.
func (l *Linker) Files(prefix string) (map[string][]string, error) {
	entries, err := l.entries(prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Files
	}
	return out, nil
}

// Link places the files of an extracted package in the prefix and records them in conda-meta.
func (l *Linker) Link(ctx context.Context, prefix, extracted string, record *domain.BinaryRecord) error {
	placeholders, err := readPlaceholders(extracted)
	if err != nil {
		return err
	}

	var files []string
	for rel, err := range l.walker.Files(extracted) {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		src := filepath.Join(extracted, filepath.FromSlash(rel))
		dst := filepath.Join(prefix, filepath.FromSlash(rel))
		if err := linkFile(src, dst, prefix, placeholders[rel]); err != nil {
			return zerr.With(err, "file", rel)
		}
		files = append(files, rel)
	}
	slices.Sort(files)

	entry := prefixRecord{BinaryRecord: record, Files: files, ExtractedPackageDir: extracted}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to encode package record")
	}
	return writeFileAtomic(l.metaPath(prefix, record), data)
}

// Unlink removes the files of an installed package, the directories it leaves empty and its
// conda-meta entry.
func (l *Linker) Unlink(ctx context.Context, prefix string, record *domain.BinaryRecord) error {
	metaPath := l.metaPath(prefix, record)
	entry, err := readEntry(metaPath)
	if errors.Is(err, iofs.ErrNotExist) {
		// The entry may be named after a different archive of the same package.
		entry, metaPath, err = l.findEntry(prefix, record.Name)
	}
	if err != nil {
		return err
	}

	dirs := make(map[string]struct{})
	for _, rel := range entry.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(prefix, filepath.FromSlash(rel))
		if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, "failed to remove file"), "path", path)
		}
		dirs[filepath.Dir(path)] = struct{}{}
	}
	pruneEmptyDirs(prefix, dirs)

	if err := os.Remove(metaPath); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove package record"), "path", metaPath)
	}
	return nil
}

func (l *Linker) metaPath(prefix string, record *domain.BinaryRecord) string {
	return filepath.Join(prefix, domain.CondaMetaDirName, record.DistName()+".json")
}

func (l *Linker) entries(prefix string) ([]prefixRecord, error) {
	dir := filepath.Join(prefix, domain.CondaMetaDirName)
	files, err := os.ReadDir(dir)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read conda-meta"), "path", dir)
	}

	var out []prefixRecord
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := readEntry(filepath.Join(dir, f.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func (l *Linker) findEntry(prefix, name string) (prefixRecord, string, error) {
	entries, err := l.entries(prefix)
	if err != nil {
		return prefixRecord{}, "", err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, l.metaPath(prefix, e.BinaryRecord), nil
		}
	}
	return prefixRecord{}, "", zerr.With(zerr.New("package is not installed"), "package", name)
}

func readEntry(path string) (prefixRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is inside conda-meta
	if err != nil {
		return prefixRecord{}, zerr.With(zerr.Wrap(err, "failed to read package record"), "path", path)
	}
	var entry prefixRecord
	if err := json.Unmarshal(data, &entry); err != nil {
		return prefixRecord{}, zerr.With(zerr.Wrap(err, "failed to decode package record"), "path", path)
	}
	if entry.BinaryRecord == nil || entry.Name == "" {
		return prefixRecord{}, zerr.With(zerr.New("package record has no name"), "path", path)
	}
	return entry, nil
}

func readPlaceholders(extracted string) (map[string]placeholder, error) {
	path := filepath.Join(extracted, "info", "paths.json")
	data, err := os.ReadFile(path) //nolint:gosec // Path is inside the package cache
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read paths.json"), "path", path)
	}

	var paths pathsJSON
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decode paths.json"), "path", path)
	}
	out := make(map[string]placeholder)
	for _, p := range paths.Paths {
		if p.PrefixPlaceholder != "" {
			out[p.Path] = placeholder{value: p.PrefixPlaceholder, binary: p.FileMode == "binary"}
		}
	}
	return out, nil
}

func linkFile(src, dst, prefix string, ph placeholder) error {
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return err
	}
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	// A later package overwrites files of an earlier one.
	if err := os.Remove(dst); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case ph.value != "":
		data, err := os.ReadFile(src) //nolint:gosec // Path is inside the package cache
		if err != nil {
			return err
		}
		data, err = replacePrefix(data, ph.value, prefix, ph.binary)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, info.Mode().Perm())
	default:
		if err := os.Link(src, dst); err == nil {
			return nil
		}
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // Path is inside the package cache
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read only

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // Path is inside the prefix
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// pruneEmptyDirs removes directories emptied by an unlink, walking up until the prefix.
func pruneEmptyDirs(prefix string, dirs map[string]struct{}) {
	root := filepath.Clean(prefix)
	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	// Deepest first so parents are empty by the time they are visited.
	slices.SortFunc(sorted, func(a, b string) int { return len(b) - len(a) })
	for _, dir := range sorted {
		for dir != root && strings.HasPrefix(dir, root+string(os.PathSeparator)) {
			if os.Remove(dir) != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(path))
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temporary file"), "path", path)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set permissions"), "path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace file"), "path", path)
	}
	return nil
}
