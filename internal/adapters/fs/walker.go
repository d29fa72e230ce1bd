// Package fs provides file system adapters for walking trees, hashing source trees and locking prefixes.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/gobwas/glob"
	"go.trai.ch/zerr"
)

// Walker enumerates the files of a directory tree.
type Walker struct {
	skip []glob.Glob
}

// NewWalker creates a Walker that leaves out entries whose slash separated path relative to
// the walked root matches one of the skip patterns. A skipped directory is not descended into.
// Patterns use glob syntax with '/' as separator, so "**" crosses directories and "*" does not.
// It panics on a malformed pattern.
func NewWalker(skip ...string) *Walker {
	w := &Walker{skip: make([]glob.Glob, 0, len(skip))}
	for _, pattern := range skip {
		w.skip = append(w.skip, glob.MustCompile(pattern, '/'))
	}
	return w
}

// Files yields every non-directory entry below root as a slash separated path relative to root,
// in lexical order. A walk error is yielded once with an empty path and ends the iteration.
func (w *Walker) Files(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if w.skipped(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			if !yield(rel, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", zerr.With(zerr.Wrap(err, "failed to walk directory"), "root", root))
		}
	}
}

func (w *Walker) skipped(rel string) bool {
	for _, g := range w.skip {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
