package conda

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/zerr"
)

// extractArchive unpacks a .tar.bz2 or .conda package archive into dest.
func extractArchive(archive, name, dest string) error {
	var err error
	switch {
	case strings.HasSuffix(name, ".tar.bz2"):
		err = extractTarBz2(archive, dest)
	case strings.HasSuffix(name, ".conda"):
		err = extractConda(archive, dest)
	default:
		err = zerr.New("unsupported archive format")
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrExtractFailed.Error()), "archive", name)
	}
	return nil
}

func extractTarBz2(archive, dest string) error {
	f, err := os.Open(archive) //nolint:gosec // Archive lives in the package cache
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // Read only

	return extractTar(bzip2.NewReader(f), dest)
}

// extractConda unpacks the zstd compressed info and pkg tarballs of a .conda archive.
func extractConda(archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close() //nolint:errcheck // Read only

	found := false
	for _, member := range zr.File {
		if !strings.HasSuffix(member.Name, ".tar.zst") {
			continue
		}
		found = true
		if err := extractZstdMember(member, dest); err != nil {
			return zerr.With(err, "member", member.Name)
		}
	}
	if !found {
		return zerr.New("archive contains no package tarball")
	}
	return nil
}

func extractZstdMember(member *zip.File, dest string) error {
	rc, err := member.Open()
	if err != nil {
		return err
	}
	defer rc.Close() //nolint:errcheck // Read only

	dec, err := zstd.NewReader(rc)
	if err != nil {
		return err
	}
	defer dec.Close()

	return extractTar(dec, dest)
}

func extractTar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeDir {
			if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
				return err
			}
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(target, domain.DirPerm)
		case tar.TypeReg:
			err = writeEntry(target, tr, hdr.FileInfo().Mode().Perm())
		case tar.TypeSymlink:
			err = os.Symlink(hdr.Linkname, target)
		case tar.TypeLink:
			var source string
			source, err = safeJoin(dest, hdr.Linkname)
			if err == nil {
				err = os.Link(source, target)
			}
		}
		if err != nil {
			return zerr.With(err, "entry", hdr.Name)
		}
	}
}

func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	//nolint:gosec // Target was checked by safeJoin
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil { //nolint:gosec // Package archives are trusted by checksum
		_ = f.Close()
		return err
	}
	return f.Close()
}

// safeJoin rejects entries that would land outside dest.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target != filepath.Clean(dest) && !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", zerr.With(zerr.New("archive entry escapes the package directory"), "entry", name)
	}
	return target, nil
}
