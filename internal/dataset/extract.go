// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package dataset

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxEntrySize bounds a single extracted file.
const maxEntrySize = 1 << 30

var errUnsafePath = errors.New("unsafe path in archive")

// extract unpacks the archive at src into dir, stripping prefix from every
// entry name. Entries that would land outside dir are rejected before
// anything is written. Files are written to a temp name and renamed so a
// reader never sees a half-written CSV.
func extract(src, dir, prefix string) ([]string, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer zr.Close() //nolint:errcheck // read-only

	type entry struct {
		file *zip.File
		name string
	}
	entries := make([]entry, 0, len(zr.File))
	for _, zf := range zr.File {
		name := strings.TrimPrefix(zf.Name, prefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		if !filepath.IsLocal(name) {
			return nil, fmt.Errorf("%w: %q", errUnsafePath, zf.Name)
		}
		if !zf.Mode().IsRegular() {
			continue
		}
		entries = append(entries, entry{file: zf, name: filepath.FromSlash(name)})
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := writeEntry(e.file, filepath.Join(dir, e.name)); err != nil {
			return files, fmt.Errorf("extract %s: %w", e.name, err)
		}
		files = append(files, e.name)
	}
	return files, nil
}

func writeEntry(zf *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close() //nolint:errcheck // read-only

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".extract-*")
	if err != nil {
		return err
	}
	n, err := io.Copy(tmp, io.LimitReader(rc, maxEntrySize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxEntrySize {
		err = fmt.Errorf("entry exceeds %d bytes", maxEntrySize)
	}
	if err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck,gosec // already failing
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
