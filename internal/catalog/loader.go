// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// ErrSnapshotMissing is returned when a snapshot file does not exist.
var ErrSnapshotMissing = errors.New("snapshot files not found, run 'cinematch fetch' first")

// Supported drivers.
const (
	DriverCSV    = "csv"
	DriverDuckDB = "duckdb"
)

// Loader reads a snapshot from storage.
type Loader interface {
	Load(ctx context.Context) (*recommend.Snapshot, error)
}

// Config selects and configures a loader.
type Config struct {
	Driver      string
	MoviesPath  string
	RatingsPath string
}

// New returns the loader for cfg.Driver.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (Loader, error) {
	logger = logger.With().Str("component", "catalog").Str("driver", cfg.Driver).Logger()
	switch cfg.Driver {
	case DriverCSV, "":
		return &CSVLoader{MoviesPath: cfg.MoviesPath, RatingsPath: cfg.RatingsPath, logger: logger}, nil
	case DriverDuckDB:
		return &DuckDBLoader{MoviesPath: cfg.MoviesPath, RatingsPath: cfg.RatingsPath, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}

// Fingerprint returns the hex SHA-256 over the given files. Each file is
// prefixed with its length so content cannot shift between files unnoticed.
func Fingerprint(paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		if err := hashFile(h, p); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return missingOr(err, path)
	}
	defer f.Close() //nolint:errcheck // read-only

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(st.Size())) //nolint:gosec // file sizes are non-negative
	if _, err := w.Write(size[:]); err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	return nil
}

// FilesExist reports whether every path is present.
func FilesExist(paths ...string) bool {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

func missingOr(err error, path string) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSnapshotMissing, path)
	}
	return fmt.Errorf("open %s: %w", path, err)
}

// splitGenres splits a pipe-separated genre list. An empty value means no
// genres.
func splitGenres(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}

// finish validates snap and stamps its version.
func finish(snap *recommend.Snapshot, moviesPath, ratingsPath string) (*recommend.Snapshot, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	version, err := Fingerprint(moviesPath, ratingsPath)
	if err != nil {
		return nil, err
	}
	snap.Version = version
	return snap, nil
}
