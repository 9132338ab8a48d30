// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// DuckDBLoader reads the snapshot CSVs through DuckDB's read_csv in a
// throwaway in-memory database. Row order follows the files.
type DuckDBLoader struct {
	MoviesPath  string
	RatingsPath string

	logger zerolog.Logger
}

// NewDuckDBLoader creates a DuckDB-backed loader.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDuckDBLoader(moviesPath, ratingsPath string, logger zerolog.Logger) *DuckDBLoader {
	return &DuckDBLoader{
		MoviesPath:  moviesPath,
		RatingsPath: ratingsPath,
		logger:      logger.With().Str("component", "catalog").Str("driver", DriverDuckDB).Logger(),
	}
}

const (
	moviesQuery = `SELECT CAST(movieId AS BIGINT), CAST(title AS VARCHAR), COALESCE(CAST(genres AS VARCHAR), '')
FROM read_csv(%s, header = true, all_varchar = true)`

	ratingsQuery = `SELECT CAST(userId AS BIGINT), CAST(movieId AS BIGINT), CAST(rating AS DOUBLE)
FROM read_csv(%s, header = true, all_varchar = true)`
)

// Load implements Loader.
func (l *DuckDBLoader) Load(ctx context.Context) (*recommend.Snapshot, error) {
	for _, p := range []string{l.MoviesPath, l.RatingsPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, missingOr(err, p)
		}
	}

	start := time.Now()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			l.logger.Warn().Err(cerr).Msg("failed to close duckdb")
		}
	}()

	// Insertion order must survive the scan: catalog order breaks ranking ties.
	if _, err := db.ExecContext(ctx, "SET preserve_insertion_order = true"); err != nil {
		return nil, fmt.Errorf("configure duckdb: %w", err)
	}

	items, err := queryRows(ctx, db, fmt.Sprintf(moviesQuery, quoteLiteral(l.MoviesPath)), func(rows *sql.Rows) (recommend.Item, error) {
		var (
			id            int64
			title, genres string
		)
		if err := rows.Scan(&id, &title, &genres); err != nil {
			return recommend.Item{}, err
		}
		return recommend.Item{ID: int(id), Title: title, Genres: splitGenres(genres)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read movies: %w", recommend.ErrMalformedSnapshot, err)
	}

	ratings, err := queryRows(ctx, db, fmt.Sprintf(ratingsQuery, quoteLiteral(l.RatingsPath)), func(rows *sql.Rows) (recommend.Rating, error) {
		var (
			user, item int64
			value      float64
		)
		if err := rows.Scan(&user, &item, &value); err != nil {
			return recommend.Rating{}, err
		}
		return recommend.Rating{UserID: int(user), ItemID: int(item), Value: value}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read ratings: %w", recommend.ErrMalformedSnapshot, err)
	}

	snap, err := finish(&recommend.Snapshot{Items: items, Ratings: ratings, LoadedAt: time.Now()}, l.MoviesPath, l.RatingsPath)
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Int("items", len(items)).
		Int("ratings", len(ratings)).
		Str("version", snap.Version).
		Dur("duration", time.Since(start)).
		Msg("snapshot loaded")
	return snap, nil
}

func queryRows[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // rows.Err checked below

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
