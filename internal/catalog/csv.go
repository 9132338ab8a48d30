// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// CSVLoader reads movies.csv (movieId,title,genres) and ratings.csv
// (userId,movieId,rating[,timestamp]). Columns are located by header name.
type CSVLoader struct {
	MoviesPath  string
	RatingsPath string

	logger zerolog.Logger
}

// NewCSVLoader creates a CSV loader.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCSVLoader(moviesPath, ratingsPath string, logger zerolog.Logger) *CSVLoader {
	return &CSVLoader{
		MoviesPath:  moviesPath,
		RatingsPath: ratingsPath,
		logger:      logger.With().Str("component", "catalog").Str("driver", DriverCSV).Logger(),
	}
}

// Load implements Loader.
func (l *CSVLoader) Load(ctx context.Context) (*recommend.Snapshot, error) {
	start := time.Now()

	items, err := readCSV(ctx, l.MoviesPath, []string{"movieId", "title", "genres"}, func(rec []string, line int) (recommend.Item, error) {
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return recommend.Item{}, fmt.Errorf("%w: movies line %d: bad movieId %q", recommend.ErrMalformedSnapshot, line, rec[0])
		}
		return recommend.Item{ID: id, Title: rec[1], Genres: splitGenres(rec[2])}, nil
	})
	if err != nil {
		return nil, err
	}

	ratings, err := readCSV(ctx, l.RatingsPath, []string{"userId", "movieId", "rating"}, func(rec []string, line int) (recommend.Rating, error) {
		user, err1 := strconv.Atoi(strings.TrimSpace(rec[0]))
		item, err2 := strconv.Atoi(strings.TrimSpace(rec[1]))
		value, err3 := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err := errors.Join(err1, err2, err3); err != nil {
			return recommend.Rating{}, fmt.Errorf("%w: ratings line %d: %w", recommend.ErrMalformedSnapshot, line, err)
		}
		return recommend.Rating{UserID: user, ItemID: item, Value: value}, nil
	})
	if err != nil {
		return nil, err
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

// readCSV parses path, projecting each record onto the named columns in the
// given order before calling parse.
func readCSV[T any](ctx context.Context, path string, columns []string, parse func(rec []string, line int) (T, error)) ([]T, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, missingOr(err, path)
	}
	defer f.Close() //nolint:errcheck // read-only

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read header: %w", recommend.ErrMalformedSnapshot, path, err)
	}
	pos := make([]int, len(columns))
	for i, col := range columns {
		pos[i] = -1
		for j, h := range header {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == col {
				pos[i] = j
				break
			}
		}
		if pos[i] < 0 {
			return nil, fmt.Errorf("%w: %s: missing column %q", recommend.ErrMalformedSnapshot, path, col)
		}
	}

	var out []T
	proj := make([]string, len(columns))
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", recommend.ErrMalformedSnapshot, path, err)
		}
		if line%8192 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		for i, p := range pos {
			if p >= len(rec) {
				return nil, fmt.Errorf("%w: %s line %d: too few fields", recommend.ErrMalformedSnapshot, path, line)
			}
			proj[i] = rec[p]
		}
		v, err := parse(proj, line)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
