// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
)

const testMovies = `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
2,"American President, The (1995)",Comedy|Drama|Romance
3,Thor (2011),Action|Adventure|Drama|Fantasy|IMAX
4,Unknown Genre (2020),(no genres listed)
5,Blank (2021),
`

const testRatings = `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,3,4.5,964981247
2,1,3.5,964982224
2,2,5.0,964983815
`

func writeFiles(t *testing.T, movies, ratings string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	mp := filepath.Join(dir, "movies.csv")
	rp := filepath.Join(dir, "ratings.csv")
	if err := os.WriteFile(mp, []byte(movies), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rp, []byte(ratings), 0o600); err != nil {
		t.Fatal(err)
	}
	return mp, rp
}

func loaders(t *testing.T, mp, rp string) map[string]Loader {
	t.Helper()
	logger := logging.NewTestLogger(io.Discard)
	out := make(map[string]Loader)
	for _, driver := range []string{DriverCSV, DriverDuckDB} {
		l, err := New(Config{Driver: driver, MoviesPath: mp, RatingsPath: rp}, logger)
		if err != nil {
			t.Fatalf("New(%s) error = %v", driver, err)
		}
		out[driver] = l
	}
	return out
}

func TestLoaders_Load(t *testing.T) {
	mp, rp := writeFiles(t, testMovies, testRatings)

	wantItems := []recommend.Item{
		{ID: 1, Title: "Toy Story (1995)", Genres: []string{"Adventure", "Animation", "Children", "Comedy", "Fantasy"}},
		{ID: 2, Title: "American President, The (1995)", Genres: []string{"Comedy", "Drama", "Romance"}},
		{ID: 3, Title: "Thor (2011)", Genres: []string{"Action", "Adventure", "Drama", "Fantasy", "IMAX"}},
		{ID: 4, Title: "Unknown Genre (2020)", Genres: []string{"(no genres listed)"}},
		{ID: 5, Title: "Blank (2021)"},
	}
	wantRatings := []recommend.Rating{
		{UserID: 1, ItemID: 1, Value: 4},
		{UserID: 1, ItemID: 3, Value: 4.5},
		{UserID: 2, ItemID: 1, Value: 3.5},
		{UserID: 2, ItemID: 2, Value: 5},
	}
	wantVersion, err := Fingerprint(mp, rp)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}

	for driver, l := range loaders(t, mp, rp) {
		t.Run(driver, func(t *testing.T) {
			snap, err := l.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(snap.Items, wantItems) {
				t.Errorf("Items = %+v, want %+v", snap.Items, wantItems)
			}
			if !reflect.DeepEqual(snap.Ratings, wantRatings) {
				t.Errorf("Ratings = %+v, want %+v", snap.Ratings, wantRatings)
			}
			if snap.Version != wantVersion {
				t.Errorf("Version = %q, want %q", snap.Version, wantVersion)
			}
			if snap.LoadedAt.IsZero() {
				t.Error("LoadedAt not set")
			}
		})
	}
}

func TestLoaders_Errors(t *testing.T) {
	tests := []struct {
		name    string
		movies  string
		ratings string
		missing bool
		wantErr error
	}{
		{name: "missing files", missing: true, wantErr: ErrSnapshotMissing},
		{name: "duplicate id", movies: "movieId,title,genres\n1,A,\n1,B,\n", ratings: "userId,movieId,rating\n", wantErr: recommend.ErrMalformedSnapshot},
		{name: "unknown rated item", movies: "movieId,title,genres\n1,A,\n", ratings: "userId,movieId,rating\n1,2,3\n", wantErr: recommend.ErrMalformedSnapshot},
		{name: "empty catalog", movies: "movieId,title,genres\n", ratings: "userId,movieId,rating\n", wantErr: recommend.ErrMalformedSnapshot},
		{name: "bad number", movies: "movieId,title,genres\nx,A,\n", ratings: "userId,movieId,rating\n", wantErr: recommend.ErrMalformedSnapshot},
	}

	for _, tt := range tests {
		mp, rp := writeFiles(t, tt.movies, tt.ratings)
		if tt.missing {
			dir := t.TempDir()
			mp, rp = filepath.Join(dir, "movies.csv"), filepath.Join(dir, "ratings.csv")
		}
		for driver, l := range loaders(t, mp, rp) {
			t.Run(tt.name+"/"+driver, func(t *testing.T) {
				_, err := l.Load(context.Background())
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	}
}

func TestCSVLoader_MissingColumn(t *testing.T) {
	mp, rp := writeFiles(t, "movieId,name\n1,A\n", "userId,movieId,rating\n")
	l := NewCSVLoader(mp, rp, logging.NewTestLogger(io.Discard))
	if _, err := l.Load(context.Background()); !errors.Is(err, recommend.ErrMalformedSnapshot) {
		t.Errorf("Load() error = %v, want ErrMalformedSnapshot", err)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := New(Config{Driver: "parquet"}, logging.NewTestLogger(io.Discard)); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestFingerprint(t *testing.T) {
	mp, rp := writeFiles(t, testMovies, testRatings)
	a, err := Fingerprint(mp, rp)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Fingerprint(mp, rp)
	if a != b {
		t.Error("fingerprint not stable")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(a))
	}

	if err := os.WriteFile(rp, []byte(testRatings+"3,1,2.0,1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, _ := Fingerprint(mp, rp)
	if c == a {
		t.Error("fingerprint unchanged after edit")
	}

	if _, err := Fingerprint(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrSnapshotMissing) {
		t.Errorf("missing file error = %v, want ErrSnapshotMissing", err)
	}
	if FilesExist(mp, filepath.Join(t.TempDir(), "nope")) {
		t.Error("FilesExist should be false")
	}
}
