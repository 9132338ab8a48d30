// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinematch/internal/metrics"
)

// DefaultURL is the MovieLens small dataset.
const DefaultURL = "https://files.grouplens.org/datasets/movielens/ml-latest-small.zip"

// Files the catalog needs after extraction.
const (
	MoviesFile  = "movies.csv"
	RatingsFile = "ratings.csv"
)

const (
	lockFile     = ".fetch.lock"
	breakerName  = "dataset"
	lockInterval = 250 * time.Millisecond
)

// ErrDownloadFailed is returned when the archive could not be downloaded.
var ErrDownloadFailed = errors.New("dataset download failed")

// errPermanent marks responses that retrying cannot fix.
var errPermanent = errors.New("permanent failure")

// Config controls where the dataset comes from and how hard to try.
type Config struct {
	URL            string
	DataDir        string
	Timeout        time.Duration
	MaxAttempts    int
	RetryPerSecond float64
	// Force downloads even when the files are already present.
	Force bool
}

func (c *Config) applyDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryPerSecond <= 0 {
		c.RetryPerSecond = 0.5
	}
}

// Result describes a completed fetch.
type Result struct {
	Downloaded bool
	Files      []string
	Duration   time.Duration
}

// Fetcher downloads and unpacks the dataset archive. A Fetcher keeps its
// circuit breaker across calls, so a long-running process should reuse one.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewFetcher creates a fetcher. A nil client uses one with cfg.Timeout.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFetcher(cfg Config, client *http.Client, logger zerolog.Logger) *Fetcher {
	cfg.applyDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger = logger.With().Str("component", "dataset").Logger()

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A 404 says nothing about the mirror's health.
			return err == nil || errors.Is(err, errPermanent)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("download circuit breaker state change")
			metrics.RecordCircuitBreakerTransition(name, stateToString(from), stateToString(to), stateToFloat(to))
		},
	})

	return &Fetcher{
		cfg:     cfg,
		client:  client,
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(cfg.RetryPerSecond), 1),
		logger:  logger,
	}
}

// Fetch downloads the archive with the given config and a default client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Fetch(ctx context.Context, cfg Config, logger zerolog.Logger) (Result, error) {
	return NewFetcher(cfg, nil, logger).Fetch(ctx)
}

// Present reports whether the catalog files exist in dataDir.
func Present(dataDir string) bool {
	for _, name := range []string{MoviesFile, RatingsFile} {
		if st, err := os.Stat(filepath.Join(dataDir, name)); err != nil || !st.Mode().IsRegular() {
			return false
		}
	}
	return true
}

// Fetch makes sure the dataset is unpacked in the data directory. The
// directory is locked for the duration so concurrent fetches do not
// interleave. Existing files are kept unless Config.Force is set.
func (f *Fetcher) Fetch(ctx context.Context) (Result, error) {
	dir := f.cfg.DataDir
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Result{}, fmt.Errorf("create data dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFile))
	locked, err := lock.TryLockContext(ctx, lockInterval)
	if err != nil {
		return Result{}, fmt.Errorf("acquire data dir lock: %w", err)
	}
	if !locked {
		return Result{}, fmt.Errorf("data dir %s is locked by another fetch", dir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			f.logger.Warn().Err(err).Msg("failed to release data dir lock")
		}
	}()

	if !f.cfg.Force && Present(dir) {
		f.logger.Info().Str("data_dir", dir).Msg("dataset already present")
		metrics.RecordDatasetFetch("present", 0)
		return Result{Files: []string{MoviesFile, RatingsFile}}, nil
	}

	start := time.Now()
	archive, err := f.download(ctx)
	if err != nil {
		metrics.RecordDatasetFetch("failed", 0)
		return Result{}, err
	}
	defer os.Remove(archive) //nolint:errcheck // temp file

	files, err := extract(archive, dir, archivePrefix(f.cfg.URL))
	if err != nil {
		metrics.RecordDatasetFetch("failed", 0)
		return Result{}, fmt.Errorf("extract dataset: %w", err)
	}
	if !Present(dir) {
		metrics.RecordDatasetFetch("failed", 0)
		return Result{}, fmt.Errorf("%w: archive has no %s and %s", ErrDownloadFailed, MoviesFile, RatingsFile)
	}

	res := Result{Downloaded: true, Files: files, Duration: time.Since(start)}
	metrics.RecordDatasetFetch("downloaded", res.Duration)
	f.logger.Info().
		Str("url", f.cfg.URL).
		Str("data_dir", dir).
		Int("files", len(files)).
		Dur("duration", res.Duration).
		Msg("dataset downloaded")
	return res, nil
}

// download fetches the archive into a temp file in the data dir and returns
// its path. Attempts are paced by the limiter and stop early when the
// breaker is open or the server answers with a permanent error.
func (f *Fetcher) download(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", err
		}

		tmp, err := f.cb.Execute(func() (string, error) {
			return f.get(ctx)
		})
		switch {
		case err == nil:
			metrics.RecordCircuitBreakerRequest(breakerName, "success")
			return tmp, nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.RecordCircuitBreakerRequest(breakerName, "rejected")
			return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
		case ctx.Err() != nil:
			return "", ctx.Err()
		}

		metrics.RecordCircuitBreakerRequest(breakerName, "failure")
		lastErr = err
		if errors.Is(err, errPermanent) {
			break
		}
		f.logger.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", f.cfg.MaxAttempts).Msg("dataset download attempt failed")
	}
	return "", fmt.Errorf("%w: %w", ErrDownloadFailed, lastErr)
}

func (f *Fetcher) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errPermanent, err)
	}
	req.Header.Set("User-Agent", "cinematch")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck // body fully consumed below

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			err = fmt.Errorf("%w: %w", errPermanent, err)
		}
		return "", err
	}

	out, err := os.CreateTemp(f.cfg.DataDir, ".download-*.zip")
	if err != nil {
		return "", fmt.Errorf("%w: %w", errPermanent, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()           //nolint:errcheck,gosec // already failing
		os.Remove(out.Name()) //nolint:errcheck,gosec // already failing
		return "", fmt.Errorf("read body: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name()) //nolint:errcheck,gosec // already failing
		return "", err
	}
	return out.Name(), nil
}

// archivePrefix is the top-level directory the archive wraps its files in,
// named after the zip file: ml-latest-small.zip holds ml-latest-small/.
func archivePrefix(rawURL string) string {
	base := path.Base(rawURL)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	return strings.TrimSuffix(base, ".zip") + "/"
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
