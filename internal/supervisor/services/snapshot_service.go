// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Reload results recorded in metrics.
const (
	reloadPublished = "published"
	reloadUnchanged = "unchanged"
	reloadFailed    = "failed"
)

// SnapshotLoader reads a snapshot from storage.
type SnapshotLoader interface {
	Load(ctx context.Context) (*recommend.Snapshot, error)
}

// DatasetFetcher downloads the snapshot files.
type DatasetFetcher interface {
	Fetch(ctx context.Context) (dataset.Result, error)
}

// SnapshotEvents receives snapshot.published events.
type SnapshotEvents interface {
	PublishSnapshot(ctx context.Context, evt events.SnapshotPublished) error
}

// SnapshotServiceConfig holds configuration for the snapshot service.
type SnapshotServiceConfig struct {
	// Engine configures every engine build.
	Engine *recommend.Config

	// MoviesPath and RatingsPath are fingerprinted to detect changes.
	MoviesPath  string
	RatingsPath string

	// PollInterval enables periodic change detection. Zero disables polling.
	PollInterval time.Duration

	// AutoFetch downloads the dataset before the first load when the
	// snapshot files are missing. Requires a fetcher.
	AutoFetch bool
}

// SnapshotService owns the engine lifecycle: it builds the first engine,
// publishes it and rebuilds when the snapshot files change.
//
// Rebuilds are triggered by the poll ticker or by RequestReload, and only
// happen when the files' fingerprint differs from the published version. A
// failed rebuild keeps the current engine serving.
type SnapshotService struct {
	loader    SnapshotLoader
	fetcher   DatasetFetcher
	publisher *recommend.Publisher
	events    SnapshotEvents
	config    SnapshotServiceConfig
	reload    chan string
	logger    zerolog.Logger
	name      string

	mu         sync.Mutex
	initialErr error
}

// NewSnapshotService creates a snapshot service. fetcher and evts may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshotService(
	loader SnapshotLoader,
	fetcher DatasetFetcher,
	publisher *recommend.Publisher,
	evts SnapshotEvents,
	cfg SnapshotServiceConfig,
	logger zerolog.Logger,
) *SnapshotService {
	if cfg.Engine == nil {
		cfg.Engine = recommend.DefaultConfig()
	}
	return &SnapshotService{
		loader:    loader,
		fetcher:   fetcher,
		publisher: publisher,
		events:    evts,
		config:    cfg,
		reload:    make(chan string, 1),
		logger:    logger.With().Str("service", "snapshot").Logger(),
		name:      "snapshot-service",
	}
}

// RequestReload queues a change check. It returns false when one is
// already queued.
func (s *SnapshotService) RequestReload(reason string) bool {
	select {
	case s.reload <- reason:
		return true
	default:
		return false
	}
}

// InitialError returns the error that prevented the first engine from being
// published, if any.
func (s *SnapshotService) InitialError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialErr
}

// Serve implements suture.Service. Without a published engine the service
// has nothing to fall back on, so a failed first build terminates the tree.
func (s *SnapshotService) Serve(ctx context.Context) error {
	if !s.publisher.Ready() {
		if err := s.prepare(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.mu.Lock()
			s.initialErr = err
			s.mu.Unlock()
			s.logger.Error().Err(err).Msg("initial snapshot build failed")
			return fmt.Errorf("%w: %w", suture.ErrTerminateSupervisorTree, err)
		}
	}

	var tick <-chan time.Time
	if s.config.PollInterval > 0 {
		ticker := time.NewTicker(s.config.PollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.logger.Info().Dur("poll_interval", s.config.PollInterval).Msg("snapshot service running")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("snapshot service shutting down")
			return ctx.Err()

		case <-tick:
			if err := s.rebuild(ctx, "poll", false); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled snapshot reload failed, keeping current engine")
			}

		case reason := <-s.reload:
			if err := s.rebuild(ctx, reason, false); err != nil {
				s.logger.Warn().Err(err).Str("trigger", reason).Msg("snapshot reload failed, keeping current engine")
			}
		}
	}
}

// prepare fetches the dataset when allowed and needed, then builds the
// first engine.
func (s *SnapshotService) prepare(ctx context.Context) error {
	if s.config.AutoFetch && s.fetcher != nil && !catalog.FilesExist(s.config.MoviesPath, s.config.RatingsPath) {
		s.logger.Info().Msg("snapshot files missing, fetching dataset")
		if _, err := s.fetcher.Fetch(ctx); err != nil {
			return fmt.Errorf("auto-fetch dataset: %w", err)
		}
	}
	return s.rebuild(ctx, "startup", true)
}

// rebuild loads, builds and publishes a new engine. Unless force is set it
// does nothing when the fingerprint matches the published version.
func (s *SnapshotService) rebuild(ctx context.Context, trigger string, force bool) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := s.logger.With().Str("trigger", trigger).Str("correlation_id", logging.CorrelationIDFromContext(ctx)).Logger()

	current, _ := s.publisher.Current() //nolint:errcheck // nil before the first publish
	if !force && current != nil {
		version, err := catalog.Fingerprint(s.config.MoviesPath, s.config.RatingsPath)
		if err != nil {
			metrics.RecordSnapshotReload(reloadFailed)
			return fmt.Errorf("fingerprint snapshot: %w", err)
		}
		if version == current.Version() {
			metrics.RecordSnapshotReload(reloadUnchanged)
			log.Debug().Str("version", version).Msg("snapshot unchanged")
			return nil
		}
	}

	snap, err := s.loader.Load(ctx)
	if err != nil {
		metrics.RecordSnapshotReload(reloadFailed)
		return fmt.Errorf("load snapshot: %w", err)
	}

	eng, err := recommend.NewEngine(ctx, snap, s.config.Engine, log)
	if err != nil {
		metrics.RecordSnapshotReload(reloadFailed)
		return fmt.Errorf("build engine: %w", err)
	}

	prev := s.publisher.Publish(eng)
	stats := eng.Stats()
	metrics.RecordEngineBuild(stats.BuildDuration, metrics.SnapshotSize{
		Items:      stats.Items,
		Ratings:    stats.Ratings,
		Users:      stats.Users,
		RatedItems: stats.RatedItems,
		Vocabulary: stats.VocabularySize,
	})
	metrics.RecordSnapshotReload(reloadPublished)

	evt := events.SnapshotPublished{
		Version:       stats.Version,
		Items:         stats.Items,
		Ratings:       stats.Ratings,
		BuildDuration: stats.BuildDuration,
		PublishedAt:   time.Now().UTC(),
		Trigger:       trigger,
	}
	if prev != nil {
		evt.Previous = prev.Version()
	}
	log.Info().
		Str("version", evt.Version).
		Str("previous", evt.Previous).
		Int("items", stats.Items).
		Msg("engine published")

	if s.events != nil {
		if err := s.events.PublishSnapshot(ctx, evt); err != nil {
			log.Warn().Err(err).Msg("failed to emit snapshot event")
		}
	}
	return nil
}

// String returns the service name for logging.
func (s *SnapshotService) String() string {
	return s.name
}
