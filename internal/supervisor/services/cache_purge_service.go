// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// errSubscriptionClosed is returned when the bus closes the subscription
// while the service is still running, so suture restarts and resubscribes.
var errSubscriptionClosed = errors.New("snapshot subscription closed")

// SnapshotSubscriber delivers snapshot.published messages.
type SnapshotSubscriber interface {
	SubscribeSnapshots(ctx context.Context) (<-chan *message.Message, error)
}

// Purger drops every cached response.
type Purger interface {
	Purge(ctx context.Context) error
}

// CachePurgeService purges the response cache whenever a new engine is
// published. Cache keys already carry the snapshot version, so this only
// reclaims space held by entries nothing can reach any more.
type CachePurgeService struct {
	bus    SnapshotSubscriber
	cache  Purger
	logger zerolog.Logger
	name   string
}

// NewCachePurgeService creates a cache purge service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCachePurgeService(bus SnapshotSubscriber, cache Purger, logger zerolog.Logger) *CachePurgeService {
	return &CachePurgeService{
		bus:    bus,
		cache:  cache,
		logger: logger.With().Str("service", "cache-purge").Logger(),
		name:   "cache-purge-service",
	}
}

// Serve implements suture.Service.
func (s *CachePurgeService) Serve(ctx context.Context) error {
	msgs, err := s.bus.SubscribeSnapshots(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errSubscriptionClosed
			}
			s.handle(ctx, msg)
		}
	}
}

// handle always acks: a payload that fails to decode will not decode on
// redelivery either, and a failed purge leaves only unreachable entries.
func (s *CachePurgeService) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	mctx, evt, err := events.DecodeSnapshot(ctx, msg)
	if err != nil {
		s.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable event")
		return
	}

	if err := s.cache.Purge(mctx); err != nil {
		logging.Ctx(mctx).Warn().Err(err).Str("version", evt.Version).Msg("response cache purge failed")
		return
	}
	metrics.RecordCachePurge()
	s.logger.Info().
		Str("version", evt.Version).
		Str("previous", evt.Previous).
		Str("correlation_id", logging.CorrelationIDFromContext(mctx)).
		Msg("response cache purged")
}

// String returns the service name for logging.
func (s *CachePurgeService) String() string {
	return s.name
}
