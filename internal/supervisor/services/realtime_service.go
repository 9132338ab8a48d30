// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/websocket"
)

// ContextHub is a hub whose run loop stops with its context.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService runs the websocket hub under supervision.
type WebSocketHubService struct {
	hub  ContextHub
	name string
}

// NewWebSocketHubService wraps a hub.
func NewWebSocketHubService(hub ContextHub) *WebSocketHubService {
	return &WebSocketHubService{
		hub:  hub,
		name: "websocket-hub",
	}
}

// Serve implements suture.Service.
func (s *WebSocketHubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String returns the service name for logging.
func (s *WebSocketHubService) String() string {
	return s.name
}

// Broadcaster queues a message for every connected client.
type Broadcaster interface {
	Broadcast(msgType string, data interface{}) bool
}

// SnapshotBroadcastService pushes snapshot.published events to websocket
// clients so dashboards can refresh without polling.
type SnapshotBroadcastService struct {
	bus    SnapshotSubscriber
	hub    Broadcaster
	logger zerolog.Logger
	name   string
}

// NewSnapshotBroadcastService creates a broadcast service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshotBroadcastService(bus SnapshotSubscriber, hub Broadcaster, logger zerolog.Logger) *SnapshotBroadcastService {
	return &SnapshotBroadcastService{
		bus:    bus,
		hub:    hub,
		logger: logger.With().Str("service", "snapshot-broadcast").Logger(),
		name:   "snapshot-broadcast-service",
	}
}

// Serve implements suture.Service.
func (s *SnapshotBroadcastService) Serve(ctx context.Context) error {
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

// handle always acks. Clients that miss an event see the new version on
// their next request.
func (s *SnapshotBroadcastService) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	mctx, evt, err := events.DecodeSnapshot(ctx, msg)
	if err != nil {
		s.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable event")
		return
	}
	if !s.hub.Broadcast(websocket.MessageTypeSnapshotPublished, evt) {
		logging.Ctx(mctx).Warn().Str("version", evt.Version).Msg("snapshot broadcast dropped")
	}
}

// String returns the service name for logging.
func (s *SnapshotBroadcastService) String() string {
	return s.name
}
