// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package events carries lifecycle events over watermill.
//
// The default backend is an in-process gochannel pub/sub. The nats backend
// publishes over core NATS, either to an external server or to one embedded
// in the process, so that every replica sees every snapshot event.
//
// The only event today is SnapshotPublished, emitted after a new engine is
// installed. Subscribers (the cache purger, the websocket broadcaster) react
// to it without the snapshot service knowing who they are.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/logging"
)

// TopicSnapshotPublished is the topic for SnapshotPublished events.
const TopicSnapshotPublished = "snapshot.published"

const metadataCorrelationID = "correlation_id"

// SnapshotPublished announces that a new engine is serving queries.
type SnapshotPublished struct {
	Version       string        `json:"version"`
	Previous      string        `json:"previous,omitempty"`
	Items         int           `json:"items"`
	Ratings       int           `json:"ratings"`
	BuildDuration time.Duration `json:"build_duration_ns"`
	PublishedAt   time.Time     `json:"published_at"`
	Trigger       string        `json:"trigger"`
}

// Supported backends.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// Config selects and configures the bus backend.
type Config struct {
	Backend string

	// Buffer is the per-subscriber channel buffer of the gochannel backend.
	Buffer int64

	NATS NATSConfig
}

// Bus is a publisher/subscriber pair plus whatever must be shut down with
// it.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	backend    string
	closers    []func() error
	logger     zerolog.Logger
}

// New returns the bus for cfg.Backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (*Bus, error) {
	switch cfg.Backend {
	case "", BackendGoChannel:
		return NewBus(cfg.Buffer, logger), nil
	case BackendNATS:
		return NewNATSBus(cfg.NATS, logger)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// NewBus creates an in-process bus with the given per-subscriber buffer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(buffer int64, logger zerolog.Logger) *Bus {
	logger = logger.With().Str("component", "events").Logger()
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            buffer,
		BlockPublishUntilSubscriberAck: false,
	}, NewZerologAdapter(logger))
	return &Bus{
		publisher:  pubsub,
		subscriber: pubsub,
		backend:    BackendGoChannel,
		closers:    []func() error{pubsub.Close},
		logger:     logger,
	}
}

// Backend returns the backend name.
func (b *Bus) Backend() string {
	return b.backend
}

// PublishSnapshot emits a SnapshotPublished event. The correlation id from
// ctx, if any, travels in the message metadata.
func (b *Bus) PublishSnapshot(ctx context.Context, evt SnapshotPublished) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(metadataCorrelationID, id)
	}
	if err := b.publisher.Publish(TopicSnapshotPublished, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicSnapshotPublished, err)
	}
	b.logger.Debug().Str("version", evt.Version).Str("message_uuid", msg.UUID).Msg("snapshot event published")
	return nil
}

// SubscribeSnapshots returns a channel of SnapshotPublished messages that is
// closed when ctx ends or the bus is closed. Receivers must Ack or Nack.
func (b *Bus) SubscribeSnapshots(ctx context.Context) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, TopicSnapshotPublished)
}

// DecodeSnapshot parses a SnapshotPublished payload and returns the message
// context enriched with its correlation id.
func DecodeSnapshot(ctx context.Context, msg *message.Message) (context.Context, SnapshotPublished, error) {
	var evt SnapshotPublished
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return ctx, evt, fmt.Errorf("unmarshal %s: %w", TopicSnapshotPublished, err)
	}
	if id := msg.Metadata.Get(metadataCorrelationID); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	return ctx, evt, nil
}

// Close shuts the bus down and closes all subscriber channels. Closers run
// in order and the first error is returned.
func (b *Bus) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
