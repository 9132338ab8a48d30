// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSConfig configures the nats backend. With Embedded set, a NATS server
// is started in-process and URL is ignored.
type NATSConfig struct {
	URL string

	Embedded bool
	Host     string
	// Port for the embedded server. -1 picks a free port.
	Port int

	MaxReconnects int
	ReconnectWait time.Duration
}

const embeddedReadyTimeout = 10 * time.Second

// EmbeddedServer is an in-process NATS server without JetStream. Snapshot
// events are fire-and-forget, so core NATS is enough.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer starts a server and waits until it accepts clients.
func NewEmbeddedServer(host string, port int) (*EmbeddedServer, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "cinematch-events",
		Host:       host,
		Port:       port,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(embeddedReadyTimeout) {
		ns.Shutdown()
		return nil, errors.New("NATS server not ready within timeout")
	}
	return &EmbeddedServer{server: ns, clientURL: ns.ClientURL()}, nil
}

// ClientURL returns the URL clients connect to.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Close stops the server and waits for it to exit.
func (s *EmbeddedServer) Close() error {
	s.server.Shutdown()
	s.server.WaitForShutdown()
	return nil
}

// NewNATSBus connects a watermill publisher and subscriber to NATS. Every
// subscriber receives every event; there is no queue group.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNATSBus(cfg NATSConfig, logger zerolog.Logger) (*Bus, error) {
	logger = logger.With().Str("component", "events").Str("backend", BackendNATS).Logger()
	adapter := NewZerologAdapter(logger)

	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	var closers []func() error
	url := cfg.URL
	if cfg.Embedded {
		srv, err := NewEmbeddedServer(cfg.Host, cfg.Port)
		if err != nil {
			return nil, err
		}
		url = srv.ClientURL()
		closers = append(closers, srv.Close)
		logger.Info().Str("url", url).Msg("embedded NATS server started")
	}
	if url == "" {
		return nil, errors.New("events.nats_url is required unless the embedded server is enabled")
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("cinematch"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				adapter.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			adapter.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
	jetStream := wmNats.JetStreamConfig{Disabled: true}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   jetStream,
	}, adapter)
	if err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	// Publisher and subscriber close before the embedded server.
	closers = append([]func() error{pub.Close}, closers...)

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     5 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        jetStream,
	}, adapter)
	if err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	closers = append([]func() error{sub.Close}, closers...)

	return &Bus{
		publisher:  pub,
		subscriber: sub,
		backend:    BackendNATS,
		closers:    closers,
		logger:     logger,
	}, nil
}

func closeAll(closers []func() error) {
	for _, c := range closers {
		_ = c() // best-effort cleanup after a failed setup
	}
}
