// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/cinematch/internal/config"
)

// TreeConfig tunes restart behavior for every layer of the tree.
type TreeConfig struct {
	FailureThreshold float64       // failures tolerated before backoff (5)
	FailureDecay     float64       // seconds for the failure count to decay (30)
	FailureBackoff   time.Duration // pause once the threshold is crossed (15s)
	ShutdownTimeout  time.Duration // per-service stop deadline (10s)
}

// DefaultTreeConfig returns suture's built-in defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// TreeConfigFrom converts the supervisor section of the application config.
func TreeConfigFrom(cfg *config.SupervisorConfig) TreeConfig {
	return TreeConfig{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		ShutdownTimeout:  cfg.ShutdownTimeout,
	}
}

// withDefaults fills zero fields from DefaultTreeConfig.
func (c TreeConfig) withDefaults() TreeConfig {
	def := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = def.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = def.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = def.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// Layer identifies a child supervisor of the tree.
type Layer string

const (
	// LayerData loads snapshots and publishes engines.
	LayerData Layer = "data-layer"
	// LayerMessaging runs event subscribers: cache purger, websocket fan-out.
	LayerMessaging Layer = "messaging-layer"
	// LayerAPI runs the HTTP server.
	LayerAPI Layer = "api-layer"
)

// startOrder is the order layers are added to the root. Suture starts
// children in insertion order, so the engine loader comes up before the
// server that reports readiness on it.
var startOrder = []Layer{LayerData, LayerMessaging, LayerAPI}

// SupervisorTree runs Cinematch services in isolated layers. A crash in
// the messaging layer does not stop the API from serving the engine that
// is already published.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	logger *slog.Logger
	config TreeConfig
}

// NewSupervisorTree builds the root supervisor and its three layers.
func NewSupervisorTree(logger *slog.Logger, cfg TreeConfig) (*SupervisorTree, error) {
	cfg = cfg.withDefaults()

	// MustHook has a pointer receiver. Layers inherit the hook from the root.
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()
	root := suture.New("cinematch", cfg.spec(hook))

	layers := make(map[Layer]*suture.Supervisor, len(startOrder))
	for _, l := range startOrder {
		sup := suture.New(string(l), cfg.spec(nil))
		root.Add(sup)
		layers[l] = sup
	}

	return &SupervisorTree{
		root:   root,
		layers: layers,
		logger: logger,
		config: cfg,
	}, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// Add places svc under the given layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) suture.ServiceToken {
	sup, ok := t.layers[layer]
	if !ok {
		t.logger.Error("unknown supervisor layer, using api layer", "layer", string(layer))
		sup = t.layers[LayerAPI]
	}
	return sup.Add(svc)
}

// AddDataService adds the snapshot service.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.Add(LayerData, svc)
}

// AddMessagingService adds an event subscriber.
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	return t.Add(LayerMessaging, svc)
}

// AddAPIService adds the HTTP server.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.Add(LayerAPI, svc)
}

// Serve blocks until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the tree and returns a channel that yields the
// terminal error exactly once.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown deadline.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
