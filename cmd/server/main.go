// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cinematch/internal/api"
	"github.com/tomtom215/cinematch/internal/auth"
	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/supervisor"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
	"github.com/tomtom215/cinematch/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

//nolint:gocyclo // sequential setup steps
func run() int {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logging.Init(cfg.Logging.ToLoggingConfig())
	logger := logging.Logger()
	metrics.RecordBuildInfo(version)

	logging.Info().
		Str("version", version).
		Str("driver", cfg.Catalog.Driver).
		Str("movies_path", cfg.Catalog.MoviesPath).
		Str("ratings_path", cfg.Catalog.RatingsPath).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Cinematch with supervisor tree")

	if cfg.HasWildcardCORS() && cfg.Admin.Enabled() {
		logging.Warn().Msg("CORS allows any origin while the admin API is enabled; set CORS_ORIGINS in production")
	}
	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	// Response cache
	var store cache.Store
	if cfg.Cache.Enabled {
		store, err = cache.New(cfg.Cache.ToCacheConfig(), logger)
		if err != nil {
			logging.Error().Err(err).Str("backend", cfg.Cache.Backend).Msg("Failed to open response cache")
			return 1
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing response cache")
			}
		}()
		logging.Info().Str("backend", cfg.Cache.Backend).Dur("ttl", cfg.Cache.TTL).Msg("Response cache enabled")
	} else {
		logging.Info().Msg("Response cache disabled (CACHE_ENABLED=false)")
	}

	bus, err := events.New(cfg.Events.ToEventsConfig(), logger)
	if err != nil {
		logging.Error().Err(err).Str("backend", cfg.Events.Backend).Msg("Failed to create event bus")
		return 1
	}
	logging.Info().Str("backend", bus.Backend()).Msg("Event bus ready")
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// sutureslog expects slog; the adapter forwards to zerolog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	// === DATA LAYER ===

	loader, err := catalog.New(cfg.Catalog.ToCatalogConfig(), logger)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create catalog loader")
		return 1
	}

	var fetcher services.DatasetFetcher
	if cfg.Dataset.AutoFetch {
		fetcher = dataset.NewFetcher(cfg.Dataset.ToDatasetConfig(), nil, logger)
	}

	publisher := recommend.NewPublisher()
	snapshotSvc := services.NewSnapshotService(loader, fetcher, publisher, bus, services.SnapshotServiceConfig{
		Engine:       cfg.Recommend.ToEngineConfig(),
		MoviesPath:   cfg.Catalog.MoviesPath,
		RatingsPath:  cfg.Catalog.RatingsPath,
		PollInterval: cfg.Catalog.ReloadInterval,
		AutoFetch:    cfg.Dataset.AutoFetch,
	}, logger)
	tree.AddDataService(snapshotSvc)

	// === MESSAGING LAYER ===

	if store != nil {
		tree.AddMessagingService(services.NewCachePurgeService(bus, store, logger))
	}

	var realtime http.Handler
	if cfg.Server.WebSocketEnabled {
		hub := websocket.NewHub(logger)
		tree.AddMessagingService(services.NewWebSocketHubService(hub))
		tree.AddMessagingService(services.NewSnapshotBroadcastService(bus, hub, logger))
		realtime = websocket.NewHandler(hub, cfg.Server.CORSOrigins, logger)
		logging.Info().Msg("WebSocket notifications enabled at /api/v1/ws")
	}

	// === API LAYER ===

	jwtManager, err := auth.NewJWTManager(&cfg.Admin)
	switch {
	case errors.Is(err, auth.ErrAdminDisabled):
		logging.Info().Msg("Admin API disabled (ADMIN_JWT_SECRET not set)")
	case err != nil:
		logging.Error().Err(err).Msg("Failed to initialize JWT manager")
		return 1
	default:
		logging.Info().Str("issuer", cfg.Admin.Issuer).Msg("Admin API enabled")
	}

	var authorizer *auth.Authorizer
	if jwtManager != nil {
		authorizer, err = auth.NewAuthorizer(cfg.Admin.PolicyPath)
		if err != nil {
			logging.Error().Err(err).Str("policy_path", cfg.Admin.PolicyPath).Msg("Failed to load admin policy")
			return 1
		}
	}

	handler := api.NewHandler(api.HandlerOptions{
		Publisher:    publisher,
		Cache:        store,
		CacheBackend: cfg.Cache.Backend,
		Auth:         jwtManager,
		Authorizer:   authorizer,
		Reloader:     snapshotSvc,
		Realtime:     realtime,
		Logger:       logger,
	})
	router := api.NewRouter(&cfg.Server, handler, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The tree returns on signal, or on its own when a service terminates it
	exitCode := 0
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		exitCode = 1
	}
	cancel()

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if err := snapshotSvc.InitialError(); err != nil {
		logging.Error().Err(err).Msg("Snapshot could not be prepared; run `cinematch fetch` or set AUTO_FETCH=true")
		return 1
	}

	logging.Info().Msg("Application stopped gracefully")
	return exitCode
}
