// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Dataset    DatasetConfig    `koanf:"dataset"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Cache      CacheConfig      `koanf:"cache"`
	Events     EventsConfig     `koanf:"events"`
	Admin      AdminConfig      `koanf:"admin"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT
//   - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, SHUTDOWN_TIMEOUT
//   - STATIC_DIR: directory served at / (skipped when missing)
//   - CORS_ORIGINS: comma-separated list (default: *)
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
//   - WEBSOCKET_ENABLED: serve /api/v1/ws snapshot notifications (default: true)
//   - ENVIRONMENT: development, staging, production
type ServerConfig struct {
	Host              string        `koanf:"host" validate:"required"`
	Port              int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	StaticDir         string        `koanf:"static_dir"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	WebSocketEnabled  bool          `koanf:"websocket_enabled"`
	Environment       string        `koanf:"environment" validate:"oneof=development staging production"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ToLoggingConfig converts to the logging package's config.
func (l LoggingConfig) ToLoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

// CatalogConfig selects where the snapshot is read from.
//
// Environment Variables:
//   - CATALOG_DRIVER: csv or duckdb (default: csv)
//   - MOVIES_PATH, RATINGS_PATH
//   - RELOAD_INTERVAL: poll for changed files; 0 disables polling
type CatalogConfig struct {
	Driver         string        `koanf:"driver" validate:"oneof=csv duckdb"`
	MoviesPath     string        `koanf:"movies_path" validate:"required"`
	RatingsPath    string        `koanf:"ratings_path" validate:"required"`
	ReloadInterval time.Duration `koanf:"reload_interval" validate:"gte=0"`
}

// ToCatalogConfig converts to the catalog package's config.
func (c CatalogConfig) ToCatalogConfig() catalog.Config {
	return catalog.Config{Driver: c.Driver, MoviesPath: c.MoviesPath, RatingsPath: c.RatingsPath}
}

// DatasetConfig controls the MovieLens download.
//
// Environment Variables:
//   - DATASET_URL, DATA_DIR
//   - AUTO_FETCH: download on startup when the snapshot files are missing
//   - DATASET_TIMEOUT, DATASET_MAX_ATTEMPTS, DATASET_RETRY_PER_SECOND
type DatasetConfig struct {
	URL            string        `koanf:"url" validate:"required,url"`
	DataDir        string        `koanf:"data_dir" validate:"required"`
	AutoFetch      bool          `koanf:"auto_fetch"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxAttempts    int           `koanf:"max_attempts" validate:"gte=1,lte=20"`
	RetryPerSecond float64       `koanf:"retry_per_second" validate:"gt=0"`
}

// ToDatasetConfig converts to the dataset package's config.
func (d DatasetConfig) ToDatasetConfig() dataset.Config {
	return dataset.Config{
		URL:            d.URL,
		DataDir:        d.DataDir,
		Timeout:        d.Timeout,
		MaxAttempts:    d.MaxAttempts,
		RetryPerSecond: d.RetryPerSecond,
	}
}

// RecommendConfig holds the fusion and model parameters.
//
// Environment Variables:
//   - RECOMMEND_CONTENT_WEIGHT, RECOMMEND_COLLABORATIVE_WEIGHT
//   - RECOMMEND_MIN_SCORE, RECOMMEND_FUZZY_CUTOFF
//   - RECOMMEND_DEFAULT_TOP_N, RECOMMEND_MAX_TOP_N
//   - RECOMMEND_CANDIDATE_MULTIPLIER, RECOMMEND_WORKERS
type RecommendConfig struct {
	ContentWeight       float64 `koanf:"content_weight" validate:"gte=0,lte=1"`
	CollaborativeWeight float64 `koanf:"collaborative_weight" validate:"gte=0,lte=1"`
	MinScore            float64 `koanf:"min_score" validate:"gte=0,lt=1"`
	FuzzyCutoff         float64 `koanf:"fuzzy_cutoff" validate:"gte=0,lte=1"`
	DefaultTopN         int     `koanf:"default_top_n" validate:"gte=1"`
	MaxTopN             int     `koanf:"max_top_n" validate:"gte=1"`
	CandidateMultiplier int     `koanf:"candidate_multiplier" validate:"gte=1"`
	Workers             int     `koanf:"workers" validate:"gte=0"`
}

// ToEngineConfig converts to the recommend package's config.
func (r RecommendConfig) ToEngineConfig() *recommend.Config {
	return &recommend.Config{
		ContentWeight:       r.ContentWeight,
		CollaborativeWeight: r.CollaborativeWeight,
		MinScore:            r.MinScore,
		FuzzyCutoff:         r.FuzzyCutoff,
		DefaultTopN:         r.DefaultTopN,
		MaxTopN:             r.MaxTopN,
		CandidateMultiplier: r.CandidateMultiplier,
		Workers:             r.Workers,
	}
}

// CacheConfig holds response cache settings.
//
// Environment Variables:
//   - CACHE_ENABLED, CACHE_BACKEND (memory or badger)
//   - CACHE_CAPACITY, CACHE_TTL, CACHE_BADGER_DIR
type CacheConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Backend   string        `koanf:"backend" validate:"oneof=memory badger"`
	Capacity  int           `koanf:"capacity" validate:"gte=1"`
	TTL       time.Duration `koanf:"ttl" validate:"gt=0"`
	BadgerDir string        `koanf:"badger_dir"`
}

// ToCacheConfig converts to the cache package's config.
func (c CacheConfig) ToCacheConfig() cache.Config {
	return cache.Config{Backend: c.Backend, Capacity: c.Capacity, TTL: c.TTL, BadgerDir: c.BadgerDir}
}

// EventsConfig selects the event bus backend.
//
// Environment Variables:
//   - EVENTS_BACKEND: gochannel or nats (default: gochannel)
//   - EVENTS_BUFFER: per-subscriber buffer for gochannel
//   - NATS_URL: external server, e.g. nats://nats:4222
//   - NATS_EMBEDDED, NATS_HOST, NATS_PORT: run a server in-process instead
type EventsConfig struct {
	Backend      string `koanf:"backend" validate:"oneof=gochannel nats"`
	Buffer       int64  `koanf:"buffer" validate:"gte=0"`
	NATSURL      string `koanf:"nats_url"`
	NATSEmbedded bool   `koanf:"nats_embedded"`
	NATSHost     string `koanf:"nats_host"`
	NATSPort     int    `koanf:"nats_port" validate:"gte=-1,lte=65535"`
}

// ToEventsConfig converts to the events package's config.
func (e EventsConfig) ToEventsConfig() events.Config {
	return events.Config{
		Backend: e.Backend,
		Buffer:  e.Buffer,
		NATS: events.NATSConfig{
			URL:      e.NATSURL,
			Embedded: e.NATSEmbedded,
			Host:     e.NATSHost,
			Port:     e.NATSPort,
		},
	}
}

// AdminConfig holds admin API settings. An empty secret disables the admin
// routes.
//
// Environment Variables:
//   - ADMIN_JWT_SECRET (min 32 characters)
//   - ADMIN_TOKEN_TTL, ADMIN_ISSUER
//   - ADMIN_POLICY_PATH (casbin policy CSV, empty uses the built-in policy)
type AdminConfig struct {
	JWTSecret  string        `koanf:"jwt_secret" validate:"omitempty,min=32"`
	TokenTTL   time.Duration `koanf:"token_ttl" validate:"gt=0"`
	Issuer     string        `koanf:"issuer" validate:"required"`
	PolicyPath string        `koanf:"policy_path"`
}

// Enabled reports whether admin routes are served.
func (a AdminConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// SupervisorConfig holds suture tree settings.
//
// Environment Variables:
//   - SUPERVISOR_FAILURE_THRESHOLD, SUPERVISOR_FAILURE_DECAY
//   - SUPERVISOR_FAILURE_BACKOFF, SUPERVISOR_SHUTDOWN_TIMEOUT
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gte=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gte=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gte=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			StaticDir:         "static",
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
			WebSocketEnabled:  true,
			Environment:       "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Catalog: CatalogConfig{
			Driver:      catalog.DriverCSV,
			MoviesPath:  filepath.Join("data", dataset.MoviesFile),
			RatingsPath: filepath.Join("data", dataset.RatingsFile),
		},
		Dataset: DatasetConfig{
			URL:            dataset.DefaultURL,
			DataDir:        "data",
			Timeout:        2 * time.Minute,
			MaxAttempts:    3,
			RetryPerSecond: 0.5,
		},
		Recommend: RecommendConfig{
			ContentWeight:       engine.ContentWeight,
			CollaborativeWeight: engine.CollaborativeWeight,
			MinScore:            engine.MinScore,
			FuzzyCutoff:         engine.FuzzyCutoff,
			DefaultTopN:         engine.DefaultTopN,
			MaxTopN:             engine.MaxTopN,
			CandidateMultiplier: engine.CandidateMultiplier,
			Workers:             engine.Workers,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   cache.BackendMemory,
			Capacity:  1024,
			TTL:       10 * time.Minute,
			BadgerDir: filepath.Join("data", "cache"),
		},
		Events: EventsConfig{
			Backend:  events.BackendGoChannel,
			Buffer:   16,
			NATSHost: "127.0.0.1",
			NATSPort: 4222,
		},
		Admin: AdminConfig{
			TokenTTL: time.Hour,
			Issuer:   "cinematch",
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Default returns the built-in defaults without reading files or env.
func Default() *Config {
	return defaultConfig()
}

// Load loads configuration from defaults, the first config file found, and
// environment variables, in that order of precedence.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
