// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if !cfg.HasWildcardCORS() {
		t.Error("CORS should allow any origin by default")
	}
	if cfg.Catalog.Driver != "csv" {
		t.Errorf("Catalog.Driver = %q, want csv", cfg.Catalog.Driver)
	}
	if cfg.Catalog.ReloadInterval != 0 {
		t.Errorf("Catalog.ReloadInterval = %v, want 0 (polling off)", cfg.Catalog.ReloadInterval)
	}
	if cfg.Dataset.AutoFetch {
		t.Error("Dataset.AutoFetch should be off by default")
	}
	if cfg.Dataset.MaxAttempts != 3 || cfg.Dataset.Timeout != 2*time.Minute {
		t.Errorf("Dataset = %+v", cfg.Dataset)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.Capacity != 1024 || cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Admin.Enabled() {
		t.Error("admin API should be disabled without a secret")
	}

	engine := cfg.Recommend.ToEngineConfig()
	if *engine != *recommend.DefaultConfig() {
		t.Errorf("engine config = %+v, want recommend defaults", engine)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Catalog.Driver = "sqlite" },
			wantErr: "catalog.driver",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "threshold at one",
			mutate:  func(c *Config) { c.Recommend.MinScore = 1 },
			wantErr: "recommend.min_score",
		},
		{
			name:    "max below default",
			mutate:  func(c *Config) { c.Recommend.MaxTopN = 5 },
			wantErr: "max_top_n",
		},
		{
			name: "both weights zero",
			mutate: func(c *Config) {
				c.Recommend.ContentWeight = 0
				c.Recommend.CollaborativeWeight = 0
			},
			wantErr: "cannot both be zero",
		},
		{
			name: "weights sum above one",
			mutate: func(c *Config) {
				c.Recommend.ContentWeight = 1
				c.Recommend.CollaborativeWeight = 1
			},
			wantErr: "must not exceed 1",
		},
		{
			name:    "zero fuzzy cutoff",
			mutate:  func(c *Config) { c.Recommend.FuzzyCutoff = 0 },
			wantErr: "fuzzy_cutoff",
		},
		{
			name:    "short admin secret",
			mutate:  func(c *Config) { c.Admin.JWTSecret = "short" },
			wantErr: "admin.jwt_secret",
		},
		{
			name:   "long admin secret",
			mutate: func(c *Config) { c.Admin.JWTSecret = strings.Repeat("s", 32) },
		},
		{
			name: "badger without dir",
			mutate: func(c *Config) {
				c.Cache.Backend = "badger"
				c.Cache.BadgerDir = ""
			},
			wantErr: "badger_dir",
		},
		{
			name:    "unknown events backend",
			mutate:  func(c *Config) { c.Events.Backend = "kafka" },
			wantErr: "events.backend",
		},
		{
			name:    "nats without url",
			mutate:  func(c *Config) { c.Events.Backend = "nats" },
			wantErr: "events.nats_url",
		},
		{
			name: "embedded nats",
			mutate: func(c *Config) {
				c.Events.Backend = "nats"
				c.Events.NATSEmbedded = true
			},
		},
		{
			name:    "invalid dataset url",
			mutate:  func(c *Config) { c.Dataset.URL = "not a url" },
			wantErr: "dataset.url",
		},
		{
			name: "rate limit without window",
			mutate: func(c *Config) {
				c.Server.RateLimitWindow = 0
			},
			wantErr: "rate_limit_window",
		},
		{
			name: "production forbids disabled rate limit",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Server.RateLimitDisabled = true
			},
			wantErr: "production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if got := s.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q", got)
	}
	s.Host = "::1"
	if got := s.Addr(); got != "[::1]:8000" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestConversions(t *testing.T) {
	cfg := defaultConfig()

	cc := cfg.Catalog.ToCatalogConfig()
	if cc.MoviesPath != cfg.Catalog.MoviesPath || cc.Driver != "csv" {
		t.Errorf("ToCatalogConfig() = %+v", cc)
	}
	dc := cfg.Dataset.ToDatasetConfig()
	if dc.URL != cfg.Dataset.URL || dc.MaxAttempts != 3 || dc.Force {
		t.Errorf("ToDatasetConfig() = %+v", dc)
	}
	lc := cfg.Logging.ToLoggingConfig()
	if lc.Level != "info" || lc.Format != "json" || !lc.Timestamp {
		t.Errorf("ToLoggingConfig() = %+v", lc)
	}
	ec := cfg.Events.ToEventsConfig()
	if ec.Backend != "gochannel" || ec.Buffer != 16 || ec.NATS.Port != 4222 {
		t.Errorf("ToEventsConfig() = %+v", ec)
	}
	kc := cfg.Cache.ToCacheConfig()
	if kc.Backend != "memory" || kc.Capacity != 1024 {
		t.Errorf("ToCacheConfig() = %+v", kc)
	}
}
