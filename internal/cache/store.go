// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Supported backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Store is a byte-oriented response cache with per-entry expiry.
type Store interface {
	// Get returns the value or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the store's TTL.
	Set(ctx context.Context, key string, value []byte) error

	// Purge removes every entry.
	Purge(ctx context.Context) error

	// Stats returns hit, miss and size counters.
	Stats() Stats

	// Close releases resources held by the store.
	Close() error
}

// Stats contains cache counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// Config selects and configures a store.
type Config struct {
	Backend   string
	Capacity  int
	TTL       time.Duration
	BadgerDir string
}

// New returns the store for cfg.Backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(cfg.Capacity, cfg.TTL), nil
	case BackendBadger:
		return OpenBadgerStore(cfg.BadgerDir, cfg.TTL, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key builds a cache key scoped to a snapshot version, so entries from an
// older snapshot can never be served after a reload.
func Key(version, route, title string, limit int) string {
	var b strings.Builder
	b.Grow(len(version) + len(route) + len(title) + 16)
	b.WriteString(version)
	b.WriteByte('|')
	b.WriteString(route)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(limit))
	b.WriteByte('|')
	b.WriteString(title)
	return b.String()
}
