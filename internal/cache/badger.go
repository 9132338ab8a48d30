// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const badgerKeyPrefix = "resp:"

// BadgerStore persists cached responses in BadgerDB. Expiry is delegated to
// Badger's per-entry TTL, so entries survive restarts until they age out.
type BadgerStore struct {
	db     *badger.DB
	ttl    time.Duration
	logger zerolog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// OpenBadgerStore opens (or creates) a store in dir. An empty dir runs
// Badger in memory.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadgerStore(dir string, ttl time.Duration, logger zerolog.Logger) (*BadgerStore, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	logger = logger.With().Str("component", "cache").Str("backend", BackendBadger).Logger()

	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &BadgerStore{db: db, ttl: ttl, logger: logger}, nil
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		s.misses.Add(1)
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
	}
	s.hits.Add(1)
	return out, nil
}

// Set implements Store.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(badgerKeyPrefix+key), value).WithTTL(s.ttl)
		return txn.SetEntry(e)
	})
}

// Purge implements Store.
func (s *BadgerStore) Purge(_ context.Context) error {
	if err := s.db.DropPrefix([]byte(badgerKeyPrefix)); err != nil {
		return fmt.Errorf("badger purge: %w", err)
	}
	return nil
}

// Stats implements Store. Size counts live keys and is O(n).
func (s *BadgerStore) Stats() Stats {
	size := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			size++
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to count cache entries")
	}
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load(), Size: size}
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger routes Badger's internal logging through zerolog. Info is
// demoted to debug because Badger is chatty at startup.
type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error().Msgf(strings.TrimSpace(format), args...)
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Trace().Msgf(strings.TrimSpace(format), args...)
}
