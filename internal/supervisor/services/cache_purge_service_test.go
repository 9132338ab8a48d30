// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
)

func TestCachePurgeService(t *testing.T) {
	logger := logging.NewTestLogger(io.Discard)
	bus := events.NewBus(8, logger)
	store := cache.NewMemoryStore(16, time.Minute)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewCachePurgeService(bus, store, logger)
	svcCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(svcCtx) }()

	// The subscription is registered asynchronously; keep publishing until
	// the purge is observed.
	waitFor(t, "cache purge", func() bool {
		if err := bus.PublishSnapshot(ctx, events.SnapshotPublished{Version: "v2", Previous: "v1"}); err != nil {
			t.Fatalf("PublishSnapshot() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)
		return store.Stats().Size == 0
	})

	if _, err := store.Get(ctx, "a"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Get() after purge error = %v, want ErrCacheMiss", err)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return")
	}
	if err := bus.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCachePurgeService_SubscriptionClosed(t *testing.T) {
	logger := logging.NewTestLogger(io.Discard)
	bus := events.NewBus(8, logger)
	svc := NewCachePurgeService(bus, cache.NewMemoryStore(4, time.Minute), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, errSubscriptionClosed) {
			t.Errorf("Serve() error = %v, want errSubscriptionClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after bus close")
	}
}
