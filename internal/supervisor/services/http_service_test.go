// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cinematch/internal/logging"
)

// mockHTTPServer is a test double for HTTPServer interface.
type mockHTTPServer struct {
	listenErr     error
	shutdownErr   error
	listenCount   atomic.Int32
	shutdownCount atomic.Int32
	started       chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		started: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.listenCount.Add(1)
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(ctx context.Context) error {
	m.shutdownCount.Add(1)
	m.stopOnce.Do(func() { close(m.stopCh) })
	return m.shutdownErr
}

var _ suture.Service = (*HTTPServerService)(nil)

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	svc := NewHTTPServerService(newMockHTTPServer(), 0, logging.NewTestLogger(io.Discard))
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v, want 10s", svc.shutdownTimeout)
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	tests := []struct {
		name         string
		listenErr    error
		shutdownErr  error
		cancel       bool
		wantErr      error
		wantShutdown int32
	}{
		{name: "graceful shutdown", cancel: true, wantErr: context.Canceled, wantShutdown: 1},
		{name: "startup failure", listenErr: errors.New("address already in use"), wantShutdown: 0},
		{name: "shutdown failure", cancel: true, shutdownErr: errors.New("drain timeout"), wantShutdown: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newMockHTTPServer()
			server.listenErr = tt.listenErr
			server.shutdownErr = tt.shutdownErr
			svc := NewHTTPServerService(server, time.Second, logging.NewTestLogger(io.Discard))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			<-server.started
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-errCh:
				switch {
				case tt.wantErr != nil && !errors.Is(err, tt.wantErr):
					t.Errorf("Serve() error = %v, want %v", err, tt.wantErr)
				case tt.wantErr == nil && err == nil:
					t.Error("Serve() expected an error")
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Serve() did not return")
			}

			if got := server.shutdownCount.Load(); got != tt.wantShutdown {
				t.Errorf("Shutdown calls = %d, want %d", got, tt.wantShutdown)
			}
		})
	}
}
