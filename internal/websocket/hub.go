// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/metrics"
)

// Message types.
const (
	MessageTypeSnapshotPublished = "snapshot_published"
	MessageTypePing              = "ping"
	MessageTypePong              = "pong"
)

// Message is a single websocket frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a hub. It does nothing until RunWithContext is called.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// RunWithContext serves registrations and broadcasts until ctx ends, then
// closes every client.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Membership changes first, so a broadcast never races a
		// registration that was already queued.
		select {
		case client := <-h.register:
			h.add(client)
			continue
		case client := <-h.unregister:
			h.remove(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			n := h.closeAll()
			h.logger.Info().Int("clients_closed", n).Msg("websocket hub stopped")
			return ctx.Err()
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// Broadcast queues msg for every client. It returns false and drops the
// message when the queue is full.
func (h *Hub) Broadcast(msgType string, data interface{}) bool {
	select {
	case h.broadcast <- Message{Type: msgType, Data: data}:
		return true
	default:
		h.logger.Warn().Str("message_type", msgType).Msg("broadcast channel full, dropping message")
		return false
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register hands a client to the hub. It fails if ctx ends first, e.g.
// when the hub is not running.
func (h *Hub) Register(ctx context.Context, c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unregister removes a client and closes its send channel. It is safe to
// call more than once and after the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		h.remove(c)
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(n))
	h.logger.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(n))
	h.logger.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client disconnected")
}

// sortedClients returns clients by id so delivery order is stable. Callers
// hold h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	var dropped int
	for _, c := range h.sortedClients() {
		select {
		case c.send <- msg:
		default:
			// Slow client: disconnect it instead of blocking everyone.
			close(c.send)
			delete(h.clients, c)
			dropped++
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Set(float64(n))
	metrics.RecordWebSocketBroadcast(msg.Type, dropped)
	if dropped > 0 {
		h.logger.Warn().Int("dropped_clients", dropped).Str("message_type", msg.Type).Msg("disconnected slow websocket clients")
	}
}

func (h *Hub) closeAll() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.sortedClients()
	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.WebSocketClients.Set(0)
	return len(clients)
}
