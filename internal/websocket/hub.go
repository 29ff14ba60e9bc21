// Package websocket manages the live-subscriber registry and the
// per-subscriber streaming loops.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/Salvero/ecopulse-dashboard/internal/metrics"
)

// Hub owns the set of active stream clients. The registry is mutated
// only inside Run, fed through the register/unregister channels, so a
// client's disconnect can never corrupt another client's in-flight
// push. The mutex exists for readers (Count) outside the Run loop.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registry traffic until ctx is canceled. Call it once,
// in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			client.transition(StateOpen)
			metrics.ActiveClients.Inc()
			h.logger.Info("stream client registered", zap.String("client_id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.remove(client)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.Enqueue(message) {
					// Best effort: a subscriber that cannot take the
					// frame is dropped, the rest are unaffected.
					client.Fail()
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove deregisters a client. Callers hold the write lock.
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.shutdown()
	metrics.ActiveClients.Dec()
	h.logger.Info("stream client unregistered",
		zap.String("client_id", client.ID),
		zap.String("state", client.State().String()))
}

// Register adds a client to the registry and opens its stream state.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Disconnect removes a client. Safe to call more than once, and safe
// after the hub itself has stopped.
func (h *Hub) Disconnect(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count reports the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastJSON fans a typed frame out to every current subscriber.
// Delivery is at most once per subscriber with no ordering guarantee
// across subscribers. The per-connection sample stream never calls
// this; the alerting path publishes through it.
func (h *Hub) BroadcastJSON(frameType string, payload any) {
	message, err := json.Marshal(map[string]any{"type": frameType, "payload": payload})
	if err != nil {
		h.logger.Error("failed to marshal broadcast frame", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}
