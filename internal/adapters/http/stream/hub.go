// Package stream broadcasts synced events and cognitive states to
// websocket telemetry clients.
//
// The emit path must never block on a slow client: each client has a
// bounded send buffer and messages beyond it are dropped for that client
// only.
package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/okian/attune/internal/domain/model"
	"github.com/okian/attune/pkg/logger"
	"github.com/okian/attune/pkg/metrics"
)

const defaultSendBuffer = 32

// Hub fans messages out to connected clients.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	sendBuffer int
	log        logger.Logger
}

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithSendBuffer sets the per-client send buffer. Non-positive values are
// ignored.
func WithSendBuffer(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.sendBuffer = size
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*client]struct{}),
		sendBuffer: defaultSendBuffer,
		log:        logger.Named("stream"),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// update is the wire shape of one telemetry message.
type update struct {
	Type  string                `json:"type"`
	Event *eventPayload         `json:"event,omitempty"`
	State *model.CognitiveState `json:"state,omitempty"`
}

type eventPayload struct {
	TS       int64 `json:"ts_ms"`
	VisualTS int64 `json:"visual_ts_ms"`
	AudioTS  int64 `json:"audio_ts_ms"`
	GapMS    int64 `json:"gap_ms"`
}

// BroadcastEvent sends one synced event to all clients. Never blocks.
func (h *Hub) BroadcastEvent(ev model.SyncedEvent) {
	h.broadcast(update{
		Type: "event",
		Event: &eventPayload{
			TS:       ev.TS,
			VisualTS: ev.Visual.TS,
			AudioTS:  ev.Audio.TS,
			GapMS:    ev.Gap(),
		},
	})
}

// BroadcastState sends one cognitive state to all clients. Never blocks.
func (h *Hub) BroadcastState(state model.CognitiveState) {
	h.broadcast(update{Type: "state", State: &state})
}

func (h *Hub) broadcast(u update) {
	data, err := json.Marshal(u)
	if err != nil {
		h.log.Error(context.Background(), "marshal telemetry update", logger.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow client: drop this message for it.
			c.dropped.Add(1)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateStreamClients(count)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateStreamClients(count)
}
