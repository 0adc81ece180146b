package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/sim"
)

// subscription is one websocket client's buffered snapshot feed.
type subscription struct {
	ch chan sim.Snapshot
}

// Hub fans completed snapshots out to websocket clients. Broadcast is
// non-blocking: a client whose buffer is full misses that snapshot
// rather than stalling the simulation.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	logger *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*subscription]struct{}),
		logger: logger,
	}
}

// Publish broadcasts a snapshot to every subscriber without blocking.
func (h *Hub) Publish(snap sim.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- snap:
		default:
		}
	}
}

func (h *Hub) subscribe(buffer int) *subscription {
	sub := &subscription{ch: make(chan sim.Snapshot, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	close(sub.ch)
}

// SubscriberCount returns the number of connected clients.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The simulator serves local dashboards; origin enforcement is the
	// deployment's reverse proxy's job.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS handles GET /ws: upgrades the connection and streams every
// published snapshot as a JSON message until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	sub := h.subscribe(16)
	ctx, cancel := context.WithCancel(r.Context())

	// Reader goroutine: we never expect client messages, but reading
	// is what surfaces close frames and dead connections.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.unsubscribe(sub)
		_ = conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(buildSnapshotResponse(snap)); err != nil {
				h.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}
