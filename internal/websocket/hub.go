package websocket

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"bikepulse/internal/infrastructure"
)

// Hub tracks the open dashboard connections so they can be counted and
// closed together on shutdown.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client

	done     chan struct{}
	stopped  chan struct{}
	started  atomic.Bool
	stopOnce sync.Once

	mu      sync.RWMutex
	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger
}

// NewHub creates a hub; call Start before registering clients
func NewHub(metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	if h.started.CompareAndSwap(false, true) {
		go h.Run()
	}
}

// Run processes registrations until Stop is called
func (h *Hub) Run() {
	defer close(h.stopped)
	ctx := context.Background()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			h.metrics.RecordWebSocketConn(ctx, 1)
			h.logger.InfoContext(client.ctx, "client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			delete(h.clients, client)
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				h.metrics.RecordWebSocketConn(ctx, -1)
				h.logger.InfoContext(client.ctx, "client unregistered",
					slog.String("client_id", client.id),
					slog.Int("total_clients", count),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case <-h.done:
			h.mu.Lock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
				delete(h.clients, client)
			}
			h.mu.Unlock()

			for _, client := range clients {
				client.shutdown()
			}
			if n := len(clients); n > 0 {
				h.metrics.RecordWebSocketConn(ctx, -int64(n))
			}
			h.logger.Info("hub stopped", slog.Int("closed_clients", len(clients)))
			return
		}
	}
}

// Register adds client to the hub. It returns false once the hub is stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client; unknown clients are ignored
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every registered connection and waits for the loop to exit
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	if h.started.Load() {
		<-h.stopped
	}
}
