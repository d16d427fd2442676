package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"bikepulse/internal/infrastructure"
)

// Handler upgrades dashboard page connections and hands them to the hub
type Handler struct {
	hub      *Hub
	service  DashboardComputer
	upgrader websocket.Upgrader
	origins  []string
	logger   *slog.Logger
}

// NewHandler creates the /ws endpoint. allowedOrigins may contain "*".
func NewHandler(hub *Hub, service DashboardComputer, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Handler{
		hub:     hub,
		service: service,
		origins: allowedOrigins,
		logger:  logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	client := NewClient(ctx, h.hub, NewConnectionWrapper(conn), h.service, h.logger)
	if !h.hub.Register(client) {
		client.shutdown()
		return
	}

	go client.WritePump()
	client.ReadPump()
}

// checkOrigin accepts same-host pages, requests without an Origin header
// and the configured origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	h.logger.WarnContext(r.Context(), "websocket origin rejected", slog.String("origin", origin))
	return false
}
