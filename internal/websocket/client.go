package websocket

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/services"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	sendBufferSize = 16
)

// Client serves one dashboard connection. ReadPump answers each range
// request with a recomputed dashboard; WritePump owns every write other
// than the shutdown close frame.
type Client struct {
	hub     *Hub
	conn    Connection
	service DashboardComputer

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	id          string
	remoteAddr  string
	connectedAt time.Time

	ctx    context.Context
	logger *slog.Logger
}

// NewClient creates a client for conn. ctx carries the request trace ID and
// outlives the upgrade request.
func NewClient(ctx context.Context, hub *Hub, conn Connection, service DashboardComputer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		service:     service,
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
		id:          id,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		ctx:         ctx,
		logger:      logger,
	}
}

// ID returns the client identifier
func (c *Client) ID() string { return c.id }

// ReadPump reads range requests until the peer goes away or the read
// deadline passes without a pong.
func (c *Client) ReadPump() {
	defer func() {
		c.closeOnce.Do(func() { close(c.done) })
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(config.WebSocketReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(config.WebSocketPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(config.WebSocketPongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.WarnContext(c.ctx, "websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		if reply := c.handle(data); reply != nil {
			if !c.enqueue(reply) {
				return
			}
		}
	}
}

// handle turns one inbound frame into the reply to send, or nil
func (c *Client) handle(data []byte) []byte {
	req, err := decodeRequest(data)
	if err != nil {
		c.logger.DebugContext(c.ctx, "malformed websocket message", slog.String("error", err.Error()))
		return errorFrame("malformed request: expected {\"start\",\"end\"}")
	}

	switch req.Type {
	case TypeHeartbeat:
		c.conn.SetReadDeadline(time.Now().Add(config.WebSocketPongWait))
		return nil
	case TypeRange:
	default:
		return errorFrame("unsupported message type: " + req.Type)
	}

	rng, err := c.service.ParseRange(req.Start, req.End)
	if err != nil {
		return errorFrame(errorMessage(err))
	}

	dash, err := c.service.Compute(c.ctx, rng, services.SourceWebSocket)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "dashboard recompute failed", slog.String("error", err.Error()))
		return errorFrame(errorMessage(err))
	}

	payload, err := json.Marshal(dash)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "failed to encode dashboard", slog.String("error", err.Error()))
		return errorFrame("failed to encode dashboard")
	}
	return payload
}

// enqueue hands msg to WritePump. A full buffer means the peer stopped
// reading; the connection is dropped.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	default:
		c.logger.WarnContext(c.ctx, "send buffer full, disconnecting")
		return false
	}
}

// WritePump writes queued replies and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(config.WebSocketPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.DebugContext(c.ctx, "websocket write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// shutdown sends a going-away close frame and drops the connection
func (c *Client) shutdown() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.conn.Close()
}

func errorMessage(err error) string {
	var apiErr *apierrors.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Message
	}
	var appErr *apierrors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return "request cancelled"
	}
	return "internal error"
}
