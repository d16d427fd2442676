package websocket

import (
	"context"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// Connection is the subset of *websocket.Conn a Client needs.
// Tests substitute an in-memory implementation.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error

	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)

	// RemoteAddr returns the remote network address
	RemoteAddr() string
}

// DashboardComputer recomputes the dashboard for a requested range
type DashboardComputer interface {
	ParseRange(start, end string) (domain.DateRange, error)
	Compute(ctx context.Context, rng domain.DateRange, source string) (domain.Dashboard, error)
}
