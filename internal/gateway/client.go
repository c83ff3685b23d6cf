package gateway

import "motorent/backend/internal/models"

// Client is the interface for one authenticated realtime connection. It
// abstracts the underlying transport so the gateway can manage real websocket
// connections and test doubles uniformly.
type Client interface {
	// GetUserID returns the authenticated user bound to this connection.
	GetUserID() string

	// Deliver hands one outbound frame to the connection without blocking.
	// It reports false once the connection is closed or its buffer is full;
	// a late frame for a closed connection is silently dropped, never a
	// write to a dead channel.
	Deliver(frame models.ServerFrame) bool

	// Run starts the client's read and write pumps.
	Run()

	// Close shuts the connection down. Safe to call more than once.
	Close()
}
