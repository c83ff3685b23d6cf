package gateway_test

import (
	"sync"

	"motorent/backend/internal/models"
)

// MockClient mirrors WebSocketClient's delivery and close semantics: Close
// really closes the channel, and Deliver refuses frames afterwards.
type MockClient struct {
	userID string
	// RecvChannel captures every frame the gateway sends to this client.
	RecvChannel chan models.ServerFrame

	mu     sync.Mutex
	closed bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID:      userID,
		RecvChannel: make(chan models.ServerFrame, 16),
	}
}

func (c *MockClient) GetUserID() string {
	return c.userID
}

func (c *MockClient) Deliver(frame models.ServerFrame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.RecvChannel <- frame:
		return true
	default:
		return false
	}
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.RecvChannel)
}

func (c *MockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
