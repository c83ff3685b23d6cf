package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"motorent/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the gateway.Client interface on top of a
// gorilla/websocket connection.
type WebSocketClient struct {
	UserID  string
	Conn    *websocket.Conn
	Gateway *Gateway
	Send    chan models.ServerFrame

	mu     sync.Mutex
	closed bool
}

func (c *WebSocketClient) GetUserID() string { return c.UserID }

// Deliver enqueues one frame for the write pump. Both the closed check and
// the channel write happen under the mutex that Close takes, so a frame can
// never race Close onto a closed channel.
func (c *WebSocketClient) Deliver(frame models.ServerFrame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}

// Run starts the pumps for this connection.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump and closes the
// underlying connection. Safe to call repeatedly; after it returns, Deliver
// reports false instead of touching the channel.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// readPump parses inbound frames and hands them to the gateway dispatcher.
// A malformed frame answers with an error and keeps the connection alive.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Gateway.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", c.UserID).Msg("websocket read error")
			}
			break
		}

		var frame models.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Warn().Err(err).Str("user_id", c.UserID).Msg("malformed frame")
			c.Deliver(models.ServerFrame{Event: models.EventError, Error: "malformed frame"})
			continue
		}

		c.Gateway.FrameCh <- InboundFrame{Client: c, Frame: frame}
	}
}

// writePump serializes outbound frames, one websocket message each, and keeps
// the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the gateway.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(frame)
			if err != nil {
				log.Error().Err(err).Str("user_id", c.UserID).Msg("failed to encode frame")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
