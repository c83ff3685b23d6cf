// Package client is the socket client used by the mobile shell. It keeps a
// live unread counter and a short notification feed from server frames,
// independent of which chat screen (if any) is open.
package client

import (
	"fmt"
	"net/url"
	"sync"

	"motorent/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// maxNotifications bounds the in-memory feed shown on the notifications tab.
const maxNotifications = 50

// Notification is one entry of the client-side notification feed.
type Notification struct {
	ChatID   string
	SenderID string
	Preview  string
}

// Client holds one live socket session. Dial once per login; there is no
// reconnect policy here, the caller redials after an error or logout.
type Client struct {
	conn *websocket.Conn

	mu            sync.Mutex
	unread        map[string]int
	notifications []Notification
	closed        bool

	userID         string
	OnUnread       func(total int)
	OnNotification func(n Notification)
	OnFrame        func(f models.ServerFrame)

	done chan struct{}
}

// Dial connects to the gateway websocket endpoint, authenticating through
// the token query parameter. rawURL is the ws:// or wss:// endpoint.
func Dial(rawURL, token, userID string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}

	c := &Client{
		conn:   conn,
		unread: make(map[string]int),
		userID: userID,
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var frame models.ServerFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				log.Warn().Err(err).Msg("notification socket closed")
			}
			return
		}
		c.handleFrame(frame)
	}
}

// handleFrame updates the unread counter and the feed. chat_message arrives
// on the personal room for every message addressed to this user, including
// chats whose thread is not open. messages_read carries the reader's id; only
// this user's own read receipts reset the local counter.
func (c *Client) handleFrame(frame models.ServerFrame) {
	switch frame.Event {
	case models.EventChatMessage:
		if frame.Message == nil {
			return
		}
		n := Notification{
			ChatID:   frame.Message.ChatID,
			SenderID: frame.Message.SenderID,
			Preview:  frame.Message.Content,
		}
		c.mu.Lock()
		c.unread[n.ChatID]++
		c.notifications = append(c.notifications, n)
		if len(c.notifications) > maxNotifications {
			c.notifications = c.notifications[len(c.notifications)-maxNotifications:]
		}
		total := c.totalLocked()
		onUnread, onNotification := c.OnUnread, c.OnNotification
		c.mu.Unlock()

		if onNotification != nil {
			onNotification(n)
		}
		if onUnread != nil {
			onUnread(total)
		}

	case models.EventMessagesRead:
		if frame.UserID != c.userID {
			return
		}
		c.mu.Lock()
		delete(c.unread, frame.ChatID)
		total := c.totalLocked()
		onUnread := c.OnUnread
		c.mu.Unlock()

		if onUnread != nil {
			onUnread(total)
		}
	}

	c.mu.Lock()
	onFrame := c.OnFrame
	c.mu.Unlock()
	if onFrame != nil {
		onFrame(frame)
	}
}

func (c *Client) totalLocked() int {
	total := 0
	for _, n := range c.unread {
		total += n
	}
	return total
}

// Unread returns the current cross-chat unread total.
func (c *Client) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

// UnreadInChat returns the locally tracked unread count for one chat.
func (c *Client) UnreadInChat(chatID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread[chatID]
}

// Notifications returns a copy of the feed, oldest first.
func (c *Client) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

func (c *Client) write(f models.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteJSON(f)
}

// JoinChat subscribes to a chat room when its thread is opened.
func (c *Client) JoinChat(chatID string) error {
	return c.write(models.Frame{Event: models.EventJoinChat, ChatID: chatID})
}

// LeaveChat unsubscribes from a chat room when its thread is closed.
func (c *Client) LeaveChat(chatID string) error {
	return c.write(models.Frame{Event: models.EventLeaveChat, ChatID: chatID})
}

// SendMessage sends a message into a chat over the socket.
func (c *Client) SendMessage(chatID, content string) error {
	return c.write(models.Frame{Event: models.EventSendMessage, ChatID: chatID, Content: content})
}

// MarkRead asks the server to mark the chat read for this user.
func (c *Client) MarkRead(chatID string) error {
	return c.write(models.Frame{Event: models.EventMarkRead, ChatID: chatID})
}

// Close terminates the session and waits for the read loop to exit.
// Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}
