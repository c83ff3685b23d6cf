package gateway

import (
	"errors"
	"time"

	"motorent/backend/internal/chat"
	"motorent/backend/internal/config"
	"motorent/backend/internal/metrics"
	"motorent/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ChatService is the slice of the chat business logic the gateway needs.
type ChatService interface {
	VerifyChatAccess(chatID, userID string) (bool, error)
	SendMessage(chatID, senderID, content string) (*models.Message, chat.Routing, error)
	MarkMessagesAsRead(chatID, userID string) error
}

// PresenceStore mirrors connect/disconnect into an external best-effort
// online indicator. May be nil.
type PresenceStore interface {
	SetPresence(userID string, ttl time.Duration) error
	ClearPresence(userID string) error
}

// InboundFrame pairs a parsed client event with its origin connection.
type InboundFrame struct {
	Client Client
	Frame  models.Frame
}

// Gateway is the realtime transport layer: it owns the connection registry
// and fans persisted messages out to chat rooms and personal connections.
// All registry mutation happens on the single Run goroutine, so per-room
// broadcast order follows emission order of this process.
type Gateway struct {
	Registry *Registry
	Chat     ChatService
	Presence PresenceStore

	RegisterCh   chan Client
	UnregisterCh chan Client
	FrameCh      chan InboundFrame
}

func NewGateway(registry *Registry, chatSvc ChatService, presence PresenceStore) *Gateway {
	return &Gateway{
		Registry:     registry,
		Chat:         chatSvc,
		Presence:     presence,
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		FrameCh:      make(chan InboundFrame),
	}
}

// Run is the gateway dispatcher. Start it once, as a goroutine.
func (g *Gateway) Run() {
	ticker := time.NewTicker(config.PresenceRefreshPeriod)
	defer ticker.Stop()

	for {
		select {
		case c := <-g.RegisterCh:
			if prev := g.Registry.Bind(c); prev != nil {
				// One connection per user: a new socket displaces the old one.
				prev.Close()
			} else {
				metrics.WsConnections.Inc()
			}
			g.setPresence(c.GetUserID())
			log.Info().Str("user_id", c.GetUserID()).Msg("client connected")

		case c := <-g.UnregisterCh:
			if g.Registry.Unbind(c) {
				metrics.WsConnections.Dec()
				g.clearPresence(c.GetUserID())
				log.Info().Str("user_id", c.GetUserID()).Msg("client disconnected")
			}
			c.Close()

		case in := <-g.FrameCh:
			g.handleFrame(in.Client, in.Frame)

		case <-ticker.C:
			for _, userID := range g.Registry.ConnectedIDs() {
				g.setPresence(userID)
			}
		}
	}
}

func (g *Gateway) handleFrame(c Client, f models.Frame) {
	switch f.Event {
	case models.EventJoinChat:
		g.handleJoin(c, f.ChatID)
	case models.EventLeaveChat:
		g.handleLeave(c, f.ChatID)
	case models.EventSendMessage:
		g.handleSend(c, f)
	case models.EventMarkRead:
		g.handleMarkRead(c, f.ChatID)
	default:
		g.send(c, models.ServerFrame{Event: models.EventError, Error: "unknown event"})
	}
}

// handleJoin re-validates access before admitting the connection to the chat
// room. A denied join answers with an error frame; the connection stays up.
func (g *Gateway) handleJoin(c Client, chatID string) {
	ok, err := g.Chat.VerifyChatAccess(chatID, c.GetUserID())
	if err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("access check failed")
		g.send(c, models.ServerFrame{Event: models.EventJoinChat, ChatID: chatID, Error: "internal error"})
		return
	}
	if !ok {
		g.send(c, models.ServerFrame{Event: models.EventJoinChat, ChatID: chatID, Error: "access denied"})
		return
	}

	g.Registry.JoinRoom(chatID, c.GetUserID())
	g.send(c, models.ServerFrame{Event: models.EventJoinChat, Success: true, ChatID: chatID})
}

func (g *Gateway) handleLeave(c Client, chatID string) {
	g.Registry.LeaveRoom(chatID, c.GetUserID())
	g.send(c, models.ServerFrame{Event: models.EventLeaveChat, Success: true, ChatID: chatID})
}

// handleSend persists through the chat service, then broadcasts new_message
// to the room and chat_message to the other participant's personal
// connection, so an open chat list updates even when that thread is closed.
func (g *Gateway) handleSend(c Client, f models.Frame) {
	senderID := c.GetUserID()

	msg, routing, err := g.Chat.SendMessage(f.ChatID, senderID, f.Content)
	if err != nil {
		g.send(c, models.ServerFrame{Event: models.EventSendMessage, ChatID: f.ChatID, Error: clientError(err)})
		return
	}

	g.send(c, models.ServerFrame{Event: models.EventSendMessage, Success: true, ChatID: f.ChatID, Message: msg})
	g.BroadcastMessage(msg, routing)
}

// handleMarkRead delegates read-state to the chat service and tells the room
// so the sender's client can flip its delivered indicators.
func (g *Gateway) handleMarkRead(c Client, chatID string) {
	userID := c.GetUserID()

	if err := g.Chat.MarkMessagesAsRead(chatID, userID); err != nil {
		g.send(c, models.ServerFrame{Event: models.EventMarkRead, ChatID: chatID, Error: clientError(err)})
		return
	}

	g.send(c, models.ServerFrame{Event: models.EventMarkRead, Success: true, ChatID: chatID})
	g.broadcastRoom(chatID, models.ServerFrame{Event: models.EventMessagesRead, ChatID: chatID, UserID: userID})
}

// BroadcastMessage fans an already-persisted message out the same way a
// socket-originated send does. Used by the REST send path so connected
// participants see messages posted over HTTP. Safe to call from any
// goroutine: the registry carries its own lock.
func (g *Gateway) BroadcastMessage(msg *models.Message, routing chat.Routing) {
	g.broadcastRoom(msg.ChatID, models.ServerFrame{Event: models.EventNewMessage, ChatID: msg.ChatID, Message: msg})

	recipientID := routing.OwnerID
	if msg.SenderID == routing.OwnerID {
		recipientID = routing.RenterID
	}
	if peer, ok := g.Registry.Lookup(recipientID); ok {
		g.send(peer, models.ServerFrame{Event: models.EventChatMessage, ChatID: msg.ChatID, Message: msg})
	}
}

// BroadcastRead announces a read receipt to the chat room on behalf of a
// REST-originated mark-read call.
func (g *Gateway) BroadcastRead(chatID, userID string) {
	g.broadcastRoom(chatID, models.ServerFrame{Event: models.EventMessagesRead, ChatID: chatID, UserID: userID})
}

func (g *Gateway) broadcastRoom(chatID string, frame models.ServerFrame) {
	for _, member := range g.Registry.RoomClients(chatID) {
		g.send(member, frame)
	}
}

// send delivers a frame without blocking the dispatcher. A client that
// refuses the frame is either already closed (a displaced connection with a
// frame still in flight) or has a full buffer; a still-bound one is dropped,
// a stale one is left alone.
func (g *Gateway) send(c Client, frame models.ServerFrame) {
	if c.Deliver(frame) {
		return
	}
	if g.Registry.Unbind(c) {
		log.Warn().Str("user_id", c.GetUserID()).Msg("dropping unreachable client")
		metrics.WsConnections.Dec()
		g.clearPresence(c.GetUserID())
	}
	c.Close()
}

func (g *Gateway) setPresence(userID string) {
	if g.Presence == nil {
		return
	}
	if err := g.Presence.SetPresence(userID, config.PresenceTTL); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to set presence")
	}
}

func (g *Gateway) clearPresence(userID string) {
	if g.Presence == nil {
		return
	}
	if err := g.Presence.ClearPresence(userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to clear presence")
	}
}

// clientError maps service errors to the strings sent over the socket.
// Internal failures stay generic.
func clientError(err error) string {
	switch {
	case errors.Is(err, chat.ErrChatNotFound):
		return "chat not found"
	case errors.Is(err, chat.ErrForbidden):
		return "access denied"
	case errors.Is(err, chat.ErrBadRequest):
		return err.Error()
	default:
		return "internal error"
	}
}
