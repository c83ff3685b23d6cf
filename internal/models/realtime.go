package models

// Socket event names. Client-initiated events arrive as Frame.Event; the
// server answers with a ServerFrame carrying the same event name, and emits
// the server-initiated events below on its own.
const (
	EventJoinChat    = "join_chat"
	EventLeaveChat   = "leave_chat"
	EventSendMessage = "send_message"
	EventMarkRead    = "mark_read"

	EventNewMessage   = "new_message"
	EventChatMessage  = "chat_message"
	EventMessagesRead = "messages_read"
	EventError        = "error"
)

// Frame is a client-to-server event.
type Frame struct {
	Event   string `json:"event"`
	ChatID  string `json:"chat_id,omitempty"`
	Content string `json:"content,omitempty"`
}

// ServerFrame is everything the server writes to a socket: acks for
// client events, error payloads, and broadcasts.
type ServerFrame struct {
	Event   string   `json:"event"`
	Success bool     `json:"success,omitempty"`
	ChatID  string   `json:"chat_id,omitempty"`
	UserID  string   `json:"user_id,omitempty"`
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// PushPayload is what gets published to the external push collaborator.
type PushPayload struct {
	UserID string            `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}
