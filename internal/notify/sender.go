// Package notify delivers best-effort push notifications. Delivery is
// out-of-band: the chat layer fires a notification and moves on, so every
// implementation here must be safe to fail.
package notify

import (
	"github.com/rs/zerolog/log"
)

// Sender dispatches a push notification to a single user.
type Sender interface {
	SendPushNotification(userID, title, body string, data map[string]string) error
}

// MultiSender fans a notification out to several transports. Every transport
// is attempted; the first error is returned after all attempts so a broken
// channel never shadows a working one.
type MultiSender struct {
	Senders []Sender
}

func NewMultiSender(senders ...Sender) *MultiSender {
	return &MultiSender{Senders: senders}
}

func (m *MultiSender) SendPushNotification(userID, title, body string, data map[string]string) error {
	var first error
	for _, s := range m.Senders {
		if err := s.SendPushNotification(userID, title, body, data); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("push transport failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}
