package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message belongs to exactly one Chat. Created on send, mutated only when the
// other participant marks it as read, never deleted.
type Message struct {
	ID       string `gorm:"primaryKey" json:"id"`
	ChatID   string `gorm:"type:uuid;not null;index:idx_chat_created" json:"chat_id"`
	SenderID string `gorm:"type:uuid;not null" json:"sender_id"`
	Content  string `gorm:"type:text;not null" json:"content"`

	IsRead bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `gorm:"index:idx_chat_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
