package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a marketplace account. The same record serves renters and
// owners; the role is implied by the rental, not stored here.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null" json:"name"`
	AvatarURL    string `json:"avatar_url"`
	// Language selects the locale for push notification texts.
	Language string `gorm:"default:en" json:"language"`
	// TelegramChatID is set when the user linked a Telegram account; pushes
	// are then mirrored through the bot. Nil for everyone else.
	TelegramChatID *int64 `gorm:"uniqueIndex" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when the ID is not
// set by the caller.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
