package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat is a persistent 1:1 conversation between a rental's renter and owner.
// The unique index on RentalID enforces "one chat per rental" in the database
// rather than in application code.
type Chat struct {
	ID       string `gorm:"primaryKey" json:"id"`
	RentalID string `gorm:"type:uuid;uniqueIndex;not null" json:"rental_id"`
	RenterID string `gorm:"type:uuid;not null;index" json:"renter_id"`
	OwnerID  string `gorm:"type:uuid;not null;index" json:"owner_id"`

	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is touched on every message send so the chat list can be
	// ordered by recent activity.
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// IsParticipant reports whether userID is one of the two conversation sides.
func (c *Chat) IsParticipant(userID string) bool {
	return userID == c.RenterID || userID == c.OwnerID
}

// OtherParticipant returns the counterpart of userID, or "" when userID is
// not a participant at all.
func (c *Chat) OtherParticipant(userID string) string {
	switch userID {
	case c.RenterID:
		return c.OwnerID
	case c.OwnerID:
		return c.RenterID
	}
	return ""
}
