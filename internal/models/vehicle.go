package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Vehicle is a listed motorbike. Only the fields the chat surface needs are
// modelled here; listing management lives in a different service.
type Vehicle struct {
	ID      string `gorm:"primaryKey" json:"id"`
	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Brand   string `gorm:"not null" json:"brand"`
	Model   string `gorm:"not null" json:"model"`
	// ImageURLs keeps the gallery order; the first entry is the primary image.
	ImageURLs pq.StringArray `gorm:"type:text[]" json:"image_urls"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}

// PrimaryImage returns the first gallery image, or "" when none is set.
func (v *Vehicle) PrimaryImage() string {
	if len(v.ImageURLs) == 0 {
		return ""
	}
	return v.ImageURLs[0]
}
