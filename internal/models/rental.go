package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rental statuses the chat layer cares about. A chat may be opened for any
// rental regardless of status; the values exist for the admin CLI output.
const (
	RentalStatusPending   = "pending"
	RentalStatusActive    = "active"
	RentalStatusCompleted = "completed"
	RentalStatusCancelled = "cancelled"
)

// Rental binds a renter to an owner's vehicle for a period of time. It is the
// anchor for a Chat: at most one conversation exists per rental.
type Rental struct {
	ID        string `gorm:"primaryKey" json:"id"`
	VehicleID string `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	RenterID  string `gorm:"type:uuid;not null;index" json:"renter_id"`
	OwnerID   string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Status    string `gorm:"not null;default:pending" json:"status"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Rental) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
