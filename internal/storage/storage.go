package storage

import (
	"context"
	"errors"
	"time"

	"motorent/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrDuplicateChat signals that the unique "one chat per rental" constraint
// fired. The chat service resolves it by fetching the existing row.
var ErrDuplicateChat = errors.New("chat already exists for rental")

type Storage interface {
	CreateChat(chat *models.Chat) error
	FindChatByID(chatID string) (*models.Chat, error)
	FindChatByRentalID(rentalID string) (*models.Chat, error)
	FindChatsForUser(userID string) ([]models.Chat, error)
	TouchChat(chatID string) error

	SaveMessage(msg *models.Message) error
	FindMessagesPage(chatID string, page, limit int) ([]models.Message, error)
	LastMessage(chatID string) (*models.Message, error)
	MarkMessagesRead(chatID, readerID string, readAt time.Time) (int64, error)
	CountUnreadInChat(chatID, userID string) (int64, error)
	CountUnreadForUser(userID string) (int64, error)

	SaveUser(user *models.User) error
	FindUserByID(userID string) (*models.User, error)
	FindUserByEmail(email string) (*models.User, error)
	FindVehicleByID(vehicleID string) (*models.Vehicle, error)
	FindRentalByID(rentalID string) (*models.Rental, error)

	PublishPushPayload(payload models.PushPayload) error
	SetPresence(userID string, ttl time.Duration) error
	ClearPresence(userID string) error
	IsOnline(userID string) (bool, error)
}

// Service is the PostgreSQL + Redis backed implementation of Storage.
// Redis is optional: a nil client turns the presence and publish methods
// into no-ops.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService Constructor
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}
