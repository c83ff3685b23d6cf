package storage

import (
	"errors"
	"strings"
	"time"

	"motorent/backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CreateChat inserts a new chat row. A unique violation on rental_id is
// translated to ErrDuplicateChat so the caller can fetch-after-conflict.
func (s *Service) CreateChat(chat *models.Chat) error {
	err := s.DB.Create(chat).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicateChat
	}
	log.Error().Err(err).Str("rental_id", chat.RentalID).Msg("failed to create chat")
	return err
}

func (s *Service) FindChatByID(chatID string) (*models.Chat, error) {
	var chat models.Chat
	if err := s.DB.Where("id = ?", chatID).First(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *Service) FindChatByRentalID(rentalID string) (*models.Chat, error) {
	var chat models.Chat
	if err := s.DB.Where("rental_id = ?", rentalID).First(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// FindChatsForUser returns every chat where the user is renter or owner,
// most recently active first.
func (s *Service) FindChatsForUser(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.
		Where("renter_id = ? OR owner_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

// TouchChat bumps updated_at so the chat surfaces at the top of the list.
func (s *Service) TouchChat(chatID string) error {
	return s.DB.Model(&models.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", time.Now()).Error
}

func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Error().Err(err).Str("chat_id", msg.ChatID).Msg("failed to save message")
		return err
	}
	return nil
}

// FindMessagesPage fetches one page of messages newest-first. The chat
// service reverses the slice into display order.
func (s *Service) FindMessagesPage(chatID string, page, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.
		Where("chat_id = ?", chatID).
		Order("created_at desc, id desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// LastMessage returns the newest message of a chat, or nil when the chat is
// still empty.
func (s *Service) LastMessage(chatID string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.
		Where("chat_id = ?", chatID).
		Order("created_at desc, id desc").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkMessagesRead flips every unread message authored by the other
// participant. The reader's own messages are excluded by the sender filter,
// which also makes the operation idempotent.
func (s *Service) MarkMessagesRead(chatID, readerID string, readAt time.Time) (int64, error) {
	res := s.DB.Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": readAt,
		})
	return res.RowsAffected, res.Error
}

func (s *Service) CountUnreadInChat(chatID, userID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, userID, false).
		Count(&n).Error
	return n, err
}

// CountUnreadForUser sums unread messages across every chat the user
// participates in.
func (s *Service) CountUnreadForUser(userID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Message{}).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("chats.renter_id = ? OR chats.owner_id = ?", userID, userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) FindUserByID(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) FindVehicleByID(vehicleID string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.DB.Where("id = ?", vehicleID).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (s *Service) FindRentalByID(rentalID string) (*models.Rental, error) {
	var rental models.Rental
	if err := s.DB.Where("id = ?", rentalID).First(&rental).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}
