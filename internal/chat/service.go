package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"motorent/backend/internal/config"
	"motorent/backend/internal/localization"
	"motorent/backend/internal/metrics"
	"motorent/backend/internal/models"
	"motorent/backend/internal/notify"
	"motorent/backend/internal/storage"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Routing tells the transport layer who the two participants are, so it can
// pick the recipient of a personal-room broadcast without a second query.
type Routing struct {
	RenterID string `json:"renter_id"`
	OwnerID  string `json:"owner_id"`
}

// UserSummary is the counterpart shown in a chat list entry.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// VehicleSummary is the rented bike shown in a chat list entry.
type VehicleSummary struct {
	ID           string `json:"id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	PrimaryImage string `json:"primary_image"`
}

// Summary is one enriched chat-list entry.
type Summary struct {
	ID          string          `json:"id"`
	RentalID    string          `json:"rental_id"`
	Counterpart UserSummary     `json:"counterpart"`
	Vehicle     VehicleSummary  `json:"vehicle"`
	LastMessage *models.Message `json:"last_message"`
	UnreadCount int64           `json:"unread_count"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Service holds the chat business logic. It is transport-agnostic: the REST
// handlers and the websocket gateway both call into it. The notifier and
// localizer are optional collaborators and may be nil.
type Service struct {
	storage   storage.Storage
	notifier  notify.Sender
	localizer *localization.Localizer
}

func NewService(s storage.Storage, notifier notify.Sender, localizer *localization.Localizer) *Service {
	return &Service{storage: s, notifier: notifier, localizer: localizer}
}

// CreateChatForRental opens the conversation for a rental, or returns the
// existing one. Idempotent: a losing racer hits the unique constraint and
// fetches the winner's row instead of failing.
func (s *Service) CreateChatForRental(rentalID, renterID, ownerID string) (*models.Chat, error) {
	if renterID == ownerID {
		return nil, fmt.Errorf("%w: renter and owner must differ", ErrBadRequest)
	}

	existing, err := s.storage.FindChatByRentalID(rentalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat := &models.Chat{RentalID: rentalID, RenterID: renterID, OwnerID: ownerID}
	err = s.storage.CreateChat(chat)
	if errors.Is(err, storage.ErrDuplicateChat) {
		// Lost the race; the row exists now.
		return s.storage.FindChatByRentalID(rentalID)
	}
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// MyChats returns every chat the user participates in, newest activity first,
// enriched with counterpart, vehicle, last message and unread count.
func (s *Service) MyChats(userID string) ([]Summary, error) {
	chats, err := s.storage.FindChatsForUser(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(chats))
	for i := range chats {
		summary, err := s.buildSummary(&chats[i], userID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// VerifyChatAccess is the cheap pre-flight used for socket-room admission.
// Data-returning operations re-check access on their own fetch; this result
// is never treated as a substitute for that.
func (s *Service) VerifyChatAccess(chatID, userID string) (bool, error) {
	chat, err := s.storage.FindChatByID(chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return chat.IsParticipant(userID), nil
}

// ChatByID returns a single enriched chat entry, guarding access on the
// fetched row itself.
func (s *Service) ChatByID(chatID, userID string) (*Summary, error) {
	chat, err := s.chatForParticipant(chatID, userID)
	if err != nil {
		return nil, err
	}
	summary, err := s.buildSummary(chat, userID)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ChatMessages returns one page of messages in ascending creation order for
// display. Internally the page is fetched newest-first and reversed, so page 1
// always holds the latest messages.
func (s *Service) ChatMessages(chatID, userID string, page, limit int) ([]models.Message, error) {
	if _, err := s.chatForParticipant(chatID, userID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = config.DefaultPageLimit
	}
	if limit > config.MaxPageLimit {
		limit = config.MaxPageLimit
	}

	msgs, err := s.storage.FindMessagesPage(chatID, page, limit)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// SendMessage persists a message and returns it together with the routing
// metadata. The chat touch and the push dispatch run detached: their failures
// are logged and never surface, since the durable write already succeeded.
func (s *Service) SendMessage(chatID, senderID, content string) (*models.Message, Routing, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Routing{}, fmt.Errorf("%w: message content must not be empty", ErrBadRequest)
	}

	chat, err := s.chatForParticipant(chatID, senderID)
	if err != nil {
		return nil, Routing{}, err
	}

	msg := &models.Message{ChatID: chatID, SenderID: senderID, Content: content}
	if err := s.storage.SaveMessage(msg); err != nil {
		return nil, Routing{}, err
	}
	metrics.MessagesSentTotal.Inc()

	go s.afterSend(chat, msg)

	return msg, Routing{RenterID: chat.RenterID, OwnerID: chat.OwnerID}, nil
}

// MarkMessagesAsRead flips every message authored by the other participant to
// read. Participation is verified here as well, not only at the transport
// boundary. Idempotent.
func (s *Service) MarkMessagesAsRead(chatID, userID string) error {
	if _, err := s.chatForParticipant(chatID, userID); err != nil {
		return err
	}

	n, err := s.storage.MarkMessagesRead(chatID, userID, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		metrics.ReadReceiptsTotal.Inc()
	}
	return nil
}

// UnreadMessageCount sums unread messages across all the user's chats.
func (s *Service) UnreadMessageCount(userID string) (int64, error) {
	return s.storage.CountUnreadForUser(userID)
}

// buildSummary enriches one chat row for the list view. Missing counterpart,
// rental or vehicle rows degrade to empty summaries instead of failing the
// whole listing; other storage errors propagate.
func (s *Service) buildSummary(chat *models.Chat, userID string) (Summary, error) {
	summary := Summary{
		ID:        chat.ID,
		RentalID:  chat.RentalID,
		UpdatedAt: chat.UpdatedAt,
	}

	counterpartID := chat.OtherParticipant(userID)
	counterpart, err := s.storage.FindUserByID(counterpartID)
	switch {
	case err == nil:
		summary.Counterpart = UserSummary{ID: counterpart.ID, Name: counterpart.Name, AvatarURL: counterpart.AvatarURL}
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Warn().Str("chat_id", chat.ID).Str("user_id", counterpartID).Msg("chat counterpart missing")
		summary.Counterpart = UserSummary{ID: counterpartID}
	default:
		return Summary{}, err
	}

	rental, err := s.storage.FindRentalByID(chat.RentalID)
	switch {
	case err == nil:
		vehicle, verr := s.storage.FindVehicleByID(rental.VehicleID)
		switch {
		case verr == nil:
			summary.Vehicle = VehicleSummary{
				ID:           vehicle.ID,
				Brand:        vehicle.Brand,
				Model:        vehicle.Model,
				PrimaryImage: vehicle.PrimaryImage(),
			}
		case errors.Is(verr, gorm.ErrRecordNotFound):
			log.Warn().Str("chat_id", chat.ID).Str("vehicle_id", rental.VehicleID).Msg("chat vehicle missing")
		default:
			return Summary{}, verr
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Warn().Str("chat_id", chat.ID).Str("rental_id", chat.RentalID).Msg("chat rental missing")
	default:
		return Summary{}, err
	}

	last, err := s.storage.LastMessage(chat.ID)
	if err != nil {
		return Summary{}, err
	}
	summary.LastMessage = last

	unread, err := s.storage.CountUnreadInChat(chat.ID, userID)
	if err != nil {
		return Summary{}, err
	}
	summary.UnreadCount = unread

	return summary, nil
}

// chatForParticipant is the authoritative fetch-with-ownership-check used by
// every data-touching operation.
func (s *Service) chatForParticipant(chatID, userID string) (*models.Chat, error) {
	chat, err := s.storage.FindChatByID(chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	if !chat.IsParticipant(userID) {
		return nil, ErrForbidden
	}
	return chat, nil
}

// afterSend runs detached from the send path: touch the chat's updated_at and
// dispatch the push notification to the other participant.
func (s *Service) afterSend(chat *models.Chat, msg *models.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("chat_id", chat.ID).Msg("panic in post-send hook")
		}
	}()

	if err := s.storage.TouchChat(chat.ID); err != nil {
		log.Warn().Err(err).Str("chat_id", chat.ID).Msg("failed to touch chat")
	}

	if s.notifier == nil {
		return
	}

	recipientID := chat.OtherParticipant(msg.SenderID)
	title := s.pushTitle(recipientID, msg.SenderID)
	body := previewContent(msg.Content)
	data := map[string]string{"chat_id": chat.ID, "message_id": msg.ID}

	if err := s.notifier.SendPushNotification(recipientID, title, body, data); err != nil {
		metrics.PushDispatchFailures.Inc()
		log.Warn().Err(err).Str("user_id", recipientID).Str("chat_id", chat.ID).Msg("push dispatch failed")
	}
}

// pushTitle composes the localized notification title. Lookup failures fall
// back to a generic title; they must not block the dispatch.
func (s *Service) pushTitle(recipientID, senderID string) string {
	lang := localization.DefaultLanguage
	if recipient, err := s.storage.FindUserByID(recipientID); err == nil {
		if recipient.Language != "" {
			lang = recipient.Language
		}
	}

	senderName := ""
	if sender, err := s.storage.FindUserByID(senderID); err == nil {
		senderName = sender.Name
	}

	if s.localizer == nil {
		if senderName != "" {
			return fmt.Sprintf("New message from %s", senderName)
		}
		return "New message"
	}
	if senderName != "" {
		return s.localizer.Getf(lang, localization.KeyNewMessageFrom, senderName)
	}
	return s.localizer.GetString(lang, localization.KeyNewMessageTitle)
}

// previewContent truncates the message for the push body.
func previewContent(content string) string {
	runes := []rune(content)
	if len(runes) <= config.PushPreviewRunes {
		return content
	}
	return string(runes[:config.PushPreviewRunes])
}
