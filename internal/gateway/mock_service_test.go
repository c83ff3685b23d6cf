package gateway_test

import (
	"motorent/backend/internal/chat"
	"motorent/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) VerifyChatAccess(chatID, userID string) (bool, error) {
	args := m.Called(chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatService) SendMessage(chatID, senderID, content string) (*models.Message, chat.Routing, error) {
	args := m.Called(chatID, senderID, content)
	var msg *models.Message
	if args.Get(0) != nil {
		msg = args.Get(0).(*models.Message)
	}
	return msg, args.Get(1).(chat.Routing), args.Error(2)
}

func (m *MockChatService) MarkMessagesAsRead(chatID, userID string) error {
	args := m.Called(chatID, userID)
	return args.Error(0)
}
