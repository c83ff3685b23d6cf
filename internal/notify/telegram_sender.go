package notify

import (
	"motorent/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender mirrors pushes through a Telegram bot for users who linked
// their account. Users without a linked chat id are skipped silently.
type TelegramSender struct {
	Bot     *tgbotapi.BotAPI
	Storage storage.Storage
}

// NewTelegramSender authorizes the bot with the given token.
func NewTelegramSender(token string, s storage.Storage) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramSender{Bot: bot, Storage: s}, nil
}

func (t *TelegramSender) SendPushNotification(userID, title, body string, data map[string]string) error {
	user, err := t.Storage.FindUserByID(userID)
	if err != nil {
		return err
	}
	if user.TelegramChatID == nil {
		return nil
	}

	msg := tgbotapi.NewMessage(*user.TelegramChatID, "*"+title+"*\n"+body)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err = t.Bot.Send(msg)
	return err
}
