package notify

import (
	"motorent/backend/internal/models"
	"motorent/backend/internal/storage"
)

// RedisSender publishes push payloads to the Redis channel consumed by the
// external push-delivery worker (APNs/FCM live outside this process).
type RedisSender struct {
	Storage storage.Storage
}

func NewRedisSender(s storage.Storage) *RedisSender {
	return &RedisSender{Storage: s}
}

func (r *RedisSender) SendPushNotification(userID, title, body string, data map[string]string) error {
	return r.Storage.PublishPushPayload(models.PushPayload{
		UserID: userID,
		Title:  title,
		Body:   body,
		Data:   data,
	})
}
