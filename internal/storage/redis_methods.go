package storage

import (
	"encoding/json"
	"errors"
	"time"

	"motorent/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// pushChannel is consumed by the external push-delivery worker.
const pushChannel = "push:dispatch"

func presenceKey(userID string) string { return "presence:" + userID }

// PublishPushPayload hands a push notification to the out-of-band delivery
// worker via Redis Pub/Sub. A nil Redis client makes this a no-op.
func (s *Service) PublishPushPayload(payload models.PushPayload) error {
	if s.Redis == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, pushChannel, string(raw)).Err()
}

// SetPresence marks the user as online with a TTL. The gateway refreshes the
// key periodically while the socket stays up; a crashed process simply lets
// the keys expire.
func (s *Service) SetPresence(userID string, ttl time.Duration) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Set(s.Ctx, presenceKey(userID), "1", ttl).Err()
}

func (s *Service) ClearPresence(userID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(s.Ctx, presenceKey(userID)).Err()
}

// IsOnline checks the best-effort presence key.
func (s *Service) IsOnline(userID string) (bool, error) {
	if s.Redis == nil {
		return false, nil
	}
	_, err := s.Redis.Get(s.Ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
