package config

import "time"

const (
	// Pagination
	DefaultPageLimit = 50
	MaxPageLimit     = 200

	// Push notifications
	PushPreviewRunes = 100

	// Presence (best-effort online indicator in Redis)
	PresenceTTL           = 3 * time.Minute
	PresenceRefreshPeriod = time.Minute

	// Client socket buffers
	SendBufferSize = 256
)
