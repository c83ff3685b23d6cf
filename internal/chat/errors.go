package chat

import "errors"

// Terminal, user-visible errors. Handlers and the gateway map these to HTTP
// status codes / error frames; nothing in this package retries them.
var (
	ErrChatNotFound   = errors.New("chat not found")
	ErrRentalNotFound = errors.New("rental not found")
	ErrForbidden      = errors.New("not a chat participant")
	ErrBadRequest     = errors.New("invalid request")
)
