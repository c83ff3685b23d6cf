package handler

import (
	"motorent/backend/internal/chat"
	"motorent/backend/internal/config"
	"motorent/backend/internal/gateway"
	"motorent/backend/internal/storage"
)

// Handler aggregates the HTTP handlers and their dependencies.
type Handler struct {
	Chat    *chat.Service
	Storage storage.Storage
	Gateway *gateway.Gateway
	Cfg     config.Config
}

func NewHandler(chatSvc *chat.Service, s storage.Storage, g *gateway.Gateway, cfg config.Config) *Handler {
	return &Handler{Chat: chatSvc, Storage: s, Gateway: g, Cfg: cfg}
}
