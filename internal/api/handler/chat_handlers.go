package handler

import (
	"errors"
	"net/http"
	"strconv"

	"motorent/backend/internal/chat"
	"motorent/backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// respondChatError maps the service error taxonomy to HTTP statuses.
func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrChatNotFound), errors.Is(err, chat.ErrRentalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("chat operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// MyChats lists the caller's conversations, newest activity first.
func (h *Handler) MyChats(c *gin.Context) {
	summaries, err := h.Chat.MyChats(GetUserID(c))
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": summaries})
}

// ChatDetail returns one enriched chat entry.
func (h *Handler) ChatDetail(c *gin.Context) {
	summary, err := h.Chat.ChatByID(c.Param("id"), GetUserID(c))
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ChatMessages returns one page of messages in display order.
func (h *Handler) ChatMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(config.DefaultPageLimit)))

	msgs, err := h.Chat.ChatMessages(c.Param("id"), GetUserID(c), page, limit)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "page": page})
}

// SendMessage persists a message over REST. The gateway picks the broadcast
// up through the same service, so socket-less clients still work.
func (h *Handler) SendMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	msg, routing, err := h.Chat.SendMessage(c.Param("id"), GetUserID(c), req.Content)
	if err != nil {
		respondChatError(c, err)
		return
	}

	// Mirror the socket fan-out for participants who are connected.
	h.Gateway.BroadcastMessage(msg, routing)

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// MarkRead flips unread messages from the other participant.
func (h *Handler) MarkRead(c *gin.Context) {
	chatID := c.Param("id")
	userID := GetUserID(c)

	if err := h.Chat.MarkMessagesAsRead(chatID, userID); err != nil {
		respondChatError(c, err)
		return
	}
	h.Gateway.BroadcastRead(chatID, userID)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UnreadCount returns the badge total across all the caller's chats.
func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.Chat.UnreadMessageCount(GetUserID(c))
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}

// CreateRentalChat opens (or returns) the conversation for a rental. Only the
// rental's renter or owner may open it.
func (h *Handler) CreateRentalChat(c *gin.Context) {
	rental, err := h.Storage.FindRentalByID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondChatError(c, chat.ErrRentalNotFound)
		return
	}
	if err != nil {
		respondChatError(c, err)
		return
	}

	userID := GetUserID(c)
	if userID != rental.RenterID && userID != rental.OwnerID {
		respondChatError(c, chat.ErrForbidden)
		return
	}

	created, err := h.Chat.CreateChatForRental(rental.ID, rental.RenterID, rental.OwnerID)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}
