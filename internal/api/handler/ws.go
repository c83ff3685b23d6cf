package handler

import (
	"net/http"
	"strings"

	"motorent/backend/internal/config"
	"motorent/backend/internal/gateway"
	"motorent/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsToken extracts the access token from the Authorization header or, for
// browser clients that cannot set headers on a websocket dial, the token
// query parameter.
func wsToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.Query("token")
}

// ServeWs authenticates the caller and hands the connection to the gateway.
// An absent or invalid token refuses the upgrade outright.
func (h *Handler) ServeWs(c *gin.Context) {
	token := wsToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := ParseAccessToken(token, h.Cfg.JWTSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &gateway.WebSocketClient{
		UserID:  claims.UserID,
		Conn:    conn,
		Gateway: h.Gateway,
		Send:    make(chan models.ServerFrame, config.SendBufferSize),
	}

	h.Gateway.RegisterCh <- client
	client.Run()
}
