package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/travel-buddies/travel-buddies-backend/config"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/internal/service"
	"github.com/travel-buddies/travel-buddies-backend/internal/ws"
	"github.com/travel-buddies/travel-buddies-backend/logger"
	"github.com/travel-buddies/travel-buddies-backend/middleware"
	"github.com/travel-buddies/travel-buddies-backend/types"
	"nhooyr.io/websocket"
)

// ChatHandler serves trip chat: message history and posting over REST,
// plus the live websocket endpoint.
type ChatHandler struct {
	chat         *service.ChatService
	sessions     *ws.SessionHandler
	serverConfig *config.ServerConfig
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chat *service.ChatService, sessions *ws.SessionHandler, serverConfig *config.ServerConfig) *ChatHandler {
	return &ChatHandler{
		chat:         chat,
		sessions:     sessions,
		serverConfig: serverConfig,
	}
}

// ListMessages handles GET /trips/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	skip, limit := paginationParams(c)
	messages, err := h.chat.ListMessages(c.Request.Context(),
		c.GetString(middleware.UserIDKey), c.Param("id"), skip, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage handles POST /trips/:id/messages.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req types.ChatMessageCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid message payload", err.Error()))
		return
	}

	msg, err := h.chat.PostMessage(c.Request.Context(),
		c.GetString(middleware.UserIDKey), c.GetString(middleware.UsernameKey),
		c.Param("id"), req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// HandleChatSocket handles GET /trips/:id/chat. Authentication already
// ran via the websocket auth middleware; from here the session handler
// owns the connection, including the access check and close codes.
func (h *ChatHandler) HandleChatSocket(c *gin.Context) {
	log := logger.GetLogger()

	opts := &websocket.AcceptOptions{}
	if h.serverConfig.AllowsAnyOrigin() {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.serverConfig.AllowedOrigins
	}

	sock, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		log.Warnw("Websocket upgrade failed",
			"tripID", c.Param("id"),
			"error", err)
		return
	}

	err = h.sessions.Run(c.Request.Context(), sock,
		c.Param("id"),
		c.GetString(middleware.UserIDKey),
		c.GetString(middleware.UsernameKey))
	if err != nil {
		log.Debugw("Chat session ended with error",
			"tripID", c.Param("id"),
			"error", err)
	}
}
