package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/logger"
	"github.com/travel-buddies/travel-buddies-backend/types"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// ClientFrame is the only inbound frame shape clients send.
type ClientFrame struct {
	Content string `json:"content"`
}

// ServerFrame is an outbound frame. Type is one of "connected",
// "message", "system" or "error".
type ServerFrame struct {
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	Author    string    `json:"author,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Error     string    `json:"error,omitempty"`
}

// AccessChecker decides whether a user may participate in a trip's chat.
type AccessChecker interface {
	CanAccess(ctx context.Context, userID, tripID string) (*types.Trip, error)
}

// MessageAppender persists chat messages before they are broadcast.
type MessageAppender interface {
	AppendMessage(ctx context.Context, tripID, authorID, content string, isSystem bool) (*types.ChatMessage, error)
}

// SessionConfig tunes per-connection timing limits.
type SessionConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	ReadLimit    int64
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = 32 * 1024
	}
	return c
}

// socketConn adapts a real websocket to the registry's Connection
// interface, bounding every write so one stalled peer cannot wedge a
// broadcast.
type socketConn struct {
	sock         *websocket.Conn
	writeTimeout time.Duration
}

func (c *socketConn) Send(ctx context.Context, payload any) error {
	wctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, c.sock, payload)
}

func (c *socketConn) Close(code websocket.StatusCode, reason string) error {
	return c.sock.Close(code, reason)
}

// SessionHandler drives one chat connection from an accepted websocket
// to its final close: access check, registration, the read loop, and
// unconditional deregistration on every exit path.
type SessionHandler struct {
	log      *zap.SugaredLogger
	registry *Registry
	guard    AccessChecker
	messages MessageAppender
	cfg      SessionConfig
}

// NewSessionHandler creates a session handler bound to a registry.
func NewSessionHandler(registry *Registry, guard AccessChecker, messages MessageAppender, cfg SessionConfig) *SessionHandler {
	return &SessionHandler{
		log:      logger.GetLogger().Named("chat_session"),
		registry: registry,
		guard:    guard,
		messages: messages,
		cfg:      cfg.withDefaults(),
	}
}

// Run owns the socket for the lifetime of the session. The access check
// runs before the connection is registered, so a rejected user never
// appears in the trip room. Once registered, Leave is deferred so the
// registry entry is removed no matter how the session ends. Clean peer
// closes end with a normal closure; unexpected read failures close with
// an internal-error status.
func (h *SessionHandler) Run(ctx context.Context, sock *websocket.Conn, tripID, userID, username string) error {
	sock.SetReadLimit(h.cfg.ReadLimit)
	conn := &socketConn{sock: sock, writeTimeout: h.cfg.WriteTimeout}

	if _, err := h.guard.CanAccess(ctx, userID, tripID); err != nil {
		code := websocket.StatusInternalError
		reason := "internal error"
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) &&
			(appErr.Type == apperrors.NotFoundError || appErr.Type == apperrors.ForbiddenError) {
			code = websocket.StatusPolicyViolation
			reason = "trip access denied"
		}
		h.log.Infow("Rejected chat connection",
			"tripID", tripID,
			"userID", userID,
			"closeCode", code,
			"error", err)
		_ = sock.Close(code, reason)
		return err
	}

	h.registry.Join(tripID, conn, userID)
	defer h.registry.Leave(tripID, conn)

	if err := conn.Send(ctx, ServerFrame{Type: "connected", Content: "joined trip chat"}); err != nil {
		_ = sock.Close(websocket.StatusInternalError, "internal error")
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go h.pingLoop(ctx, cancel, sock)

	if err := h.readLoop(ctx, sock, conn, tripID, userID, username); err != nil {
		_ = sock.Close(websocket.StatusInternalError, "internal error")
		return err
	}
	_ = sock.Close(websocket.StatusNormalClosure, "session ended")
	return nil
}

// pingLoop keeps the connection alive and cancels the session when the
// peer stops responding.
func (h *SessionHandler) pingLoop(ctx context.Context, cancel context.CancelFunc, sock *websocket.Conn) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, pcancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
			err := sock.Ping(pctx)
			pcancel()
			if err != nil {
				cancel()
				return
			}
		}
	}
}

// readLoop consumes frames until the connection closes. A malformed
// frame earns the sender an error frame and the loop continues; only
// connection-level failures end the session.
func (h *SessionHandler) readLoop(ctx context.Context, sock *websocket.Conn, conn Connection, tripID, userID, username string) error {
	for {
		msgType, data, err := sock.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			h.log.Debugw("Chat read ended", "tripID", tripID, "userID", userID, "error", err)
			return err
		}

		if msgType != websocket.MessageText {
			h.sendError(ctx, conn, tripID, "only text frames are supported")
			continue
		}

		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.sendError(ctx, conn, tripID, "invalid message format")
			continue
		}

		h.handleMessage(ctx, conn, tripID, userID, username, frame.Content)
	}
}

// handleMessage persists a message and, only on success, broadcasts it
// to the trip room. Failures are reported to the sender alone.
func (h *SessionHandler) handleMessage(ctx context.Context, conn Connection, tripID, userID, username, content string) {
	msg, err := h.messages.AppendMessage(ctx, tripID, userID, content, false)
	if err != nil {
		text := "failed to store message"
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ValidationError {
			text = appErr.Message
		} else {
			h.log.Errorw("Failed to persist chat message",
				"tripID", tripID,
				"userID", userID,
				"error", err)
		}
		h.sendError(ctx, conn, tripID, text)
		return
	}

	h.registry.Broadcast(ctx, tripID, ServerFrame{
		Type:      "message",
		Content:   msg.Content,
		Author:    username,
		Timestamp: msg.CreatedAt,
	}, nil)
}

func (h *SessionHandler) sendError(ctx context.Context, conn Connection, tripID, text string) {
	if err := conn.Send(ctx, ServerFrame{Type: "error", Error: text}); err != nil {
		h.log.Debugw("Failed to send error frame", "tripID", tripID, "error", err)
	}
}
