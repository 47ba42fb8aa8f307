package service

import (
	"context"

	"github.com/travel-buddies/travel-buddies-backend/internal/store"
	"github.com/travel-buddies/travel-buddies-backend/internal/ws"
	"github.com/travel-buddies/travel-buddies-backend/logger"
	"github.com/travel-buddies/travel-buddies-backend/types"
	"go.uber.org/zap"
)

// Broadcaster fans a payload out to a trip's live connections.
type Broadcaster interface {
	Broadcast(ctx context.Context, tripID string, payload any, exclude ws.Connection)
}

// ChatService serves the request-scoped chat surface: message history and
// REST-posted messages. It shares the message store and broadcaster with
// the websocket sessions, so a message posted over REST reaches live
// connections too.
type ChatService struct {
	log      *zap.SugaredLogger
	guard    ws.AccessChecker
	messages store.MessageStore
	rooms    Broadcaster
}

// NewChatService creates a ChatService.
func NewChatService(guard ws.AccessChecker, messages store.MessageStore, rooms Broadcaster) *ChatService {
	return &ChatService{
		log:      logger.GetLogger().Named("chat_service"),
		guard:    guard,
		messages: messages,
		rooms:    rooms,
	}
}

// ListMessages returns a page of a trip's history for a member.
func (s *ChatService) ListMessages(ctx context.Context, userID, tripID string, skip, limit int) ([]types.ChatMessageWithAuthor, error) {
	if _, err := s.guard.CanAccess(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.messages.ListMessages(ctx, tripID, skip, limit)
}

// PostMessage persists a member's message and broadcasts it to the
// trip's live connections.
func (s *ChatService) PostMessage(ctx context.Context, userID, username, tripID, content string) (*types.ChatMessage, error) {
	if _, err := s.guard.CanAccess(ctx, userID, tripID); err != nil {
		return nil, err
	}

	msg, err := s.messages.AppendMessage(ctx, tripID, userID, content, false)
	if err != nil {
		return nil, err
	}

	s.rooms.Broadcast(ctx, tripID, ws.ServerFrame{
		Type:      "message",
		Content:   msg.Content,
		Author:    username,
		Timestamp: msg.CreatedAt,
	}, nil)
	return msg, nil
}

// AddSystemMessage appends an announcement to a trip's log and pushes it
// to live connections. The author is the user the announcement concerns.
func (s *ChatService) AddSystemMessage(ctx context.Context, tripID, authorID, content string) (*types.ChatMessage, error) {
	msg, err := s.messages.AppendMessage(ctx, tripID, authorID, content, true)
	if err != nil {
		return nil, err
	}

	s.rooms.Broadcast(ctx, tripID, ws.ServerFrame{
		Type:      "system",
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
	}, nil)
	return msg, nil
}
