package postgres

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/internal/store"
	"github.com/travel-buddies/travel-buddies-backend/types"
)

// maxMessagePageSize bounds a single list read.
const maxMessagePageSize = 100

// Ensure MessageStore implements store.MessageStore.
var _ store.MessageStore = (*MessageStore)(nil)

// MessageStore implements the durable trip chat log on PostgreSQL.
// created_at is assigned by the database so ordering within a trip is
// consistent regardless of which session persisted the message.
type MessageStore struct {
	db DB
}

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db DB) *MessageStore {
	return &MessageStore{db: db}
}

// AppendMessage persists one chat message and returns it with the
// store-assigned id and timestamp.
func (s *MessageStore) AppendMessage(ctx context.Context, tripID, authorID, content string, isSystem bool) (*types.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ValidationFailed("message content must not be empty", "")
	}

	query := `
		INSERT INTO trip_messages (trip_id, author_id, content, is_system)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	msg := &types.ChatMessage{
		TripID:   tripID,
		AuthorID: authorID,
		Content:  content,
		IsSystem: isSystem,
	}

	row := s.db.QueryRow(ctx, query, tripID, authorID, content, isSystem)
	if err := row.Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("error appending message: %w", err))
	}
	return msg, nil
}

// ListMessages returns a trip's messages with author usernames, ordered
// by creation time ascending. skip below zero is treated as zero; limit
// is clamped to maxMessagePageSize.
func (s *MessageStore) ListMessages(ctx context.Context, tripID string, skip, limit int) ([]types.ChatMessageWithAuthor, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}

	query := `
		SELECT m.id, m.trip_id, m.author_id, m.content, m.is_system, m.created_at, u.username
		FROM trip_messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.trip_id = $1
		ORDER BY m.created_at ASC
		OFFSET $2 LIMIT $3`

	rows, err := s.db.Query(ctx, query, tripID, skip, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("error listing messages: %w", err))
	}
	defer rows.Close()

	messages := []types.ChatMessageWithAuthor{}
	for rows.Next() {
		msg := types.ChatMessageWithAuthor{}
		err := rows.Scan(&msg.ID, &msg.TripID, &msg.AuthorID, &msg.Content, &msg.IsSystem, &msg.CreatedAt, &msg.AuthorUsername)
		if err != nil {
			return nil, apperrors.NewDatabaseError(fmt.Errorf("error scanning message: %w", err))
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
