package types

import "time"

// ChatMessage is one persisted trip chat message. Immutable after
// creation; ordering within a trip is by CreatedAt.
type ChatMessage struct {
	ID        string    `json:"id"`
	TripID    string    `json:"tripId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	IsSystem  bool      `json:"isSystem"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatMessageWithAuthor pairs a message with its author's username for
// list responses.
type ChatMessageWithAuthor struct {
	ChatMessage
	AuthorUsername string `json:"authorUsername"`
}

// ChatMessageCreateRequest is the payload for the REST send endpoint.
type ChatMessageCreateRequest struct {
	Content string `json:"content" binding:"required"`
}
