// Package store defines the data-access interfaces implemented by the
// postgres subpackage and faked in tests.
package store

import (
	"context"

	"github.com/travel-buddies/travel-buddies-backend/types"
)

// UserStore handles user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *types.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	UpdateUser(ctx context.Context, id string, update types.UserUpdateRequest) error
	ListUsers(ctx context.Context, role string, skip, limit int) ([]types.User, error)
	SetVerified(ctx context.Context, id string) error
}

// TripStore handles trip, participant, and application persistence.
type TripStore interface {
	CreateTrip(ctx context.Context, trip *types.Trip) (string, error)
	GetTrip(ctx context.Context, id string) (*types.Trip, error)
	ListTrips(ctx context.Context, status string, skip, limit int) ([]types.Trip, error)
	UpdateTrip(ctx context.Context, id string, update types.TripUpdateRequest) error
	UpdateTripStatus(ctx context.Context, id string, status types.TripStatus) error
	DeleteTrip(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, tripID, userID string) error

	CreateApplication(ctx context.Context, app *types.TripApplication) (string, error)
	GetApplication(ctx context.Context, id string) (*types.TripApplication, error)
	ListApplications(ctx context.Context, tripID string) ([]types.TripApplication, error)
	UpdateApplicationStatus(ctx context.Context, id string, status types.ApplicationStatus) error
}

// MessageStore is the durable append-only chat message log, keyed by trip.
type MessageStore interface {
	// AppendMessage persists one message and returns it with the
	// store-assigned id and creation timestamp.
	AppendMessage(ctx context.Context, tripID, authorID, content string, isSystem bool) (*types.ChatMessage, error)
	// ListMessages returns messages for a trip ordered by creation time
	// ascending. The limit is clamped by the implementation.
	ListMessages(ctx context.Context, tripID string, skip, limit int) ([]types.ChatMessageWithAuthor, error)
}
