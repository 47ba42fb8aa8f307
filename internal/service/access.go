// Package service holds the business logic between the HTTP/websocket
// handlers and the stores.
package service

import (
	"context"
	"errors"

	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/internal/store"
	"github.com/travel-buddies/travel-buddies-backend/types"
)

// TripAccessGuard answers whether a user may read or write a trip's chat
// and messages. Every consumer of the membership rule goes through here.
type TripAccessGuard struct {
	trips store.TripStore
}

// NewTripAccessGuard creates a guard backed by the given trip store.
func NewTripAccessGuard(trips store.TripStore) *TripAccessGuard {
	return &TripAccessGuard{trips: trips}
}

// CanAccess returns the trip when userID is its organizer or a
// participant. A missing trip yields a not-found error and a non-member
// a forbidden error; both are distinguishable from lookup failures.
func (g *TripAccessGuard) CanAccess(ctx context.Context, userID, tripID string) (*types.Trip, error) {
	trip, err := g.trips.GetTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.TripNotFound(tripID)
		}
		return nil, err
	}

	if !trip.HasMember(userID) {
		return nil, apperrors.TripAccessDenied(userID, tripID)
	}
	return trip, nil
}
