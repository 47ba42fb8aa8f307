package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/internal/store"
	"github.com/travel-buddies/travel-buddies-backend/logger"
	"github.com/travel-buddies/travel-buddies-backend/types"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// RoomCloser force-closes a trip's live chat connections.
type RoomCloser interface {
	CloseTrip(tripID string, code websocket.StatusCode, reason string)
}

// DecisionNotifier emails applicants about application outcomes.
type DecisionNotifier interface {
	SendApplicationApproved(ctx context.Context, to, username, tripTitle string) error
	SendApplicationRejected(ctx context.Context, to, username, tripTitle string) error
}

// TripService handles trip lifecycle, participants, and applications.
type TripService struct {
	log      *zap.SugaredLogger
	trips    store.TripStore
	users    store.UserStore
	chat     *ChatService
	rooms    RoomCloser
	notifier DecisionNotifier
}

// NewTripService creates a TripService.
func NewTripService(trips store.TripStore, users store.UserStore, chat *ChatService, rooms RoomCloser, notifier DecisionNotifier) *TripService {
	return &TripService{
		log:      logger.GetLogger().Named("trip_service"),
		trips:    trips,
		users:    users,
		chat:     chat,
		rooms:    rooms,
		notifier: notifier,
	}
}

// CreateTrip creates a trip organized by organizerID. New trips start
// recruiting so applications open immediately.
func (s *TripService) CreateTrip(ctx context.Context, organizerID string, req types.TripCreateRequest) (*types.Trip, error) {
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, apperrors.ValidationFailed("end date must not be before start date", "")
	}
	if req.MaxParticipants < 0 {
		return nil, apperrors.ValidationFailed("maxParticipants must not be negative", "")
	}

	trip := &types.Trip{
		Title:           req.Title,
		Description:     req.Description,
		Destination:     req.Destination,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		MaxParticipants: req.MaxParticipants,
		CostPerPerson:   req.CostPerPerson,
		Status:          types.TripStatusRecruiting,
		OrganizerID:     organizerID,
		ParticipantIDs:  []string{},
	}

	id, err := s.trips.CreateTrip(ctx, trip)
	if err != nil {
		return nil, err
	}
	trip.ID = id

	s.log.Infow("Created trip", "tripID", id, "organizerID", organizerID)
	return trip, nil
}

// GetTrip returns a trip by id.
func (s *TripService) GetTrip(ctx context.Context, id string) (*types.Trip, error) {
	trip, err := s.trips.GetTrip(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.TripNotFound(id)
		}
		return nil, err
	}
	return trip, nil
}

// ListTrips returns trips, optionally filtered by status.
func (s *TripService) ListTrips(ctx context.Context, status string, skip, limit int) ([]types.Trip, error) {
	if status != "" && !types.TripStatus(status).IsValid() {
		return nil, apperrors.ValidationFailed("invalid trip status filter", status)
	}
	return s.trips.ListTrips(ctx, status, skip, limit)
}

// UpdateTrip applies a partial update. Only the organizer may update.
func (s *TripService) UpdateTrip(ctx context.Context, userID, tripID string, req types.TripUpdateRequest) (*types.Trip, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.OrganizerID != userID {
		return nil, apperrors.Forbidden("Only the organizer may update this trip", "")
	}

	if err := s.trips.UpdateTrip(ctx, tripID, req); err != nil {
		return nil, err
	}
	return s.GetTrip(ctx, tripID)
}

// UpdateStatus moves a trip through its lifecycle. Cancelling a trip
// also force-closes its chat room.
func (s *TripService) UpdateStatus(ctx context.Context, userID, tripID string, status types.TripStatus) (*types.Trip, error) {
	if !status.IsValid() {
		return nil, apperrors.ValidationFailed("invalid trip status", string(status))
	}

	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.OrganizerID != userID {
		return nil, apperrors.Forbidden("Only the organizer may change trip status", "")
	}

	if err := s.trips.UpdateTripStatus(ctx, tripID, status); err != nil {
		return nil, err
	}

	if status == types.TripStatusCancelled {
		s.rooms.CloseTrip(tripID, websocket.StatusGoingAway, "trip cancelled")
	}
	return s.GetTrip(ctx, tripID)
}

// DeleteTrip removes a trip and force-closes its chat room. Only the
// organizer may delete.
func (s *TripService) DeleteTrip(ctx context.Context, userID, tripID string) error {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.OrganizerID != userID {
		return apperrors.Forbidden("Only the organizer may delete this trip", "")
	}

	if err := s.trips.DeleteTrip(ctx, tripID); err != nil {
		return err
	}

	s.rooms.CloseTrip(tripID, websocket.StatusGoingAway, "trip deleted")
	s.log.Infow("Deleted trip", "tripID", tripID)
	return nil
}

// Apply submits an application to join a trip. Members cannot apply and
// each user gets one application per trip.
func (s *TripService) Apply(ctx context.Context, userID, tripID string, req types.ApplicationCreateRequest) (*types.TripApplication, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.HasMember(userID) {
		return nil, apperrors.NewConflictError("You are already a member of this trip", "")
	}
	if trip.Status != types.TripStatusRecruiting {
		return nil, apperrors.NewConflictError("This trip is not accepting applications", string(trip.Status))
	}

	app := &types.TripApplication{
		TripID:      tripID,
		ApplicantID: userID,
		Message:     req.Message,
		Status:      types.ApplicationStatusPending,
	}

	id, err := s.trips.CreateApplication(ctx, app)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.NewConflictError("You have already applied to this trip", "")
		}
		return nil, err
	}
	app.ID = id
	return app, nil
}

// ListApplications returns a trip's applications. Only the organizer may
// view them.
func (s *TripService) ListApplications(ctx context.Context, userID, tripID string) ([]types.TripApplication, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.OrganizerID != userID {
		return nil, apperrors.Forbidden("Only the organizer may view applications", "")
	}
	return s.trips.ListApplications(ctx, tripID)
}

// DecideApplication approves or rejects a pending application. Approval
// adds the applicant as a participant, announces the join in the trip
// chat, and emails the applicant. The notification is best effort.
func (s *TripService) DecideApplication(ctx context.Context, userID, applicationID string, decision types.ApplicationStatus) (*types.TripApplication, error) {
	if decision != types.ApplicationStatusApproved && decision != types.ApplicationStatusRejected {
		return nil, apperrors.ValidationFailed("decision must be approved or rejected", string(decision))
	}

	app, err := s.trips.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Application", applicationID)
		}
		return nil, err
	}

	trip, err := s.GetTrip(ctx, app.TripID)
	if err != nil {
		return nil, err
	}
	if trip.OrganizerID != userID {
		return nil, apperrors.Forbidden("Only the organizer may decide applications", "")
	}
	if app.Status != types.ApplicationStatusPending {
		return nil, apperrors.NewConflictError("Application has already been decided", string(app.Status))
	}

	if err := s.trips.UpdateApplicationStatus(ctx, applicationID, decision); err != nil {
		return nil, err
	}
	app.Status = decision

	applicant, err := s.users.GetUserByID(ctx, app.ApplicantID)
	if err != nil {
		s.log.Errorw("Failed to load applicant after decision",
			"applicationID", applicationID,
			"applicantID", app.ApplicantID,
			"error", err)
		return app, nil
	}

	if decision == types.ApplicationStatusApproved {
		if err := s.trips.AddParticipant(ctx, trip.ID, app.ApplicantID); err != nil {
			return nil, err
		}
		if _, err := s.chat.AddSystemMessage(ctx, trip.ID, app.ApplicantID,
			fmt.Sprintf("%s joined the trip", applicant.Username)); err != nil {
			s.log.Errorw("Failed to announce new participant", "tripID", trip.ID, "error", err)
		}
		if err := s.notifier.SendApplicationApproved(ctx, applicant.Email, applicant.Username, trip.Title); err != nil {
			s.log.Errorw("Failed to send approval email", "applicationID", applicationID, "error", err)
		}
	} else {
		if err := s.notifier.SendApplicationRejected(ctx, applicant.Email, applicant.Username, trip.Title); err != nil {
			s.log.Errorw("Failed to send rejection email", "applicationID", applicationID, "error", err)
		}
	}

	s.log.Infow("Decided application",
		"applicationID", applicationID,
		"tripID", trip.ID,
		"decision", decision)
	return app, nil
}
