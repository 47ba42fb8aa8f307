package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/travel-buddies/travel-buddies-backend/internal/store"
	"github.com/travel-buddies/travel-buddies-backend/types"
)

// Ensure TripStore implements store.TripStore.
var _ store.TripStore = (*TripStore)(nil)

// TripStore implements store.TripStore on PostgreSQL.
type TripStore struct {
	db DB
}

// NewTripStore creates a new TripStore.
func NewTripStore(db DB) *TripStore {
	return &TripStore{db: db}
}

const tripColumns = `id, title, description, destination, start_date, end_date,
	max_participants, cost_per_person, status, organizer_id, created_at`

func scanTrip(row pgx.Row) (*types.Trip, error) {
	trip := &types.Trip{}
	err := row.Scan(
		&trip.ID,
		&trip.Title,
		&trip.Description,
		&trip.Destination,
		&trip.StartDate,
		&trip.EndDate,
		&trip.MaxParticipants,
		&trip.CostPerPerson,
		&trip.Status,
		&trip.OrganizerID,
		&trip.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning trip: %w", err)
	}
	return trip, nil
}

// CreateTrip inserts a new trip and returns the generated id.
func (s *TripStore) CreateTrip(ctx context.Context, trip *types.Trip) (string, error) {
	query := `
		INSERT INTO trips (title, description, destination, start_date, end_date,
			max_participants, cost_per_person, status, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	row := s.db.QueryRow(ctx, query,
		trip.Title,
		trip.Description,
		trip.Destination,
		trip.StartDate,
		trip.EndDate,
		trip.MaxParticipants,
		trip.CostPerPerson,
		trip.Status,
		trip.OrganizerID,
	)

	if err := row.Scan(&trip.ID, &trip.CreatedAt); err != nil {
		return "", fmt.Errorf("error creating trip: %w", err)
	}
	return trip.ID, nil
}

// GetTrip retrieves a trip with its participant set.
func (s *TripStore) GetTrip(ctx context.Context, id string) (*types.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	trip, err := scanTrip(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT user_id FROM trip_participants WHERE trip_id = $1 ORDER BY joined_at ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("error loading trip participants: %w", err)
	}
	defer rows.Close()

	trip.ParticipantIDs = []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("error scanning participant: %w", err)
		}
		trip.ParticipantIDs = append(trip.ParticipantIDs, userID)
	}
	return trip, rows.Err()
}

// ListTrips returns trips ordered by creation time descending, optionally
// filtered by status. Participant sets are not loaded.
func (s *TripStore) ListTrips(ctx context.Context, status string, skip, limit int) ([]types.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing trips: %w", err)
	}
	defer rows.Close()

	trips := []types.Trip{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}
	return trips, rows.Err()
}

// UpdateTrip applies a partial update. Nil fields keep their current
// value.
func (s *TripStore) UpdateTrip(ctx context.Context, id string, update types.TripUpdateRequest) error {
	query := `
		UPDATE trips
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			destination = COALESCE($3, destination),
			start_date = COALESCE($4, start_date),
			end_date = COALESCE($5, end_date),
			max_participants = COALESCE($6, max_participants),
			cost_per_person = COALESCE($7, cost_per_person)
		WHERE id = $8`

	cmdTag, err := s.db.Exec(ctx, query,
		update.Title,
		update.Description,
		update.Destination,
		update.StartDate,
		update.EndDate,
		update.MaxParticipants,
		update.CostPerPerson,
		id,
	)
	if err != nil {
		return fmt.Errorf("error updating trip: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateTripStatus sets a trip's status.
func (s *TripStore) UpdateTripStatus(ctx context.Context, id string, status types.TripStatus) error {
	cmdTag, err := s.db.Exec(ctx, `UPDATE trips SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating trip status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteTrip removes a trip. Participants, applications, and messages are
// removed by ON DELETE CASCADE.
func (s *TripStore) DeleteTrip(ctx context.Context, id string) error {
	cmdTag, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting trip: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AddParticipant adds a user to a trip's participant set. Adding an
// existing participant is a no-op.
func (s *TripStore) AddParticipant(ctx context.Context, tripID, userID string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO trip_participants (trip_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		tripID, userID)
	if err != nil {
		return fmt.Errorf("error adding participant: %w", err)
	}
	return nil
}

// CreateApplication inserts a trip application. A second application by
// the same user for the same trip yields ErrDuplicate.
func (s *TripStore) CreateApplication(ctx context.Context, app *types.TripApplication) (string, error) {
	query := `
		INSERT INTO trip_applications (trip_id, applicant_id, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	row := s.db.QueryRow(ctx, query, app.TripID, app.ApplicantID, app.Message, app.Status)
	if err := row.Scan(&app.ID, &app.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return "", store.ErrDuplicate
		}
		return "", fmt.Errorf("error creating application: %w", err)
	}
	return app.ID, nil
}

// GetApplication retrieves an application by id.
func (s *TripStore) GetApplication(ctx context.Context, id string) (*types.TripApplication, error) {
	query := `
		SELECT id, trip_id, applicant_id, message, status, created_at
		FROM trip_applications
		WHERE id = $1`

	app := &types.TripApplication{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&app.ID,
		&app.TripID,
		&app.ApplicantID,
		&app.Message,
		&app.Status,
		&app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error getting application: %w", err)
	}
	return app, nil
}

// ListApplications returns a trip's applications ordered by creation time.
func (s *TripStore) ListApplications(ctx context.Context, tripID string) ([]types.TripApplication, error) {
	query := `
		SELECT id, trip_id, applicant_id, message, status, created_at
		FROM trip_applications
		WHERE trip_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	apps := []types.TripApplication{}
	for rows.Next() {
		app := types.TripApplication{}
		err := rows.Scan(&app.ID, &app.TripID, &app.ApplicantID, &app.Message, &app.Status, &app.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// UpdateApplicationStatus sets an application's status.
func (s *TripStore) UpdateApplicationStatus(ctx context.Context, id string, status types.ApplicationStatus) error {
	cmdTag, err := s.db.Exec(ctx,
		`UPDATE trip_applications SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating application status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
