package types

import "time"

// TripStatus tracks a trip through its planning lifecycle.
type TripStatus string

const (
	TripStatusPlanning   TripStatus = "planning"
	TripStatusRecruiting TripStatus = "recruiting"
	TripStatusConfirmed  TripStatus = "confirmed"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

// IsValid reports whether s is a known trip status.
func (s TripStatus) IsValid() bool {
	switch s {
	case TripStatusPlanning, TripStatusRecruiting, TripStatusConfirmed,
		TripStatusInProgress, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Trip represents a planned group journey. ParticipantIDs excludes the
// organizer; use HasMember for the combined membership rule.
type Trip struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Destination     string     `json:"destination"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	MaxParticipants int        `json:"maxParticipants"`
	CostPerPerson   float64    `json:"costPerPerson,omitempty"`
	Status          TripStatus `json:"status"`
	OrganizerID     string     `json:"organizerId"`
	ParticipantIDs  []string   `json:"participantIds"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// HasMember reports whether userID is the organizer or a participant.
// This is the single source of the trip access rule; do not re-derive it
// elsewhere.
func (t *Trip) HasMember(userID string) bool {
	if t.OrganizerID == userID {
		return true
	}
	for _, id := range t.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// TripCreateRequest is the payload for creating a trip.
type TripCreateRequest struct {
	Title           string     `json:"title" binding:"required,max=200"`
	Description     string     `json:"description"`
	Destination     string     `json:"destination" binding:"required,max=200"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	MaxParticipants int        `json:"maxParticipants"`
	CostPerPerson   float64    `json:"costPerPerson"`
}

// TripUpdateRequest is the payload for updating a trip. Nil fields are
// left unchanged.
type TripUpdateRequest struct {
	Title           *string    `json:"title,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Destination     *string    `json:"destination,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	MaxParticipants *int       `json:"maxParticipants,omitempty"`
	CostPerPerson   *float64   `json:"costPerPerson,omitempty"`
}

// ApplicationStatus tracks a trip application through its lifecycle.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// TripApplication is a user's request to join a trip. One per user per
// trip, enforced by the store.
type TripApplication struct {
	ID          string            `json:"id"`
	TripID      string            `json:"tripId"`
	ApplicantID string            `json:"applicantId"`
	Message     string            `json:"message,omitempty"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ApplicationCreateRequest is the payload for applying to a trip.
type ApplicationCreateRequest struct {
	Message string `json:"message" binding:"max=1000"`
}

// ApplicationDecisionRequest is the organizer's approve/reject decision.
type ApplicationDecisionRequest struct {
	Status ApplicationStatus `json:"status" binding:"required"`
}
