package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := New(ValidationError, "invalid input", "content is empty")
	assert.Equal(t, "VALIDATION_ERROR: invalid input (content is empty)", err.Error())

	noDetail := AuthenticationFailed("invalid token")
	assert.Equal(t, "AUTHENTICATION_ERROR: invalid token", noDetail.Error())
}

func TestAppError_HTTPStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"validation", ValidationFailed("bad", ""), http.StatusBadRequest},
		{"not found", NotFound("Trip", "42"), http.StatusNotFound},
		{"auth", AuthenticationFailed("nope"), http.StatusUnauthorized},
		{"forbidden", TripAccessDenied("u1", "t1"), http.StatusForbidden},
		{"conflict", NewConflictError("duplicate", ""), http.StatusConflict},
		{"rate limit", RateLimitExceeded("slow down", 60), http.StatusTooManyRequests},
		{"database", NewDatabaseError(errors.New("boom")), http.StatusInternalServerError},
		{"server", InternalServerError("oops"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.GetHTTPStatus())
		})
	}
}

func TestWrap(t *testing.T) {
	raw := errors.New("connection refused")
	err := Wrap(raw, DatabaseError, "failed to append message")

	assert.Equal(t, DatabaseError, err.Type)
	assert.Equal(t, raw, err.Raw)
	assert.ErrorIs(t, err, raw)

	assert.Nil(t, Wrap(nil, DatabaseError, "ignored"))
}

func TestTripAccessDenied_MatchesForbiddenTaxonomy(t *testing.T) {
	err := TripAccessDenied("user-1", "trip-42")
	assert.Equal(t, ForbiddenError, err.Type)
	assert.Contains(t, err.Detail, "trip-42")
}
