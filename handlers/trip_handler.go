package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/internal/service"
	"github.com/travel-buddies/travel-buddies-backend/middleware"
	"github.com/travel-buddies/travel-buddies-backend/types"
)

// TripHandler handles trip lifecycle endpoints.
type TripHandler struct {
	trips *service.TripService
}

// NewTripHandler creates a TripHandler.
func NewTripHandler(trips *service.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

// UpdateTripStatusRequest is the body for PATCH /trips/:id/status.
type UpdateTripStatusRequest struct {
	Status types.TripStatus `json:"status" binding:"required"`
}

// CreateTrip handles POST /trips.
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req types.TripCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid trip payload", err.Error()))
		return
	}

	trip, err := h.trips.CreateTrip(c.Request.Context(), c.GetString(middleware.UserIDKey), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// GetTrip handles GET /trips/:id.
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.trips.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// ListTrips handles GET /trips.
func (h *TripHandler) ListTrips(c *gin.Context) {
	skip, limit := paginationParams(c)
	trips, err := h.trips.ListTrips(c.Request.Context(), c.Query("status"), skip, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

// UpdateTrip handles PATCH /trips/:id.
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	var req types.TripUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid trip payload", err.Error()))
		return
	}

	trip, err := h.trips.UpdateTrip(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// UpdateStatus handles PATCH /trips/:id/status.
func (h *TripHandler) UpdateStatus(c *gin.Context) {
	var req UpdateTripStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid status payload", err.Error()))
		return
	}

	trip, err := h.trips.UpdateStatus(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id"), req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// DeleteTrip handles DELETE /trips/:id.
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	if err := h.trips.DeleteTrip(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
