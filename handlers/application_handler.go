package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/internal/service"
	"github.com/travel-buddies/travel-buddies-backend/middleware"
	"github.com/travel-buddies/travel-buddies-backend/types"
)

// ApplicationHandler handles trip join applications.
type ApplicationHandler struct {
	trips *service.TripService
}

// NewApplicationHandler creates an ApplicationHandler.
func NewApplicationHandler(trips *service.TripService) *ApplicationHandler {
	return &ApplicationHandler{trips: trips}
}

// Apply handles POST /trips/:id/applications.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req types.ApplicationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid application payload", err.Error()))
		return
	}

	app, err := h.trips.Apply(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// ListApplications handles GET /trips/:id/applications.
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	apps, err := h.trips.ListApplications(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// Decide handles PATCH /applications/:id.
func (h *ApplicationHandler) Decide(c *gin.Context) {
	var req types.ApplicationDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid decision payload", err.Error()))
		return
	}

	app, err := h.trips.DecideApplication(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id"), req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, app)
}
