// Package handlers exposes the HTTP and websocket surface.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/internal/service"
	"github.com/travel-buddies/travel-buddies-backend/types"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid registration payload", err.Error()))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid login payload", err.Error()))
		return
	}

	resp, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
