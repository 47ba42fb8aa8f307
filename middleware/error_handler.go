package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/logger"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler converts errors attached to the gin context into JSON
// responses. Handlers report failures with c.Error instead of writing
// status codes themselves.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log := logger.GetLogger()

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			status := appErr.GetHTTPStatus()
			log.Infow("Request failed",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"status", status,
				"error_type", appErr.Type,
				"error", appErr.Message)

			resp := ErrorResponse{
				Type:    string(appErr.Type),
				Message: appErr.Message,
				Code:    strconv.Itoa(status),
			}
			// Details only where they help the client correct the request.
			if appErr.Detail != "" &&
				(appErr.Type == apperrors.ValidationError || appErr.Type == apperrors.NotFoundError) {
				resp.Details = appErr.Detail
			}
			c.JSON(status, resp)
			return
		}

		if c.Errors.Last().Type == gin.ErrorTypeBind {
			log.Infow("Request binding failed",
				"path", c.Request.URL.Path,
				"error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Type:    string(apperrors.ValidationError),
				Message: "Failed to bind request",
				Details: err.Error(),
				Code:    strconv.Itoa(http.StatusBadRequest),
			})
			return
		}

		log.Errorw("Unhandled error",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Type:    string(apperrors.ServerError),
			Message: "Internal server error",
			Code:    strconv.Itoa(http.StatusInternalServerError),
		})
	}
}
