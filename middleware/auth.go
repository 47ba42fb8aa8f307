package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/logger"
)

// Validator verifies a bearer token and returns the identity it was
// issued for. Implemented by auth.TokenService.
type Validator interface {
	Validate(token string) (userID, username string, err error)
}

// AuthMiddleware requires a valid Bearer token on the Authorization
// header and stores the caller's identity on the gin context.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		authHeader := c.GetHeader("Authorization")
		token := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if token == "" {
			_ = c.Error(apperrors.Unauthorized("missing_token", "Authorization token required"))
			c.Abort()
			return
		}

		userID, username, err := validator.Validate(token)
		if err != nil {
			log.Debugw("Token validation failed", "path", c.Request.URL.Path, "error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UsernameKey, username)
		c.Next()
	}
}
