package middleware

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/logger"
)

// WSAuth authenticates websocket upgrade requests. Browsers cannot set
// an Authorization header on websocket handshakes, so the token travels
// in the "token" query parameter instead. A failed check rejects the
// request with 401 before any upgrade happens.
func WSAuth(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			_ = c.Error(apperrors.Unauthorized("missing_token", "Authentication token required"))
			c.Abort()
			return
		}

		userID, username, err := validator.Validate(token)
		if err != nil {
			logger.GetLogger().Debugw("Websocket token validation failed",
				"path", c.Request.URL.Path, "error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UsernameKey, username)
		c.Next()
	}
}
