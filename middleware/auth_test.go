package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
)

type stubValidator struct {
	userID   string
	username string
	err      error
}

func (v *stubValidator) Validate(_ string) (string, string, error) {
	return v.userID, v.username, v.err
}

func newAuthedRouter(validator Validator, wsRoute bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())

	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":   c.GetString(UserIDKey),
			"username": c.GetString(UsernameKey),
		})
	}
	if wsRoute {
		router.GET("/ws", WSAuth(validator), handler)
	} else {
		router.GET("/me", AuthMiddleware(validator), handler)
	}
	return router
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := newAuthedRouter(&stubValidator{}, false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newAuthedRouter(&stubValidator{err: apperrors.Unauthorized("invalid_token", "Invalid or expired token")}, false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_SetsIdentity(t *testing.T) {
	router := newAuthedRouter(&stubValidator{userID: "u1", username: "alice"}, false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":"u1","username":"alice"}`, w.Body.String())
}

func TestWSAuth_TokenFromQuery(t *testing.T) {
	router := newAuthedRouter(&stubValidator{userID: "u1", username: "alice"}, true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ws?token=good-token", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWSAuth_RejectsBeforeUpgrade(t *testing.T) {
	router := newAuthedRouter(&stubValidator{err: apperrors.Unauthorized("invalid_token", "Invalid or expired token")}, true)

	// Missing token.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ws", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Invalid token.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/ws?token=bad", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
