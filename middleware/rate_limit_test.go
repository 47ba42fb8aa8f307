package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitedRouter(limit int, window time.Duration) (*gin.Engine, redismock.ClientMock) {
	gin.SetMode(gin.TestMode)
	db, mock := redismock.NewClientMock()

	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(AuthRateLimiter(db, limit, window))
	router.POST("/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router, mock
}

func doLogin(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRateLimiter_AllowsUnderLimit(t *testing.T) {
	router, mock := newRateLimitedRouter(5, 60*time.Second)
	key := "ratelimit:auth:192.168.1.1"

	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, 60*time.Second).SetVal(true)
	mock.ExpectTxPipelineExec()

	w := doLogin(router, "192.168.1.1:1234")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthRateLimiter_BlocksOverLimit(t *testing.T) {
	router, mock := newRateLimitedRouter(3, 60*time.Second)
	key := "ratelimit:auth:192.168.1.2"

	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(4)
	mock.ExpectExpire(key, 60*time.Second).SetVal(true)
	mock.ExpectTxPipelineExec()
	mock.ExpectTTL(key).SetVal(30 * time.Second)

	w := doLogin(router, "192.168.1.2:1234")

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthRateLimiter_FailsOpenOnRedisErrors(t *testing.T) {
	// No expectations registered: every Redis command errors.
	router, _ := newRateLimitedRouter(5, 60*time.Second)

	w := doLogin(router, "192.168.1.3:1234")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		remoteAddr    string
		xForwardedFor string
		xRealIP       string
		expectedIP    string
	}{
		{
			name:          "uses X-Forwarded-For first IP",
			remoteAddr:    "192.168.1.1:1234",
			xForwardedFor: "10.0.0.1, 10.0.0.2, 10.0.0.3",
			expectedIP:    "10.0.0.1",
		},
		{
			name:       "uses X-Real-IP when X-Forwarded-For is empty",
			remoteAddr: "192.168.1.1:1234",
			xRealIP:    "10.0.0.1",
			expectedIP: "10.0.0.1",
		},
		{
			name:       "falls back to RemoteAddr",
			remoteAddr: "192.168.1.1:1234",
			expectedIP: "192.168.1.1",
		},
		{
			name:          "prefers X-Forwarded-For over X-Real-IP",
			remoteAddr:    "192.168.1.1:1234",
			xForwardedFor: "10.0.0.1",
			xRealIP:       "10.0.0.2",
			expectedIP:    "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			req, _ := http.NewRequest("GET", "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwardedFor)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			c.Request = req

			assert.Equal(t, tt.expectedIP, getClientIP(c))
		})
	}
}
