// Package router wires middleware and handlers into the gin engine.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/travel-buddies/travel-buddies-backend/config"
	"github.com/travel-buddies/travel-buddies-backend/handlers"
	"github.com/travel-buddies/travel-buddies-backend/middleware"
)

// Dependencies holds everything SetupRouter needs.
type Dependencies struct {
	Config             *config.Config
	JWTValidator       middleware.Validator
	RedisClient        *redis.Client
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	TripHandler        *handlers.TripHandler
	ApplicationHandler *handlers.ApplicationHandler
	ChatHandler        *handlers.ChatHandler
	HealthHandler      *handlers.HealthHandler
}

// SetupRouter configures and returns the gin engine with all routes.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.Server.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	r.GET("/health", deps.HealthHandler.ReadinessCheck)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimiter(
		deps.RedisClient,
		deps.Config.RateLimit.AuthRequestsPerMinute,
		time.Duration(deps.Config.RateLimit.WindowSeconds)*time.Second,
	))
	auth.POST("/register", deps.AuthHandler.Register)
	auth.POST("/login", deps.AuthHandler.Login)

	// The websocket handshake carries its token in the query string, so
	// the chat route uses its own auth middleware.
	v1.GET("/trips/:id/chat", middleware.WSAuth(deps.JWTValidator), deps.ChatHandler.HandleChatSocket)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTValidator))
	{
		authed.GET("/users", deps.UserHandler.ListUsers)
		authed.GET("/users/me", deps.UserHandler.GetMe)
		authed.PATCH("/users/me", deps.UserHandler.UpdateMe)
		authed.GET("/users/:id", deps.UserHandler.GetUser)
		authed.PATCH("/users/:id/verify", deps.UserHandler.VerifyUser)

		authed.POST("/trips", deps.TripHandler.CreateTrip)
		authed.GET("/trips", deps.TripHandler.ListTrips)
		authed.GET("/trips/:id", deps.TripHandler.GetTrip)
		authed.PATCH("/trips/:id", deps.TripHandler.UpdateTrip)
		authed.PATCH("/trips/:id/status", deps.TripHandler.UpdateStatus)
		authed.DELETE("/trips/:id", deps.TripHandler.DeleteTrip)

		authed.POST("/trips/:id/applications", deps.ApplicationHandler.Apply)
		authed.GET("/trips/:id/applications", deps.ApplicationHandler.ListApplications)
		authed.PATCH("/applications/:id", deps.ApplicationHandler.Decide)

		authed.GET("/trips/:id/messages", deps.ChatHandler.ListMessages)
		authed.POST("/trips/:id/messages", deps.ChatHandler.SendMessage)
	}

	return r
}
