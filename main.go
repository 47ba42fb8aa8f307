package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/travel-buddies/travel-buddies-backend/config"
	"github.com/travel-buddies/travel-buddies-backend/db"
	"github.com/travel-buddies/travel-buddies-backend/handlers"
	"github.com/travel-buddies/travel-buddies-backend/internal/auth"
	"github.com/travel-buddies/travel-buddies-backend/internal/service"
	"github.com/travel-buddies/travel-buddies-backend/internal/store/postgres"
	"github.com/travel-buddies/travel-buddies-backend/internal/ws"
	"github.com/travel-buddies/travel-buddies-backend/logger"
	"github.com/travel-buddies/travel-buddies-backend/router"
	"github.com/travel-buddies/travel-buddies-backend/services"
	"nhooyr.io/websocket"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL())
	if err != nil {
		log.Fatalf("Failed to parse database config: %v", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis
	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Server.Environment == config.EnvProduction {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	defer redisClient.Close()

	// Stores
	userStore := postgres.NewUserStore(pool)
	tripStore := postgres.NewTripStore(pool)
	messageStore := postgres.NewMessageStore(pool)

	// Core services
	tokenService := auth.NewTokenService(cfg.Server.JwtSecretKey,
		time.Duration(cfg.Server.JwtExpiryMinutes)*time.Minute)
	guard := service.NewTripAccessGuard(tripStore)
	registry := ws.NewRegistry()
	sessionHandler := ws.NewSessionHandler(registry, guard, messageStore, ws.SessionConfig{
		PingInterval: time.Duration(cfg.Chat.PingIntervalSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Chat.WriteTimeoutSeconds) * time.Second,
		ReadLimit:    cfg.Chat.ReadLimitBytes,
	})

	emailService := services.NewEmailService(&cfg.Email)
	userService := service.NewUserService(userStore, tokenService)
	chatService := service.NewChatService(guard, messageStore, registry)
	tripService := service.NewTripService(tripStore, userStore, chatService, registry, emailService)

	// HTTP surface
	engine := router.SetupRouter(router.Dependencies{
		Config:             cfg,
		JWTValidator:       tokenService,
		RedisClient:        redisClient,
		AuthHandler:        handlers.NewAuthHandler(userService),
		UserHandler:        handlers.NewUserHandler(userService),
		TripHandler:        handlers.NewTripHandler(tripService),
		ApplicationHandler: handlers.NewApplicationHandler(tripService),
		ChatHandler:        handlers.NewChatHandler(chatService, sessionHandler, &cfg.Server),
		HealthHandler:      handlers.NewHealthHandler(pool, redisClient),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	registry.Shutdown(websocket.StatusGoingAway, "server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
}
