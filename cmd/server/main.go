package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Preston-Miller/LibraryProject/internal/cache"
	"github.com/Preston-Miller/LibraryProject/internal/config"
	"github.com/Preston-Miller/LibraryProject/internal/database"
	"github.com/Preston-Miller/LibraryProject/internal/metrics"
	postgresrepo "github.com/Preston-Miller/LibraryProject/internal/repository/postgres"
	"github.com/Preston-Miller/LibraryProject/internal/service"
	"github.com/Preston-Miller/LibraryProject/internal/transport/http/handlers"
	"github.com/Preston-Miller/LibraryProject/internal/transport/http/middleware"
	"github.com/Preston-Miller/LibraryProject/internal/transport/ws"
)

func main() {
	cfg := config.Load()
	metrics.Register()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Redis presence cache. Optional: without it every snapshot hits Postgres.
	var presenceCache *cache.PresenceCache
	if client, err := cache.NewRedisClient(context.Background(), cfg.RedisURL); err != nil {
		log.Printf("Redis unavailable, running without presence cache: %v", err)
	} else {
		presenceCache = cache.NewPresenceCache(client)
		log.Println("Connected to redis")
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	friendshipRepo := postgresrepo.NewFriendshipRepo(pool)
	presenceRepo := postgresrepo.NewPresenceRepo(pool)

	// WebSocket hub (the change-event transport between sessions)
	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewHubNotifier(hub)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	friendshipService := service.NewFriendshipService(friendshipRepo, userRepo, notifier)
	presenceService := service.NewPresenceService(presenceRepo, presenceCache, notifier)
	sessionService := service.NewSessionService(userRepo, friendshipService, presenceService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	friendHandler := handlers.NewFriendHandler(friendshipService)
	presenceHandler := handlers.NewPresenceHandler(presenceService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Friends
	mux.Handle("GET /api/v1/friends", auth(http.HandlerFunc(friendHandler.Overview)))
	mux.Handle("POST /api/v1/friends/requests", auth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("POST /api/v1/friends/requests/{id}/accept", auth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("DELETE /api/v1/friends/requests/{id}", auth(http.HandlerFunc(friendHandler.DeclineRequest)))
	mux.Handle("DELETE /api/v1/friends/{userId}", auth(http.HandlerFunc(friendHandler.RemoveFriend)))

	// Protected - Own status
	mux.Handle("GET /api/v1/status", auth(http.HandlerFunc(presenceHandler.GetStatus)))
	mux.Handle("PUT /api/v1/status", auth(http.HandlerFunc(presenceHandler.SetStatus)))

	// WebSocket (auth via query param)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, sessionService, cfg.JWTSecret))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
