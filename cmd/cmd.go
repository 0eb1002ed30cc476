package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/config"
	"github.com/SLAWWWW/CommunityCompass/internal/handlers"
	"github.com/SLAWWWW/CommunityCompass/internal/middleware"
	"github.com/SLAWWWW/CommunityCompass/internal/repository"
	"github.com/SLAWWWW/CommunityCompass/internal/repository/memory"
	"github.com/SLAWWWW/CommunityCompass/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Initialize storage
	var (
		userStore    repository.UserStore
		groupStore   repository.GroupStore
		messageStore repository.MessageStore
	)

	switch cfg.Storage.Driver {
	case "postgres":
		db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := db.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		log.Info().Msg("Database connection established")

		userStore = repository.NewUserRepository(db)
		groupStore = repository.NewGroupRepository(db)
		messageStore = repository.NewMessageRepository(db)

	case "memory":
		users := memory.NewUserStore()
		groups := memory.NewGroupStore()

		if cfg.Storage.SeedFile != "" {
			if err := memory.LoadSeed(context.Background(), cfg.Storage.SeedFile, users, groups); err != nil {
				log.Fatal().Err(err).Str("seed_file", cfg.Storage.SeedFile).Msg("Failed to load seed data")
			}
			log.Info().Str("seed_file", cfg.Storage.SeedFile).Msg("Demo database loaded")
		}

		userStore = users
		groupStore = groups
		messageStore = memory.NewMessageStore()

	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("Unknown storage driver")
	}

	// Initialize services
	wsHub := services.NewWSHub()
	userService := services.NewUserService(userStore, cfg.JWT.Secret)
	membershipService := services.NewMembershipService(groupStore, userStore)
	chatService := services.NewChatFeedService(messageStore, groupStore, userStore, wsHub)
	recommendService := services.NewRecommendationService(cfg.Engine.URL)

	var avatarService *services.AvatarService
	if cfg.AWS.S3Bucket != "" {
		avatarService, err = services.NewAvatarService(
			userStore,
			cfg.AWS.Region,
			cfg.AWS.S3Bucket,
			cfg.AWS.AccessKey,
			cfg.AWS.SecretKey,
			cfg.AWS.Endpoint,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create avatar service")
		}
	}

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, avatarService)
	groupHandler := handlers.NewGroupHandler(membershipService, recommendService)
	chatHandler := handlers.NewChatHandler(chatService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService, membershipService, chatService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.CreateUser)
		r.Get("/users", userHandler.ListUsers)
		r.Get("/users/{user_id}", userHandler.GetUser)
		r.Get("/groups", groupHandler.ListGroups)
		r.Get("/groups/{group_id}", groupHandler.GetGroup)
		r.Get("/groups/{group_id}/messages", chatHandler.ListMessages)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(userService))
			r.Post("/groups", groupHandler.CreateGroup)
			r.Get("/groups/recommended", groupHandler.Recommended)
			r.Post("/groups/{group_id}/join", groupHandler.JoinGroup)
			r.Post("/groups/{group_id}/leave", groupHandler.LeaveGroup)
			r.Post("/groups/{group_id}/messages", chatHandler.PostMessage)
			r.Post("/users/{user_id}/like", userHandler.LikeUser)
			r.Post("/users/{user_id}/unlike", userHandler.UnlikeUser)
			r.Post("/users/avatar-upload", userHandler.AvatarUpload)
		})
	})

	// WebSocket route
	r.Get("/ws/groups/{group_id}", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Driver).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-User-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
