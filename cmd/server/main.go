package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/riftly/scrim/api/internal/config"
	"github.com/riftly/scrim/api/internal/database"
	"github.com/riftly/scrim/api/internal/handler"
	"github.com/riftly/scrim/api/internal/middleware"
	"github.com/riftly/scrim/api/internal/repository"
	"github.com/riftly/scrim/api/internal/service"
	"github.com/riftly/scrim/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load .env if present; real environment variables take precedence
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	partyRepo := repository.NewPartyRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	gameRepo := repository.NewGamePostRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(jwtService)

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo: userRepo,
		Tokens:   tokenService,
	})

	partyService := service.NewPartyService(service.PartyServiceConfig{
		PartyRepo:      partyRepo,
		InvitationRepo: invitationRepo,
	})

	invitationService := service.NewInvitationService(service.InvitationServiceConfig{
		InvitationRepo: invitationRepo,
		PartyRepo:      partyRepo,
		UserRepo:       userRepo,
	})

	gameService := service.NewGamePostService(service.GamePostServiceConfig{
		GameRepo: gameRepo,
		Parties:  partyRepo,
		Users:    userRepo,
		Clock:    clockwork.NewRealClock(),
	})

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(authService)
	partyHandler := handler.NewPartyHandler(partyService)
	invitationHandler := handler.NewInvitationHandler(invitationService)
	gameHandler := handler.NewGamePostHandler(gameService)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Auth endpoints (public)
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)

	authMiddleware := middleware.Auth(authService)

	// Auth endpoints (protected)
	mux.Handle("GET /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me)))
	mux.Handle("GET /v1/users", authMiddleware(http.HandlerFunc(authHandler.ListUsers)))

	// Party endpoints
	mux.Handle("POST /v1/parties", authMiddleware(http.HandlerFunc(partyHandler.Create)))
	mux.Handle("GET /v1/parties", authMiddleware(http.HandlerFunc(partyHandler.List)))
	mux.Handle("DELETE /v1/parties/{partyId}", authMiddleware(http.HandlerFunc(partyHandler.Delete)))

	// Invitation endpoints
	mux.Handle("POST /v1/parties/{partyId}/invitations", authMiddleware(http.HandlerFunc(invitationHandler.Invite)))
	mux.Handle("GET /v1/invitations/received", authMiddleware(http.HandlerFunc(invitationHandler.ListReceived)))
	mux.Handle("POST /v1/invitations/{invitationId}/respond", authMiddleware(http.HandlerFunc(invitationHandler.Respond)))

	// Game post endpoints
	mux.Handle("POST /v1/games", authMiddleware(http.HandlerFunc(gameHandler.Create)))
	mux.Handle("GET /v1/games", authMiddleware(http.HandlerFunc(gameHandler.List)))
	mux.Handle("GET /v1/parties/{partyId}/games", authMiddleware(http.HandlerFunc(gameHandler.ListByParty)))
	mux.Handle("POST /v1/games/{gameId}/join", authMiddleware(http.HandlerFunc(gameHandler.Join)))
	mux.Handle("POST /v1/games/{gameId}/ready", authMiddleware(http.HandlerFunc(gameHandler.Ready)))
	mux.Handle("POST /v1/games/{gameId}/result", authMiddleware(http.HandlerFunc(gameHandler.SubmitResult)))
	mux.Handle("DELETE /v1/games/{gameId}", authMiddleware(http.HandlerFunc(gameHandler.Delete)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
