package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "idp-tool/docs" // This is for Swagger
	"idp-tool/internal/auth"
	"idp-tool/internal/config"
	"idp-tool/internal/database"
	"idp-tool/internal/dataset"
	"idp-tool/internal/email"
	"idp-tool/internal/handlers"
	"idp-tool/internal/localcache"
	"idp-tool/internal/logger"
	"idp-tool/internal/middleware"
	"idp-tool/internal/repository"
	"idp-tool/internal/scheduler"
	"idp-tool/internal/service"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title IDP Tool API
// @version 1.0
// @description Backend API for competency self-assessments, sharing, and collaborator feedback

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Load the reference dataset
	data, err := dataset.Load(cfg.Dataset.Dir)
	if err != nil {
		slog.Error("Failed to load reference dataset", "error", err)
		os.Exit(1)
	}
	slog.Info("Reference dataset loaded", "roles", len(data.Roles()))

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Open the local fallback cache
	cache, err := localcache.Open(cfg.LocalCache.Path)
	if err != nil {
		slog.Error("Failed to open local cache", "error", err)
		os.Exit(1)
	}
	defer func(cache *localcache.Store) {
		if err := cache.Close(); err != nil {
			slog.Error("Failed to close local cache", "error", err)
		}
	}(cache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	tokenRepo := repository.NewLoginTokenRepository(db.DB)
	responseRepo := repository.NewResponseRepository(db.DB)
	shareRepo := repository.NewShareRepository(db.DB)
	snapshotRepo := repository.NewSnapshotRepository(db.DB)
	feedbackRepo := repository.NewFeedbackRepository(db.DB)

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	emailService := email.NewService(&cfg.Email)
	responseService := service.NewResponseService(responseRepo, cache, data)
	authSvc := service.NewAuthService(userRepo, tokenRepo, authService, responseService, emailService, cfg.MagicLink.TTL, cfg.MagicLink.BaseURL)
	shareService := service.NewShareService(shareRepo, snapshotRepo, feedbackRepo, responseRepo, data, emailService, cfg.Email.AppBaseURL)
	feedbackService := service.NewFeedbackService(shareRepo, feedbackRepo, data, cfg.Autosave.QuietPeriod)
	exportService := service.NewExportService(data)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	datasetHandler := handlers.NewDatasetHandler(data)
	responseHandler := handlers.NewResponseHandler(responseService)
	exportHandler := handlers.NewExportHandler(responseService, exportService)
	shareHandler := handlers.NewShareHandler(shareService)
	feedbackHandler := handlers.NewFeedbackHandler(shareService, feedbackService)
	healthHandler := handlers.NewHealthHandler(db)

	// Start background maintenance
	sched := scheduler.NewScheduler(tokenRepo, &cfg.Scheduler)
	sched.Start()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)

	protected := func(h http.HandlerFunc) http.Handler {
		return authMw.Authenticate(h)
	}

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/magic-link", authHandler.RequestMagicLink)
	mux.HandleFunc("POST /api/v1/auth/verify", authHandler.Verify)
	mux.HandleFunc("GET /api/v1/reference/roles", datasetHandler.GetRoles)
	mux.HandleFunc("GET /api/v1/reference/assessments", datasetHandler.GetAssessments)
	mux.HandleFunc("GET /api/v1/roles/{roleId}/competencies", datasetHandler.GetRoleCompetencies)

	// Own responses
	mux.Handle("GET /api/v1/roles/{roleId}/responses", protected(responseHandler.GetResponses))
	mux.Handle("PUT /api/v1/roles/{roleId}/responses/{competencyId}", protected(responseHandler.SaveResponse))
	mux.Handle("DELETE /api/v1/roles/{roleId}/responses/{competencyId}", protected(responseHandler.DeleteResponse))
	mux.Handle("GET /api/v1/roles/{roleId}/progress", protected(responseHandler.GetProgress))
	mux.Handle("GET /api/v1/roles/{roleId}/export", protected(exportHandler.Export))

	// Shares
	mux.Handle("POST /api/v1/shares", protected(shareHandler.CreateShare))
	mux.Handle("GET /api/v1/shares/mine", protected(shareHandler.ListMine))
	mux.Handle("GET /api/v1/shares/shared-with-me", protected(shareHandler.ListSharedWithMe))
	mux.Handle("GET /api/v1/shares/{id}", protected(shareHandler.GetShare))
	mux.Handle("DELETE /api/v1/shares/{id}", protected(shareHandler.DeleteShare))

	// Collaborator feedback
	mux.Handle("GET /api/v1/collaborate/{token}", protected(feedbackHandler.GetCollaboration))
	mux.Handle("PUT /api/v1/collaborate/{token}/feedback/{competencyId}", protected(feedbackHandler.SaveFeedback))
	mux.Handle("POST /api/v1/collaborate/{token}/feedback/{competencyId}/autosave", protected(feedbackHandler.AutosaveFeedback))
	mux.Handle("POST /api/v1/collaborate/{token}/submit", protected(feedbackHandler.SubmitFeedback))

	mux.HandleFunc("GET /health", healthHandler.Health)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	sched.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Write out any feedback still waiting in the autosave queue
	feedbackService.Close()

	slog.Info("Server stopped")
}
