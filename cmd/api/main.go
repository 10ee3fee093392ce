package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moondev-backend/config"
	_ "moondev-backend/docs" // Important for Swagger
	v1 "moondev-backend/internal/delivery/http/v1"
	"moondev-backend/internal/realtime"
	"moondev-backend/internal/repository/postgres"
	"moondev-backend/internal/usecase"
	"moondev-backend/pkg/auth"
	"moondev-backend/pkg/database"
	"moondev-backend/pkg/email"
	"moondev-backend/pkg/logger"
	"moondev-backend/pkg/redis"
	"moondev-backend/pkg/storage"
	"moondev-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// @title           MoonDev Application API
// @version         1.0
// @description     Backend for the MoonDev developer application review platform.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting moondev backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting; falls back to in-memory when absent)
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}
	defer redis.Close()

	// 5. Setup Object Storage
	store, err := storage.NewClient(context.Background(), storage.ClientConfig{
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
	})
	if err != nil {
		logger.Log.Error("Failed to configure object storage", "error", err)
		os.Exit(1)
	}

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - decision notifications will fail")
	}

	// 7. Setup Repositories and realtime hub
	userRepo := postgres.NewUserRepository(dbPool)
	submissionRepo := postgres.NewSubmissionRepository(dbPool)
	hub := realtime.NewHub()

	// 8. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)

	authUC := usecase.NewAuthUsecase(userRepo)
	submissionUC := usecase.NewSubmissionUsecase(
		submissionRepo,
		store,
		emailService,
		hub,
		validate,
		usecase.Buckets{
			ProfilePictures: cfg.ProfilePictureBucket,
			SourceCode:      cfg.SourceCodeBucket,
		},
		cfg.MaxArchiveSize(),
		cfg.NotifyTimeout(),
	)
	notificationUC := usecase.NewNotificationUsecase(submissionRepo, emailService)

	// 9. Setup Auth Provider (JWKS)
	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	jwksProvider := auth.NewProvider(jwksURL)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		SubmissionUC:   submissionUC,
		NotificationUC: notificationUC,
		Hub:            hub,
		JWKSProvider:   jwksProvider,
		Config:         cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
