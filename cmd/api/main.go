package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-headhunter-backend/config"
	_ "go-headhunter-backend/docs" // Important for Swagger
	"go-headhunter-backend/internal/delivery/http/middleware"
	v1 "go-headhunter-backend/internal/delivery/http/v1"
	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/internal/repository/postgres"
	"go-headhunter-backend/internal/usecase"
	"go-headhunter-backend/migrations"
	"go-headhunter-backend/pkg/audit"
	"go-headhunter-backend/pkg/auth"
	"go-headhunter-backend/pkg/credential"
	"go-headhunter-backend/pkg/database"
	"go-headhunter-backend/pkg/email"
	"go-headhunter-backend/pkg/logger"
	pkgredis "go-headhunter-backend/pkg/redis"
	"go-headhunter-backend/pkg/security"
	"go-headhunter-backend/pkg/storage"
	"go-headhunter-backend/pkg/validation"

	goredis "github.com/redis/go-redis/v9"
)

// redisPinger adapts *redis.Client to usecase.Pinger
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// @title           Headhunter Backend API
// @version         1.0
// @description     Recruitment matching backend: HR registration, student import, activation and reservations.
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
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting headhunter backend", "port", cfg.Port)

	auditLogger := audit.NewLogger("headhunter-api")
	defer func() { _ = auditLogger.Sync() }()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Setup Database
	if cfg.RunMigrations {
		if err := migrations.Up(cfg.DBUrl); err != nil {
			logger.Log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Log.Info("Database migrations applied")
	}

	dbPool, err := database.NewPostgresConnection(rootCtx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	hrProfileRepo := postgres.NewHrProfileRepository(dbPool)
	studentRepo := postgres.NewStudentRepository(dbPool)
	transactor := postgres.NewTransactor(dbPool)

	// 5. Setup Email Service
	emailService := email.NewEmailService(cfg)
	var mailer domain.ActivationMailer
	if emailService.IsConfigured() {
		mailer = emailService
	} else {
		logger.Log.Warn("Email service not fully configured - activation emails will not be sent")
	}

	// 6. Setup Redis (optional)
	healthDeps := map[string]usecase.Pinger{"database": dbPool}
	var redisClient *goredis.Client
	if cfg.UpstashRedisURL != "" {
		redisClient, err = pkgredis.NewClient(rootCtx, pkgredis.Config{
			URL:      cfg.UpstashRedisURL,
			Password: cfg.UpstashRedisPassword,
		})
		if err != nil {
			logger.Log.Warn("Redis unavailable - rate limiting falls back to memory", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			healthDeps["redis"] = redisPinger{client: redisClient}
		}
	}
	rateLimiter := middleware.NewRateLimiter(redisClient, auditLogger)
	rateLimiter.StartCleanup(rootCtx, 5*time.Minute)

	// 7. Setup Import Archive (optional)
	var archive v1.ImportArchiver
	if cfg.ImportArchiveEnabled() {
		storageCfg := storage.Config{
			Provider:        storage.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.ImportArchiveBucket,
		}
		s3Client, err := storage.NewS3Client(rootCtx, storageCfg)
		if err != nil {
			logger.Log.Warn("Import archive disabled", "error", err)
		} else {
			archive = storage.NewImportArchive(s3Client, storageCfg)
		}
	}

	// 8. Setup UseCases
	validate := validation.New()
	hasher := credential.NewHasher()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	registrationUC := usecase.NewRegistrationUsecase(usecase.RegistrationDeps{
		Users:      userRepo,
		HrProfiles: hrProfileRepo,
		Students:   studentRepo,
		Tx:         transactor,
		Mailer:     mailer,
		Hasher:     hasher,
		Validate:   validate,
		Audit:      auditLogger,
	}, usecase.RegistrationOptions{
		FailOnDispatch:    cfg.MailFailurePolicy == config.MailFailurePolicyFail,
		SendStudentEmails: cfg.SendStudentActivationEmails,
		TokenTTL:          cfg.ActivationTokenTTL,
	})
	activationUC := usecase.NewActivationUsecase(userRepo, auditLogger)
	loginTracker := security.NewLoginTracker(redisClient, security.LoginTrackerConfig{
		MaxAttempts:   cfg.LoginMaxAttempts,
		BlockDuration: cfg.LoginBlockDuration,
	}, auditLogger)
	authUC := usecase.NewAuthUsecase(userRepo, hasher, tokens, loginTracker, auditLogger)
	reservationUC := usecase.NewReservationUsecase(studentRepo, hrProfileRepo, userRepo, transactor, validate, auditLogger, cfg.ReservationPeriod)
	healthUC := usecase.NewHealthUsecase(healthDeps)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		RegistrationUC: registrationUC,
		ActivationUC:   activationUC,
		AuthUC:         authUC,
		ReservationUC:  reservationUC,
		HealthUC:       healthUC,
		Tokens:         tokens,
		RateLimiter:    rateLimiter,
		Archive:        archive,
		Config:         cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
