package v1

import (
	"context"
	"net/http"
	"time"

	"go-headhunter-backend/config"
	"go-headhunter-backend/internal/delivery/http/middleware"
	"go-headhunter-backend/internal/delivery/http/response"
	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HealthChecker reports the state of the service dependencies.
type HealthChecker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type RouterDeps struct {
	RegistrationUC domain.RegistrationUsecase
	ActivationUC   domain.ActivationUsecase
	AuthUC         domain.AuthUsecase
	ReservationUC  domain.ReservationUsecase
	HealthUC       HealthChecker      // optional
	Tokens         *auth.TokenManager
	RateLimiter    *middleware.RateLimiter // optional, in-memory limiter when nil
	Archive        ImportArchiver          // optional
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	cfg := deps.Config

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil, nil)
	}
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware(middleware.RateLimitConfig{
		Limit:     cfg.RateLimitGlobalThreshold,
		Window:    window,
		KeyPrefix: "rl:global:",
	}))

	sensitiveLimit := limiter.Middleware(middleware.RateLimitConfig{
		Limit:      cfg.RateLimitRegisterThreshold,
		Window:     window,
		KeyPrefix:  "rl:register:",
		FailClosed: true,
	})

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Success(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	NewUserHandler(v1, deps.RegistrationUC, deps.ActivationUC, UserHandlerConfig{
		Archive:        deps.Archive,
		MaxUploadBytes: int64(cfg.ImportMaxUploadMB) << 20,
		RegisterLimit:  sensitiveLimit,
		AdminGuard:     middleware.AdminToken(cfg.AdminToken),
	})

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		NewAuthHandler(v1, protected, deps.AuthUC, sensitiveLimit)

		hr := protected.Group("")
		hr.Use(middleware.RequireRole(domain.RoleHR))
		NewStudentHandler(hr, deps.ReservationUC)
	}

	return r
}
