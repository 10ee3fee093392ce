package v1

import (
	"net/http"

	"moondev-backend/config"
	"moondev-backend/internal/delivery/http/middleware"
	"moondev-backend/internal/delivery/http/response"
	"moondev-backend/internal/domain"
	"moondev-backend/internal/realtime"
	"moondev-backend/pkg/auth"
	"moondev-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	SubmissionUC   domain.SubmissionUsecase
	NotificationUC domain.NotificationUsecase
	Hub            *realtime.Hub
	JWKSProvider   *auth.Provider
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.GlobalRateLimitMiddleware())

	// Guarded page routes
	pages := r.Group("")
	pages.Use(middleware.SessionMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	pages.Use(middleware.RouteGuard())
	NewPagesHandler(pages)

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		redisStatus := "ok"
		if err := redis.HealthCheck(c.Request.Context()); err != nil {
			redisStatus = "unavailable"
		}
		response.Success(c, http.StatusOK, "System operational", gin.H{
			"redis": redisStatus,
		})
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	{
		NewAuthHandler(v1, protected, deps.AuthUC, deps.Config, middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig()))
		NewSubmissionHandler(protected, deps.SubmissionUC, deps.Config.MaxArchiveSize(), middleware.RateLimitMiddleware(middleware.SubmitRateLimitConfig()))
		NewStreamHandler(protected, deps.Hub)
		NewNotifyHandler(protected, deps.NotificationUC)
	}

	return r
}
