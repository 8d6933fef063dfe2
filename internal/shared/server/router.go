package server

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/assistant"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/users"
)

// RouterDeps groups the handlers and infrastructure the router mounts.
type RouterDeps struct {
	Config           config.Config
	DB               *sql.DB
	Users            health.UserCounter
	Verifier         middleware.TokenVerifier
	RateLimiter      *middleware.RateLimiter
	UserHandler      *users.Handler
	ResumeHandler    *resumes.Handler
	AssistantHandler *assistant.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	respond.UseJSONFieldNames()
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	if deps.Verifier != nil {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Verifier: deps.Verifier,
			Required: deps.Config.AuthRequired,
			Public:   []string{"/api/v1/health", "/api/v1/metrics"},
		}))
	}

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(health.NewService(deps.DB, deps.Users)))
	api.GET("/metrics", metrics.Handler())

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}
	if deps.AssistantHandler != nil {
		ai := api.Group("/ai", middleware.RateLimit(middleware.RateLimitConfig{
			Rule:    middleware.PerMinute(deps.Config.AIRatePerMinute),
			Limiter: deps.RateLimiter,
			Scope:   "ai",
		}))
		deps.AssistantHandler.RegisterRoutes(ai)
	}

	return r
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.Up() {
			status = http.StatusInternalServerError
		}
		respond.JSON(c, status, report)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3001"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
