package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jobportal/internal/config"
	"jobportal/internal/middleware"
	"jobportal/internal/models"
	"jobportal/internal/service"
)

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	auth         *service.AuthService
	jobs         *service.JobService
	applications *service.ApplicationService
	limiter      middleware.Limiter
	checks       []HealthCheck
}

type Dependencies struct {
	Auth         *service.AuthService
	Jobs         *service.JobService
	Applications *service.ApplicationService
	// Limiter may be nil, which disables rate limiting.
	Limiter      middleware.Limiter
	HealthChecks []HealthCheck
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Dependencies) HandlerSet {
	return HandlerSet{
		log:          log,
		cfg:          cfg,
		auth:         deps.Auth,
		jobs:         deps.Jobs,
		applications: deps.Applications,
		limiter:      deps.Limiter,
		checks:       deps.HealthChecks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	limits := h.cfg.RateLimit

	router.GET("/healthz", h.Health)

	auth := router.Group("/auth")
	{
		auth.POST("/register",
			middleware.RateLimit(h.limiter, "register", limits.LoginLimit, limits.LoginWindow, h.log),
			h.RegisterAccount)
		auth.POST("/login",
			middleware.RateLimit(h.limiter, "login", limits.LoginLimit, limits.LoginWindow, h.log),
			h.Login)
		auth.GET("/me", middleware.Auth(h.auth), middleware.RequireRoles(), h.Me)
	}

	router.GET("/jobs/:id", h.ViewJob)

	employer := router.Group("/employer")
	employer.POST("/applications",
		middleware.RateLimit(h.limiter, "submit", limits.SubmitLimit, limits.SubmitWindow, h.log),
		h.SubmitApplication)

	admin := employer.Group("")
	admin.Use(
		middleware.Auth(h.auth),
		middleware.RequireRoles(models.RoleAdmin),
	)
	{
		admin.POST("/jobs", h.CreateJob)
		admin.GET("/jobs", h.ListJobs)
		admin.PUT("/jobs/:id", h.UpdateJob)
		admin.DELETE("/jobs/:id", h.DeleteJob)
		admin.GET("/jobs/:id/applications", h.ListJobApplications)
		admin.GET("/applications/:id", h.GetApplication)
		admin.PATCH("/applications/:id/status", h.TransitionApplication)
	}
}
