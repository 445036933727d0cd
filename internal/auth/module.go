// Package auth wires the authentication bounded context: accounts, sessions,
// and user administration.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"agency_portal_backend/internal/auth/handler"
	"agency_portal_backend/internal/auth/repository"
	"agency_portal_backend/internal/auth/service"
	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/events"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/validator"
)

type Module struct {
	service *service.Service
	handler *handler.Handler
	repo    *repository.Repository
}

func NewModule(db *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger, bus events.Bus, validate *validator.Validator) *Module {
	repo := repository.New(db)
	svc := service.New(repo, cfg, log, bus)
	return &Module{
		service: svc,
		handler: handler.New(svc, validate),
		repo:    repo,
	}
}

func (m *Module) Name() string { return "auth" }

// Service exposes the auth service for cross-module adapters (user
// provisioning from quote submissions).
func (m *Module) Service() *service.Service { return m.service }

// Repository exposes the repository for background cleanup tasks.
func (m *Module) Repository() *repository.Repository { return m.repo }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	{
		authGroup.POST("/register", m.handler.Register)
		authGroup.POST("/login", m.handler.Login)
		authGroup.POST("/refresh", m.handler.Refresh)
		authGroup.POST("/logout", m.handler.Logout)
	}

	ctx.Protected.GET("/users/me", m.handler.Me)
	ctx.Admin.GET("/users", m.handler.ListUsers)
}
