// Package projects wires the project bounded context.
package projects

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/internal/projects/handler"
	"agency_portal_backend/internal/projects/repository"
	"agency_portal_backend/internal/projects/service"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/validator"
)

type Module struct {
	service *service.Service
	handler *handler.Handler
}

func NewModule(db *pgxpool.Pool, log *logger.Logger, validate *validator.Validator) *Module {
	repo := repository.New(db)
	svc := service.New(repo, log)
	return &Module{
		service: svc,
		handler: handler.New(svc, validate),
	}
}

func (m *Module) Name() string { return "projects" }

// Service exposes project operations for the quote lifecycle adapter.
func (m *Module) Service() *service.Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/projects", m.handler.ListMine)
	ctx.Protected.GET("/projects/:id", m.handler.Get)

	ctx.Admin.GET("/projects", m.handler.List)
	ctx.Admin.PATCH("/projects/:id", m.handler.Update)
}
