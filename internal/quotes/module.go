// Package quotes wires the quote bounded context: public intake, pricing
// preview, client portal views, and the admin lifecycle surface.
package quotes

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/internal/pricing"
	"agency_portal_backend/internal/quotes/handler"
	"agency_portal_backend/internal/quotes/repository"
	"agency_portal_backend/internal/quotes/service"
	"agency_portal_backend/platform/events"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

// Deps are the cross-module ports the quote service needs.
type Deps struct {
	Pricer   *pricing.Engine
	Users    service.UserProvisioner
	Projects service.Projects
	Notifier service.Notifier
	Cache    service.StatsCache
	CacheTTL time.Duration
}

func NewModule(db *pgxpool.Pool, deps Deps, log *logger.Logger, bus events.Bus, validate *validator.Validator) *Module {
	repo := repository.New(db)
	svc := service.New(repo, deps.Pricer, deps.Users, deps.Projects, deps.Notifier,
		bus, log, deps.Cache, deps.CacheTTL)
	return &Module{handler: handler.New(svc, validate)}
}

func (m *Module) Name() string { return "quotes" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/public/quotes", m.handler.Submit)
	ctx.V1.POST("/public/quotes/calculate", m.handler.Calculate)

	ctx.Protected.GET("/quotes", m.handler.ListMine)
	ctx.Protected.GET("/quotes/:id", m.handler.Get)

	adminQuotes := ctx.Admin.Group("/quotes")
	{
		adminQuotes.GET("", m.handler.List)
		adminQuotes.GET("/stats", m.handler.Stats)
		adminQuotes.PATCH("/bulk/status", m.handler.BulkUpdateStatus)
		adminQuotes.POST("/bulk/convert", m.handler.BulkConvert)
		adminQuotes.PATCH("/:id/status", m.handler.UpdateStatus)
		adminQuotes.DELETE("/:id", m.handler.Delete)
	}
}
