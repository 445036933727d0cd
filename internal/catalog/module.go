package catalog

import (
	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/platform/logger"
)

// Module exposes the catalog over HTTP.
type Module struct {
	handler *Handler
}

func NewModule(c *Catalog, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(c, log)}
}

func (m *Module) Name() string { return "catalog" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/public/services", m.handler.ListServices)
}
