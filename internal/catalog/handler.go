package catalog

import (
	"github.com/gin-gonic/gin"

	"agency_portal_backend/platform/httpkit"
	"agency_portal_backend/platform/logger"
)

// Handler serves the public, read-only catalog endpoints.
type Handler struct {
	catalog *Catalog
	log     *logger.Logger
}

func NewHandler(c *Catalog, log *logger.Logger) *Handler {
	return &Handler{catalog: c, log: log}
}

type packageView struct {
	Price    int64    `json:"price"`
	Timeline int      `json:"timeline"`
	Features []string `json:"features"`
}

type serviceView struct {
	Type     string                 `json:"type"`
	Label    string                 `json:"label"`
	Packages map[string]packageView `json:"packages"`
	Addons   []Addon                `json:"addons"`
}

// ListServices returns every service line with its priced tiers and the
// add-ons that apply to it. Prices are MXN.
func (h *Handler) ListServices(c *gin.Context) {
	services := make([]serviceView, 0, len(h.catalog.ServiceTypes()))
	for _, svc := range h.catalog.ServiceTypes() {
		view := serviceView{
			Type:     svc.String(),
			Label:    svc.Label(),
			Packages: make(map[string]packageView, 3),
			Addons:   h.catalog.AddonsFor(svc),
		}
		for _, tier := range []PackageType{PackageStartup, PackageBusiness, PackageEnterprise} {
			offer, err := h.catalog.Offer(svc, tier)
			if err != nil {
				httpkit.HandleError(c, err)
				return
			}
			view.Packages[tier.String()] = packageView{
				Price:    offer.Price,
				Timeline: offer.Timeline,
				Features: offer.Features,
			}
		}
		services = append(services, view)
	}

	httpkit.OK(c, gin.H{
		"currency": string(CurrencyMXN),
		"services": services,
		"addons":   h.catalog.Addons(),
	})
}
