// Package pricing computes deterministic quote prices from the service
// catalog. The engine is pure: same input and catalog always produce the
// same result, and nothing here touches storage or the clock.
package pricing

import (
	"math"

	"agency_portal_backend/internal/catalog"
)

// MXNPerUSD is the fixed conversion rate applied when a quote is requested
// in USD. Catalog prices are MXN.
const MXNPerUSD = 20

// customQuoteFeature is the single line shown for CUSTOM requests, which are
// never priced automatically.
const customQuoteFeature = "Cotización personalizada: nuestro equipo te contactará para definir alcance y precio"

// Input is a pricing request. Raw strings are accepted on purpose; the engine
// normalizes them so the public quote form can never produce a hard failure.
type Input struct {
	ServiceType string
	PackageType string
	AddonIDs    []string
	Currency    string
}

// AppliedAddon is one add-on accepted into a quote, priced in the quote's
// currency.
type AppliedAddon struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Timeline int    `json:"timeline"`
}

// Result is a fully priced quote breakdown.
type Result struct {
	ServiceType catalog.ServiceType `json:"serviceType"`
	PackageType catalog.PackageType `json:"packageType"`
	Currency    catalog.Currency    `json:"currency"`
	BasePrice   int64               `json:"basePrice"`
	AddonsPrice int64               `json:"addonsPrice"`
	TotalPrice  int64               `json:"totalPrice"`
	Timeline    int                 `json:"timeline"` // days
	Features    []string            `json:"features"`
	Addons      []AppliedAddon      `json:"addons"`
}

// Engine prices quotes against an immutable catalog.
type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Calculate prices a request. Unknown service or package values fall back to
// their defaults, unknown or inapplicable add-on ids are skipped silently,
// and CUSTOM packages short-circuit to a zero-priced manual quote.
func (e *Engine) Calculate(in Input) (Result, error) {
	service := catalog.NormalizeServiceType(in.ServiceType)
	tier := catalog.NormalizePackageType(in.PackageType)
	currency := normalizeCurrency(in.Currency)

	if tier == catalog.PackageCustom {
		return Result{
			ServiceType: service,
			PackageType: tier,
			Currency:    currency,
			Features:    []string{customQuoteFeature},
			Addons:      []AppliedAddon{},
		}, nil
	}

	offer, err := e.catalog.Offer(service, tier)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		ServiceType: service,
		PackageType: tier,
		Currency:    currency,
		BasePrice:   offer.Price,
		Timeline:    offer.Timeline,
		Features:    append([]string(nil), offer.Features...),
		Addons:      []AppliedAddon{},
	}

	for _, id := range in.AddonIDs {
		addon, ok := e.catalog.AddonByID(id)
		if !ok || !addon.AppliesToService(service) {
			continue
		}
		result.AddonsPrice += addon.Price
		result.Timeline += addon.Timeline
		result.Addons = append(result.Addons, AppliedAddon{
			ID:       addon.ID,
			Name:     addon.Name,
			Price:    addon.Price,
			Timeline: addon.Timeline,
		})
	}

	result.TotalPrice = result.BasePrice + result.AddonsPrice

	if currency == catalog.CurrencyUSD {
		// Each amount converts independently, so in USD the total can be
		// off by one from base plus add-ons. Clients display the total.
		result.BasePrice = toUSD(result.BasePrice)
		result.AddonsPrice = toUSD(result.AddonsPrice)
		result.TotalPrice = toUSD(result.TotalPrice)
		for i := range result.Addons {
			result.Addons[i].Price = toUSD(result.Addons[i].Price)
		}
	}

	return result, nil
}

func toUSD(mxn int64) int64 {
	return int64(math.Round(float64(mxn) / MXNPerUSD))
}

func normalizeCurrency(raw string) catalog.Currency {
	if catalog.Currency(raw) == catalog.CurrencyUSD || raw == "usd" {
		return catalog.CurrencyUSD
	}
	return catalog.CurrencyMXN
}
