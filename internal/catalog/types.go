package catalog

import "strings"

// ServiceType identifies one of the agency's service lines.
type ServiceType string

const (
	ServiceWeb        ServiceType = "WEB"
	ServiceMobile     ServiceType = "MOBILE"
	ServiceEcommerce  ServiceType = "ECOMMERCE"
	ServiceCloud      ServiceType = "CLOUD"
	ServiceAI         ServiceType = "AI"
	ServiceConsulting ServiceType = "CONSULTING"
)

// String returns the string representation of the service type.
func (s ServiceType) String() string {
	return string(s)
}

// PackageType identifies a pricing tier. CUSTOM requests manual quoting and
// is never priced by the engine.
type PackageType string

const (
	PackageStartup    PackageType = "STARTUP"
	PackageBusiness   PackageType = "BUSINESS"
	PackageEnterprise PackageType = "ENTERPRISE"
	PackageCustom     PackageType = "CUSTOM"
)

// String returns the string representation of the package type.
func (p PackageType) String() string {
	return string(p)
}

// Currency is the quoting currency. Prices are cataloged in MXN; USD amounts
// are derived with a fixed exchange rate.
type Currency string

const (
	CurrencyMXN Currency = "MXN"
	CurrencyUSD Currency = "USD"
)

var serviceAliases = map[string]ServiceType{
	"web":        ServiceWeb,
	"sitio":      ServiceWeb,
	"mobile":     ServiceMobile,
	"movil":      ServiceMobile,
	"app":        ServiceMobile,
	"ecommerce":  ServiceEcommerce,
	"e-commerce": ServiceEcommerce,
	"tienda":     ServiceEcommerce,
	"cloud":      ServiceCloud,
	"nube":       ServiceCloud,
	"ai":         ServiceAI,
	"ia":         ServiceAI,
	"consulting": ServiceConsulting,
	"consultoria": ServiceConsulting,
}

// NormalizeServiceType maps free-text input to a ServiceType. Unknown input
// falls back to WEB; this fallback is load-bearing for the public quote form
// and is not an error.
func NormalizeServiceType(raw string) ServiceType {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	switch ServiceType(strings.ToUpper(cleaned)) {
	case ServiceWeb, ServiceMobile, ServiceEcommerce, ServiceCloud, ServiceAI, ServiceConsulting:
		return ServiceType(strings.ToUpper(cleaned))
	}
	if mapped, ok := serviceAliases[cleaned]; ok {
		return mapped
	}
	return ServiceWeb
}

// NormalizePackageType maps free-text input to a PackageType. Unknown input
// falls back to STARTUP.
func NormalizePackageType(raw string) PackageType {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	switch PackageType(cleaned) {
	case PackageStartup, PackageBusiness, PackageEnterprise, PackageCustom:
		return PackageType(cleaned)
	}
	return PackageStartup
}

var serviceLabels = map[ServiceType]string{
	ServiceWeb:        "Desarrollo Web",
	ServiceMobile:     "Aplicación Móvil",
	ServiceEcommerce:  "E-commerce",
	ServiceCloud:      "Soluciones Cloud",
	ServiceAI:         "Inteligencia Artificial",
	ServiceConsulting: "Consultoría TI",
}

// Label returns the localized display label for the service type.
func (s ServiceType) Label() string {
	if label, ok := serviceLabels[s]; ok {
		return label
	}
	return string(s)
}
