// Package catalog holds the agency's immutable service and add-on catalog.
// The catalog is parsed once at process start from an embedded YAML document
// and injected by reference; it is never mutated at runtime.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var rawCatalog []byte

// PackageOffer is the priced offer for one tier of a service.
type PackageOffer struct {
	Price    int64    `yaml:"price"`    // whole MXN
	Timeline int      `yaml:"timeline"` // days
	Features []string `yaml:"features"`
}

// ServiceEntry is the catalog entry for one service line.
type ServiceEntry struct {
	Packages map[PackageType]PackageOffer `yaml:"packages"`
}

// Addon is an optional feature bundle applicable to a subset of services.
type Addon struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	Price       int64         `yaml:"price" json:"price"`
	Timeline    int           `yaml:"timeline" json:"timeline"`
	AppliesTo   []ServiceType `yaml:"applies_to" json:"appliesTo"`
	Description string        `yaml:"description" json:"description"`
}

// AppliesToService reports whether the add-on can be attached to quotes for
// the given service type.
func (a Addon) AppliesToService(s ServiceType) bool {
	for _, svc := range a.AppliesTo {
		if svc == s {
			return true
		}
	}
	return false
}

// Catalog is the full immutable pricing configuration.
type Catalog struct {
	services   map[ServiceType]ServiceEntry
	addons     []Addon
	addonsByID map[string]Addon
}

type catalogDocument struct {
	Services map[ServiceType]ServiceEntry `yaml:"services"`
	Addons   []Addon                      `yaml:"addons"`
}

// Load parses the embedded catalog document. Called once from main.
func Load() (*Catalog, error) {
	return parse(rawCatalog)
}

func parse(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Services) == 0 {
		return nil, fmt.Errorf("catalog has no services")
	}

	byID := make(map[string]Addon, len(doc.Addons))
	for _, a := range doc.Addons {
		if a.ID == "" {
			return nil, fmt.Errorf("catalog addon without id")
		}
		if _, dup := byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate addon id %q", a.ID)
		}
		byID[a.ID] = a
	}

	for svc, entry := range doc.Services {
		for _, tier := range []PackageType{PackageStartup, PackageBusiness, PackageEnterprise} {
			offer, ok := entry.Packages[tier]
			if !ok {
				return nil, fmt.Errorf("service %s missing package %s", svc, tier)
			}
			if offer.Price <= 0 || offer.Timeline <= 0 {
				return nil, fmt.Errorf("service %s package %s has invalid price or timeline", svc, tier)
			}
		}
	}

	return &Catalog{
		services:   doc.Services,
		addons:     doc.Addons,
		addonsByID: byID,
	}, nil
}

// Offer returns the priced package offer for a service/tier pair. The lookup
// is total over the declared enums; a missing entry is a configuration error.
func (c *Catalog) Offer(service ServiceType, tier PackageType) (PackageOffer, error) {
	entry, ok := c.services[service]
	if !ok {
		return PackageOffer{}, fmt.Errorf("unknown service type %q", service)
	}
	offer, ok := entry.Packages[tier]
	if !ok {
		return PackageOffer{}, fmt.Errorf("service %s has no package %q", service, tier)
	}
	return offer, nil
}

// AddonByID looks up an add-on by its id.
func (c *Catalog) AddonByID(id string) (Addon, bool) {
	a, ok := c.addonsByID[id]
	return a, ok
}

// Addons returns all cataloged add-ons in declaration order.
func (c *Catalog) Addons() []Addon {
	out := make([]Addon, len(c.addons))
	copy(out, c.addons)
	return out
}

// AddonsFor returns the add-ons applicable to a service type, in declaration
// order.
func (c *Catalog) AddonsFor(service ServiceType) []Addon {
	var out []Addon
	for _, a := range c.addons {
		if a.AppliesToService(service) {
			out = append(out, a)
		}
	}
	return out
}

// ServiceTypes returns the cataloged service types in a stable order.
func (c *Catalog) ServiceTypes() []ServiceType {
	ordered := []ServiceType{ServiceWeb, ServiceMobile, ServiceEcommerce, ServiceCloud, ServiceAI, ServiceConsulting}
	out := make([]ServiceType, 0, len(ordered))
	for _, s := range ordered {
		if _, ok := c.services[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
