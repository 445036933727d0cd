package catalog

import "testing"

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := len(c.ServiceTypes()); got != 6 {
		t.Fatalf("expected 6 service types, got %d", got)
	}

	for _, svc := range c.ServiceTypes() {
		for _, tier := range []PackageType{PackageStartup, PackageBusiness, PackageEnterprise} {
			offer, err := c.Offer(svc, tier)
			if err != nil {
				t.Fatalf("Offer(%s, %s) error: %v", svc, tier, err)
			}
			if offer.Price <= 0 {
				t.Errorf("Offer(%s, %s) has non-positive price %d", svc, tier, offer.Price)
			}
			if offer.Timeline <= 0 {
				t.Errorf("Offer(%s, %s) has non-positive timeline %d", svc, tier, offer.Timeline)
			}
			if len(offer.Features) == 0 {
				t.Errorf("Offer(%s, %s) has no features", svc, tier)
			}
		}
	}
}

func TestOfferKnownPrices(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	offer, err := c.Offer(ServiceWeb, PackageBusiness)
	if err != nil {
		t.Fatalf("Offer(WEB, BUSINESS) error: %v", err)
	}
	if offer.Price != 35000 {
		t.Errorf("WEB/BUSINESS price = %d, want 35000", offer.Price)
	}
	if offer.Timeline != 21 {
		t.Errorf("WEB/BUSINESS timeline = %d, want 21", offer.Timeline)
	}
}

func TestOfferUnknownTier(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := c.Offer(ServiceWeb, PackageCustom); err == nil {
		t.Fatal("expected error for CUSTOM tier lookup, got nil")
	}
}

func TestAddonApplicability(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	seo, ok := c.AddonByID("seo-advanced")
	if !ok {
		t.Fatal("addon seo-advanced missing from catalog")
	}
	if seo.Price != 5000 || seo.Timeline != 7 {
		t.Errorf("seo-advanced = %d MXN / %d days, want 5000 / 7", seo.Price, seo.Timeline)
	}
	if !seo.AppliesToService(ServiceWeb) {
		t.Error("seo-advanced should apply to WEB")
	}
	if seo.AppliesToService(ServiceMobile) {
		t.Error("seo-advanced should not apply to MOBILE")
	}

	multilingual, ok := c.AddonByID("multilingual")
	if !ok {
		t.Fatal("addon multilingual missing from catalog")
	}
	if multilingual.AppliesToService(ServiceMobile) {
		t.Error("multilingual should not apply to MOBILE")
	}

	for _, svc := range c.ServiceTypes() {
		for _, a := range c.AddonsFor(svc) {
			if !a.AppliesToService(svc) {
				t.Errorf("AddonsFor(%s) returned inapplicable addon %s", svc, a.ID)
			}
		}
	}
}

func TestNormalizeServiceType(t *testing.T) {
	cases := []struct {
		in   string
		want ServiceType
	}{
		{"WEB", ServiceWeb},
		{"web", ServiceWeb},
		{" Mobile ", ServiceMobile},
		{"movil", ServiceMobile},
		{"e-commerce", ServiceEcommerce},
		{"ia", ServiceAI},
		{"nube", ServiceCloud},
		{"consultoria", ServiceConsulting},
		{"blockchain", ServiceWeb},
		{"", ServiceWeb},
	}
	for _, tc := range cases {
		if got := NormalizeServiceType(tc.in); got != tc.want {
			t.Errorf("NormalizeServiceType(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePackageType(t *testing.T) {
	cases := []struct {
		in   string
		want PackageType
	}{
		{"STARTUP", PackageStartup},
		{"business", PackageBusiness},
		{" enterprise ", PackageEnterprise},
		{"CUSTOM", PackageCustom},
		{"premium", PackageStartup},
		{"", PackageStartup},
	}
	for _, tc := range cases {
		if got := NormalizePackageType(tc.in); got != tc.want {
			t.Errorf("NormalizePackageType(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsIncompleteCatalog(t *testing.T) {
	doc := []byte(`
services:
  WEB:
    packages:
      STARTUP:
        price: 1000
        timeline: 5
        features: ["a"]
`)
	if _, err := parse(doc); err == nil {
		t.Fatal("expected error for service missing tiers, got nil")
	}
}

func TestParseRejectsDuplicateAddonIDs(t *testing.T) {
	doc := []byte(`
services:
  WEB:
    packages:
      STARTUP: {price: 1, timeline: 1, features: ["a"]}
      BUSINESS: {price: 2, timeline: 2, features: ["b"]}
      ENTERPRISE: {price: 3, timeline: 3, features: ["c"]}
addons:
  - {id: x, name: X, price: 1, timeline: 1, applies_to: [WEB]}
  - {id: x, name: X2, price: 2, timeline: 2, applies_to: [WEB]}
`)
	if _, err := parse(doc); err == nil {
		t.Fatal("expected error for duplicate addon ids, got nil")
	}
}
