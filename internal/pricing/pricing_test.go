package pricing

import (
	"reflect"
	"testing"

	"agency_portal_backend/internal/catalog"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load() error: %v", err)
	}
	return NewEngine(c)
}

func TestCalculateBasePackage(t *testing.T) {
	e := newEngine(t)

	result, err := e.Calculate(Input{ServiceType: "WEB", PackageType: "BUSINESS", Currency: "MXN"})
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}

	if result.BasePrice != 35000 {
		t.Errorf("basePrice = %d, want 35000", result.BasePrice)
	}
	if result.AddonsPrice != 0 {
		t.Errorf("addonsPrice = %d, want 0", result.AddonsPrice)
	}
	if result.TotalPrice != 35000 {
		t.Errorf("totalPrice = %d, want 35000", result.TotalPrice)
	}
	if result.Timeline != 21 {
		t.Errorf("timeline = %d, want 21", result.Timeline)
	}
	if result.Currency != catalog.CurrencyMXN {
		t.Errorf("currency = %s, want MXN", result.Currency)
	}
	if len(result.Features) == 0 {
		t.Error("expected package features to be populated")
	}
}

func TestCalculateWithAddon(t *testing.T) {
	e := newEngine(t)

	result, err := e.Calculate(Input{
		ServiceType: "WEB",
		PackageType: "BUSINESS",
		AddonIDs:    []string{"seo-advanced"},
		Currency:    "MXN",
	})
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}

	if result.AddonsPrice != 5000 {
		t.Errorf("addonsPrice = %d, want 5000", result.AddonsPrice)
	}
	if result.TotalPrice != 40000 {
		t.Errorf("totalPrice = %d, want 40000", result.TotalPrice)
	}
	if result.Timeline != 28 {
		t.Errorf("timeline = %d, want 28", result.Timeline)
	}
	if len(result.Addons) != 1 || result.Addons[0].ID != "seo-advanced" {
		t.Fatalf("addons = %+v, want single seo-advanced entry", result.Addons)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	e := newEngine(t)
	in := Input{
		ServiceType: "ECOMMERCE",
		PackageType: "ENTERPRISE",
		AddonIDs:    []string{"seo-advanced", "multilingual", "chatbot"},
		Currency:    "MXN",
	}

	first, err := e.Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	second, err := e.Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between identical calls:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCalculateMXNTotalsAreAdditive(t *testing.T) {
	e := newEngine(t)

	cases := []Input{
		{ServiceType: "WEB", PackageType: "STARTUP", Currency: "MXN"},
		{ServiceType: "WEB", PackageType: "BUSINESS", AddonIDs: []string{"seo-advanced", "multilingual"}, Currency: "MXN"},
		{ServiceType: "MOBILE", PackageType: "ENTERPRISE", AddonIDs: []string{"push-notifications", "payment-gateway"}, Currency: "MXN"},
		{ServiceType: "AI", PackageType: "BUSINESS", AddonIDs: []string{"analytics-dashboard", "team-training", "maintenance-12m"}, Currency: "MXN"},
	}
	for _, in := range cases {
		result, err := e.Calculate(in)
		if err != nil {
			t.Fatalf("Calculate(%+v) error: %v", in, err)
		}
		if result.TotalPrice != result.BasePrice+result.AddonsPrice {
			t.Errorf("%s/%s: total %d != base %d + addons %d",
				in.ServiceType, in.PackageType, result.TotalPrice, result.BasePrice, result.AddonsPrice)
		}
		var sum int64
		for _, a := range result.Addons {
			sum += a.Price
		}
		if sum != result.AddonsPrice {
			t.Errorf("%s/%s: addon line items sum %d != addonsPrice %d",
				in.ServiceType, in.PackageType, sum, result.AddonsPrice)
		}
	}
}

func TestCalculateSkipsInapplicableAddons(t *testing.T) {
	e := newEngine(t)

	result, err := e.Calculate(Input{
		ServiceType: "MOBILE",
		PackageType: "STARTUP",
		AddonIDs:    []string{"multilingual", "seo-advanced", "push-notifications"},
		Currency:    "MXN",
	})
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}

	if len(result.Addons) != 1 || result.Addons[0].ID != "push-notifications" {
		t.Fatalf("addons = %+v, want only push-notifications", result.Addons)
	}
	if result.AddonsPrice != 6000 {
		t.Errorf("addonsPrice = %d, want 6000", result.AddonsPrice)
	}
}

func TestCalculateSkipsUnknownAddonIDs(t *testing.T) {
	e := newEngine(t)

	result, err := e.Calculate(Input{
		ServiceType: "WEB",
		PackageType: "BUSINESS",
		AddonIDs:    []string{"does-not-exist", ""},
		Currency:    "MXN",
	})
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if len(result.Addons) != 0 || result.AddonsPrice != 0 {
		t.Errorf("expected no addons applied, got %+v (addonsPrice %d)", result.Addons, result.AddonsPrice)
	}
	if result.TotalPrice != 35000 {
		t.Errorf("totalPrice = %d, want 35000", result.TotalPrice)
	}
}

func TestCalculateCustomPackage(t *testing.T) {
	e := newEngine(t)

	result, err := e.Calculate(Input{
		ServiceType: "AI",
		PackageType: "CUSTOM",
		AddonIDs:    []string{"chatbot", "analytics-dashboard"},
		Currency:    "USD",
	})
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}

	if result.BasePrice != 0 || result.AddonsPrice != 0 || result.TotalPrice != 0 {
		t.Errorf("CUSTOM should be zero-priced, got base=%d addons=%d total=%d",
			result.BasePrice, result.AddonsPrice, result.TotalPrice)
	}
	if result.Timeline != 0 {
		t.Errorf("CUSTOM timeline = %d, want 0", result.Timeline)
	}
	if len(result.Addons) != 0 {
		t.Errorf("CUSTOM should carry no addons, got %+v", result.Addons)
	}
	if len(result.Features) != 1 {
		t.Fatalf("CUSTOM should carry exactly one feature line, got %v", result.Features)
	}
	if result.ServiceType != catalog.ServiceAI {
		t.Errorf("serviceType = %s, want AI", result.ServiceType)
	}
	if result.Currency != catalog.CurrencyUSD {
		t.Errorf("currency = %s, want USD", result.Currency)
	}
}

func TestCalculateNormalizesUnknownInputs(t *testing.T) {
	e := newEngine(t)

	result, err := e.Calculate(Input{ServiceType: "blockchain", PackageType: "premium", Currency: "EUR"})
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if result.ServiceType != catalog.ServiceWeb {
		t.Errorf("serviceType = %s, want WEB fallback", result.ServiceType)
	}
	if result.PackageType != catalog.PackageStartup {
		t.Errorf("packageType = %s, want STARTUP fallback", result.PackageType)
	}
	if result.Currency != catalog.CurrencyMXN {
		t.Errorf("currency = %s, want MXN fallback", result.Currency)
	}
	if result.BasePrice != 15000 {
		t.Errorf("basePrice = %d, want 15000 (WEB/STARTUP)", result.BasePrice)
	}
}

func TestCalculateUSDConversion(t *testing.T) {
	e := newEngine(t)

	result, err := e.Calculate(Input{
		ServiceType: "WEB",
		PackageType: "BUSINESS",
		AddonIDs:    []string{"seo-advanced"},
		Currency:    "USD",
	})
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}

	if result.BasePrice != 1750 {
		t.Errorf("basePrice = %d USD, want 1750", result.BasePrice)
	}
	if result.AddonsPrice != 250 {
		t.Errorf("addonsPrice = %d USD, want 250", result.AddonsPrice)
	}
	if result.TotalPrice != 2000 {
		t.Errorf("totalPrice = %d USD, want 2000", result.TotalPrice)
	}
	if result.Timeline != 28 {
		t.Errorf("timeline = %d, want 28 (timelines are currency independent)", result.Timeline)
	}
}

func TestUSDAmountsRoundIndependently(t *testing.T) {
	// Amounts that are not multiples of the rate round on their own, so the
	// converted total is not forced to equal converted base plus converted
	// add-ons.
	if got := toUSD(1010); got != 51 {
		t.Errorf("toUSD(1010) = %d, want 51", got)
	}
	if got := toUSD(2020); got != 101 {
		t.Errorf("toUSD(2020) = %d, want 101", got)
	}
	if toUSD(1010)+toUSD(1010) == toUSD(2020) {
		t.Error("expected independent rounding to diverge for 1010+1010 vs 2020")
	}
}
