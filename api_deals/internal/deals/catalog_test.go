package deals

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultCatalogData(t *testing.T) {
	data := DefaultCatalogData()
	if len(data.NicheKeywords) != 9 || len(data.PromoIndicators) != 32 {
		t.Fatalf("unexpected keyword table sizes: %d niche, %d promo", len(data.NicheKeywords), len(data.PromoIndicators))
	}
	if len(data.DomainBrands) != 103 || data.DomainBrands[0] != (Store{Domain: "costco.com", Name: "Costco"}) {
		t.Fatalf("unexpected domain table head %+v", data.DomainBrands[:1])
	}
	if data.PromoIndicators[4] != "off" || data.PromoIndicators[16] != "$off" {
		t.Fatalf("quoted indicators decoded wrong: %q %q", data.PromoIndicators[4], data.PromoIndicators[16])
	}
	if got := data.Categories.Frozen; len(got) != 3 || got[1] != "ice cream" {
		t.Fatalf("unexpected frozen terms %v", got)
	}
}

func TestParseCatalogDataRejectsIncompleteTables(t *testing.T) {
	_, err := ParseCatalogData([]byte("niche_keywords: [gf]\ntrusted_stores:\n  - {domain: target.com}\n"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"promo_indicators is empty", "store entry 0"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}

	if _, err := ParseCatalogData([]byte("niche_keywords: [unclosed")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadCatalogDataOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	override := `
niche_keywords: [celiac]
promo_indicators: [coupon]
trusted_stores:
  - {domain: wegmans.com, name: Wegmans}
brands: [Schar]
invalid_codes: [coupon]
domain_brands:
  - {domain: wegmans.com, name: Wegmans}
`
	if err := os.WriteFile(path, []byte(override), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := LoadCatalogData(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cat := NewCatalogFrom(data, func() time.Time { return testNow })

	f := NewFilter(cat)
	if f.IsRealDeal(NewCandidate("Gluten free coupon", "", "https://wegmans.com/x", "test", testNow)) {
		t.Fatalf("override replaces the niche table")
	}
	if !f.IsRealDeal(NewCandidate("Celiac coupon", "", "https://wegmans.com/x", "test", testNow)) {
		t.Fatalf("expected override keywords to apply")
	}
	if !cat.isInvalidCode("COUPON") {
		t.Fatalf("invalid codes are matched upper-cased")
	}
	d := NewEnricher(cat).Enrich(NewDeal(NewCandidate("Celiac coupon", "", "https://www.wegmans.com/x", "test", testNow), DefaultDetails()))
	if d.Store != "Wegmans" {
		t.Fatalf("expected override store, got %q", d.Store)
	}

	if _, err := LoadCatalogData(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
