package deals

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func analyticsFixture() []Deal {
	mk := func(score int, dealType, discount, code, exp, store, brand, category string) Deal {
		d := NewDeal(candidate("Gluten free "+dealType, "", "https://example.com/"+discount), DefaultDetails())
		d.AIQualityScore = score
		d.DealType = dealType
		d.DiscountAmount = discount
		d.CouponCode = code
		d.Expiration = exp
		d.Store = store
		d.Brand = brand
		d.Category = category
		return d
	}
	return []Deal{
		mk(8, "Coupon/Promo Code", "20% off", "SAVE20", NA, "Target", "Udi's", "Food"),
		mk(6, "Sale/Discount", "$5 off", NA, "While Supplies Last", "Target", "Target", "General"),
		mk(4, "Coupon/Promo Code", "Save $3.50", "GFSAVE35", NA, "Walmart", DefaultBrand, "Food"),
		mk(3, "BOGO/Bundle", "Buy 2 Get 1 Free", NA, NA, "Kroger", "Kroger", "Frozen"),
		mk(1, NA, NA, NA, "valid through friday", "Target", "Udi's", "Food"),
	}
}

func TestAnalyze(t *testing.T) {
	a := Analyze(analyticsFixture())

	if a.TotalDeals != 5 || a.AvgQualityScore != 4.4 {
		t.Fatalf("unexpected totals %d / %v", a.TotalDeals, a.AvgQualityScore)
	}
	wantStores := []Count{{"Target", 3}, {"Kroger", 1}, {"Walmart", 1}}
	if !reflect.DeepEqual(a.Stores, wantStores) {
		t.Fatalf("expected stores %v, got %v", wantStores, a.Stores)
	}
	if a.DealTypes[0] != (Count{"Coupon/Promo Code", 2}) {
		t.Fatalf("unexpected top deal type %v", a.DealTypes[0])
	}
	if !reflect.DeepEqual(a.DiscountRanges.Percentage, []int{20}) {
		t.Fatalf("unexpected percentages %v", a.DiscountRanges.Percentage)
	}
	if !reflect.DeepEqual(a.DiscountRanges.Dollar, []float64{5, 3.5}) {
		t.Fatalf("unexpected dollars %v", a.DiscountRanges.Dollar)
	}
	if a.CodeAvailability != (CodeAvailability{HasCode: 2, NoCode: 3}) {
		t.Fatalf("unexpected code availability %+v", a.CodeAvailability)
	}
	if a.ExpirationStatus != (ExpirationStatus{HasExpiration: 2, NoExpiration: 3}) {
		t.Fatalf("unexpected expiration status %+v", a.ExpirationStatus)
	}
}

func TestAnalyzeEmptyAndNegativeScores(t *testing.T) {
	if a := Analyze(nil); a.TotalDeals != 0 || a.AvgQualityScore != 0 || a.Stores == nil {
		t.Fatalf("unexpected empty analytics %+v", a)
	}

	d := NewDeal(candidate("Gluten free", "", ""), DefaultDetails())
	d.AIQualityScore = -3
	if a := Analyze([]Deal{d}); a.AvgQualityScore != -3 {
		t.Fatalf("expected raw negative average, got %v", a.AvgQualityScore)
	}
}

func TestWriteAnalytics(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalytics(&buf, Analyze(analyticsFixture())); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Total validated deals: 5",
		"Average quality score: 4.40",
		"Target: 3 deals (60.0%)",
		"Average % discount: 20.0%",
		"Maximum $ discount: $5.00",
		"Deals with codes: 2 (40.0%)",
		"With expiration: 2 (40.0%)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, DefaultBrand+":") {
		t.Fatalf("default brand must not be listed among top brands")
	}
}
