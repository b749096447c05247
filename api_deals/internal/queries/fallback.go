package queries

import (
	"time"

	"gfdeals/api_deals/internal/deals"
)

var fallbackStores = []string{
	"target.com", "walmart.com", "kroger.com", "costco.com", "amazon.com",
	"publix.com", "safeway.com", "thrivemarket.com", "vitacost.com",
}

const fallbackBrandCount = 15

var fallbackDealTypes = []string{"coupons", "deals", "promo codes", "sales", "discounts", "BOGO offers"}

// FallbackSet builds two queries for each top store and each of the first
// fifteen brands. Deal type and time indicator rotate by position so the
// same clock yields the same set.
func FallbackSet(cat *deals.Catalog, now time.Time) Set {
	times := []string{now.Format("January 2006"), now.Format("2006"), "today", "current", "active"}

	var all []string
	i := 0
	for _, domain := range fallbackStores {
		name, ok := cat.StoreName(domain)
		if !ok {
			continue
		}
		dealType, when := fallbackDealTypes[i%len(fallbackDealTypes)], times[i%len(times)]
		all = append(all,
			name+" gluten free "+dealType+" "+when,
			"gluten free "+dealType+" at "+name+" "+when,
		)
		i++
	}
	brands := cat.Brands()
	for _, brand := range brands[:min(fallbackBrandCount, len(brands))] {
		dealType, when := fallbackDealTypes[i%len(fallbackDealTypes)], times[i%len(times)]
		all = append(all,
			brand+" gluten free "+dealType+" "+when,
			brand+" "+dealType+" gluten free products "+when,
		)
		i++
	}

	set := split(all, 0)
	set.Fallback = true
	return set
}
