package sink

import (
	"time"

	"gfdeals/api_deals/internal/deals"
)

var testNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func sampleDeals() []deals.Deal {
	a := deals.NewDeal(deals.NewCandidate("Udi's gluten free bread 20% off", "Use code SAVE20 & save", "https://target.com/a", "Tavily", testNow), deals.DefaultDetails())
	a.DiscountAmount = "20% off"
	a.CouponCode = "SAVE20"
	a.AIQualityScore = 8
	a.Store, a.Brand, a.Category = "Target", "Udi's", "Food"

	b := deals.NewDeal(deals.NewCandidate("Gluten free pasta sale", "clearance", "https://walmart.com/b", "SerpAPI (google)", testNow), deals.DefaultDetails())
	b.AIQualityScore = 4
	b.Store, b.Brand = "Walmart", "Walmart"
	b.Diagnostics = []string{"coupon_code: pattern matched but rendered an empty value"}
	return []deals.Deal{a, b}
}
