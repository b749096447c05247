package deals

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Count is one bucket of a frequency table.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DiscountRanges struct {
	Percentage []int     `json:"percentage"`
	Dollar     []float64 `json:"dollar"`
}

type ExpirationStatus struct {
	HasExpiration int `json:"has_expiration"`
	NoExpiration  int `json:"no_expiration"`
}

type CodeAvailability struct {
	HasCode int `json:"has_code"`
	NoCode  int `json:"no_code"`
}

// Analytics summarizes a deal list.
type Analytics struct {
	TotalDeals       int              `json:"total_deals"`
	AvgQualityScore  float64          `json:"avg_quality_score"`
	DealTypes        []Count          `json:"deal_types"`
	Stores           []Count          `json:"stores"`
	Brands           []Count          `json:"brands"`
	Categories       []Count          `json:"categories"`
	DiscountRanges   DiscountRanges   `json:"discount_ranges"`
	ExpirationStatus ExpirationStatus `json:"expiration_status"`
	CodeAvailability CodeAvailability `json:"code_availability"`
}

var (
	firstNumber  = regexp.MustCompile(`(\d+)`)
	dollarAmount = regexp.MustCompile(`\$(\d+(?:\.\d{2})?)`)
)

// Analyze averages raw scores; negative values are not clamped.
func Analyze(ds []Deal) Analytics {
	a := Analytics{
		DealTypes:      []Count{},
		Stores:         []Count{},
		Brands:         []Count{},
		Categories:     []Count{},
		DiscountRanges: DiscountRanges{Percentage: []int{}, Dollar: []float64{}},
	}
	if len(ds) == 0 {
		return a
	}

	dealTypes := map[string]int{}
	stores := map[string]int{}
	brands := map[string]int{}
	categories := map[string]int{}
	total := 0
	for _, d := range ds {
		total += d.AIQualityScore
		dealTypes[orNA(d.DealType)]++
		stores[orNA(d.Store)]++
		brands[orNA(d.Brand)]++
		categories[orNA(d.Category)]++

		discount := orNA(d.DiscountAmount)
		switch {
		case discount == NA:
		case strings.Contains(discount, "%"):
			if m := firstNumber.FindStringSubmatch(discount); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					a.DiscountRanges.Percentage = append(a.DiscountRanges.Percentage, n)
				}
			}
		case strings.Contains(discount, "$"):
			if m := dollarAmount.FindStringSubmatch(discount); m != nil {
				if f, err := strconv.ParseFloat(m[1], 64); err == nil {
					a.DiscountRanges.Dollar = append(a.DiscountRanges.Dollar, f)
				}
			}
		}

		if orNA(d.Expiration) != NA {
			a.ExpirationStatus.HasExpiration++
		} else {
			a.ExpirationStatus.NoExpiration++
		}
		if orNA(d.CouponCode) != NA {
			a.CodeAvailability.HasCode++
		} else {
			a.CodeAvailability.NoCode++
		}
	}

	a.TotalDeals = len(ds)
	a.AvgQualityScore = math.Round(float64(total)/float64(len(ds))*100) / 100
	a.DealTypes = sortedCounts(dealTypes)
	a.Stores = sortedCounts(stores)
	a.Brands = sortedCounts(brands)
	a.Categories = sortedCounts(categories)
	return a
}

func orNA(s string) string {
	if s == "" {
		return NA
	}
	return s
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
