package queries

import (
	"math"
	"strings"

	"gfdeals/api_deals/internal/deals"
)

const coverageSample = 10

// CoverageReport tells how many trusted stores and curated brands a query set
// mentions.
type CoverageReport struct {
	TotalQueries     int      `json:"total_queries" yaml:"total_queries"`
	StoresCovered    int      `json:"stores_covered" yaml:"stores_covered"`
	TotalStores      int      `json:"total_stores" yaml:"total_stores"`
	BrandsCovered    int      `json:"brands_covered" yaml:"brands_covered"`
	TotalBrands      int      `json:"total_brands" yaml:"total_brands"`
	StoreCoveragePct float64  `json:"store_coverage_pct" yaml:"store_coverage_pct"`
	BrandCoveragePct float64  `json:"brand_coverage_pct" yaml:"brand_coverage_pct"`
	CoveredStores    []string `json:"covered_stores" yaml:"covered_stores"`
	CoveredBrands    []string `json:"covered_brands" yaml:"covered_brands"`
}

// Coverage measures set against the catalog. Covered lists are capped at
// the first ten names.
func Coverage(cat *deals.Catalog, set Set) CoverageReport {
	text := strings.ToLower(strings.Join(append(append([]string{}, set.SerpAPI...), set.Tavily...), " "))

	var stores []string
	for _, s := range cat.Stores() {
		variants := []string{strings.ToLower(s.Name), strings.TrimSuffix(s.Domain, ".com"), s.Domain}
		for _, v := range variants {
			if strings.Contains(text, v) {
				stores = append(stores, s.Name)
				break
			}
		}
	}
	var brands []string
	for _, b := range cat.Brands() {
		if strings.Contains(text, strings.ToLower(b)) {
			brands = append(brands, b)
		}
	}

	totalStores, totalBrands := len(cat.Stores()), len(cat.Brands())
	return CoverageReport{
		TotalQueries:     set.Len(),
		StoresCovered:    len(stores),
		TotalStores:      totalStores,
		BrandsCovered:    len(brands),
		TotalBrands:      totalBrands,
		StoreCoveragePct: percent(len(stores), totalStores),
		BrandCoveragePct: percent(len(brands), totalBrands),
		CoveredStores:    head(stores, coverageSample),
		CoveredBrands:    head(brands, coverageSample),
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

func head(s []string, n int) []string {
	if s == nil {
		return []string{}
	}
	return s[:min(n, len(s))]
}
