package deals

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// CatalogData is the YAML form of a Catalog.
type CatalogData struct {
	NicheKeywords     []string `yaml:"niche_keywords"`
	PromoIndicators   []string `yaml:"promo_indicators"`
	TrustedStores     []Store  `yaml:"trusted_stores"`
	Brands            []string `yaml:"brands"`
	InvalidCodes      []string `yaml:"invalid_codes"`
	DomainBrands      []Store  `yaml:"domain_brands"`
	FallbackRetailers []string `yaml:"fallback_retailers"`
	Categories        struct {
		Food   []string `yaml:"food"`
		Frozen []string `yaml:"frozen"`
	} `yaml:"categories"`
	RestrictionTerms []string `yaml:"restriction_terms"`
}

var defaultCatalogData = sync.OnceValues(func() (CatalogData, error) {
	return ParseCatalogData(embeddedCatalog)
})

// DefaultCatalogData returns the tables compiled into the binary.
func DefaultCatalogData() CatalogData {
	data, err := defaultCatalogData()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return data
}

// ParseCatalogData decodes and checks a YAML catalog.
func ParseCatalogData(raw []byte) (CatalogData, error) {
	var data CatalogData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return CatalogData{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := data.validate(); err != nil {
		return CatalogData{}, err
	}
	return data, nil
}

// LoadCatalogData reads a catalog override from path.
func LoadCatalogData(path string) (CatalogData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CatalogData{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalogData(raw)
}

func (d CatalogData) validate() error {
	var errs []error
	if len(d.NicheKeywords) == 0 {
		errs = append(errs, errors.New("niche_keywords is empty"))
	}
	if len(d.PromoIndicators) == 0 {
		errs = append(errs, errors.New("promo_indicators is empty"))
	}
	if len(d.TrustedStores) == 0 {
		errs = append(errs, errors.New("trusted_stores is empty"))
	}
	for i, s := range slices.Concat(d.TrustedStores, d.DomainBrands) {
		if s.Domain == "" || s.Name == "" {
			errs = append(errs, fmt.Errorf("store entry %d needs both domain and name", i))
		}
	}
	return errors.Join(errs...)
}
