package deals

import (
	"slices"
	"strings"
	"time"
)

// Store pairs a domain (or bare host label) with a display name.
type Store struct {
	Domain string `json:"domain" yaml:"domain"`
	Name   string `json:"name" yaml:"name"`
}

// Catalog holds every keyword table the pipeline consults. It is built once
// and never mutated, so one value can be shared across goroutines.
type Catalog struct {
	clock Clock

	niche         []string
	promo         []string
	trusted       []Store
	brands        []string
	invalidCodes  map[string]struct{}
	domainBrands  []Store
	domainIndex   map[string]string
	retailers     []string
	foodTerms     []string
	frozenTerms   []string
	restrictTerms []string
}

// NewCatalog builds the catalog compiled into the binary. A nil clock falls
// back to time.Now.
func NewCatalog(clock Clock) *Catalog {
	return NewCatalogFrom(DefaultCatalogData(), clock)
}

// NewCatalogFrom builds a catalog from data, e.g. a LoadCatalogData override.
func NewCatalogFrom(data CatalogData, clock Clock) *Catalog {
	if clock == nil {
		clock = time.Now
	}
	c := &Catalog{
		clock:         clock,
		niche:         slices.Clone(data.NicheKeywords),
		promo:         slices.Clone(data.PromoIndicators),
		trusted:       slices.Clone(data.TrustedStores),
		brands:        slices.Clone(data.Brands),
		invalidCodes:  make(map[string]struct{}, len(data.InvalidCodes)),
		domainBrands:  slices.Clone(data.DomainBrands),
		domainIndex:   make(map[string]string, len(data.DomainBrands)),
		retailers:     slices.Clone(data.FallbackRetailers),
		foodTerms:     slices.Clone(data.Categories.Food),
		frozenTerms:   slices.Clone(data.Categories.Frozen),
		restrictTerms: slices.Clone(data.RestrictionTerms),
	}
	for _, term := range data.InvalidCodes {
		c.invalidCodes[strings.ToUpper(term)] = struct{}{}
	}
	for _, entry := range c.domainBrands {
		if _, exists := c.domainIndex[entry.Domain]; !exists {
			c.domainIndex[entry.Domain] = entry.Name
		}
	}
	return c
}

// Now reads the catalog clock.
func (c *Catalog) Now() time.Time { return c.clock() }

// Stores returns the trusted store roster in catalog order.
func (c *Catalog) Stores() []Store { return slices.Clone(c.trusted) }

// TrustedDomains returns the trusted store domains in catalog order.
func (c *Catalog) TrustedDomains() []string {
	out := make([]string, len(c.trusted))
	for i, s := range c.trusted {
		out[i] = s.Domain
	}
	return out
}

// StoreName returns the display name of a trusted domain.
func (c *Catalog) StoreName(domain string) (string, bool) {
	for _, s := range c.trusted {
		if s.Domain == domain {
			return s.Name, true
		}
	}
	return "", false
}

// Brands returns the curated brand list in catalog order.
func (c *Catalog) Brands() []string { return slices.Clone(c.brands) }

func (c *Catalog) hasNiche(text string) bool {
	return containsAny(text, c.niche)
}

func (c *Catalog) isTrustedLink(link string) bool {
	link = lower(link)
	for _, s := range c.trusted {
		if strings.Contains(link, s.Domain) {
			return true
		}
	}
	return false
}

func (c *Catalog) isInvalidCode(code string) bool {
	_, bad := c.invalidCodes[strings.ToUpper(code)]
	return bad
}

func (c *Catalog) monthName() string {
	return lower(c.clock().Month().String())
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func lower(s string) string { return strings.ToLower(s) }
