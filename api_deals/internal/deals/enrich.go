package deals

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Enricher fills store, brand and category.
type Enricher struct {
	cat *Catalog
}

func NewEnricher(cat *Catalog) *Enricher {
	return &Enricher{cat: cat}
}

// Enrich never drops a deal; anything it cannot resolve keeps the defaults.
func (e *Enricher) Enrich(d Deal) Deal {
	text := d.Candidate.text()

	store, err := e.resolveStore(d.Link, text)
	if err != nil {
		d.Diagnostics = append(d.Diagnostics, fmt.Sprintf("store: %v", err))
	}
	d.Store = store

	if d.Brand == "" || d.Brand == DefaultBrand {
		brand := DefaultBrand
		if store != DefaultStore {
			brand = store
		}
		for _, b := range e.cat.brands {
			if strings.Contains(text, lower(b)) {
				brand = b
				break
			}
		}
		d.Brand = brand
	}

	switch {
	case containsAny(text, e.cat.foodTerms):
		d.Category = "Food"
	case containsAny(text, e.cat.frozenTerms):
		d.Category = "Frozen"
	default:
		d.Category = DefaultCategory
	}
	return d
}

// EnrichAll enriches every deal in order.
func (e *Enricher) EnrichAll(in []Deal) []Deal {
	out := make([]Deal, len(in))
	for i, d := range in {
		out[i] = e.Enrich(d)
	}
	return out
}

func (e *Enricher) resolveStore(link, text string) (string, error) {
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return DefaultStore, nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return DefaultStore, err
	}
	host := strings.ReplaceAll(lower(u.Host), "www.", "")

	if name, ok := e.cat.domainIndex[host]; ok {
		return name, nil
	}
	label, _, _ := strings.Cut(host, ".")
	if name, ok := e.cat.domainIndex[label]; ok {
		return name, nil
	}
	lowerLink := lower(link)
	for _, entry := range e.cat.domainBrands {
		if strings.Contains(host, entry.Domain) || strings.Contains(lowerLink, entry.Domain) {
			return entry.Name, nil
		}
	}
	for _, retailer := range e.cat.retailers {
		if strings.Contains(text, retailer) {
			return cases.Title(language.English).String(retailer), nil
		}
	}
	return DefaultStore, nil
}
