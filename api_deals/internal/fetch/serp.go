package fetch

import (
	"context"
	"fmt"

	"gfdeals/api_deals/internal/deals"
	"gfdeals/pkg/logging"
	"gfdeals/pkg/search"
)

// DefaultEngines are walked in order for every SerpAPI query.
var DefaultEngines = []string{"google", "bing", "duckduckgo"}

// SerpFetcher queries several SerpAPI engines per query and drops links that
// an earlier engine already returned.
type SerpFetcher struct {
	provider search.Provider
	engines  []string
	delay    Delay
	clock    deals.Clock
	logger   logging.Logger
}

// NewSerpFetcher builds a fetcher over provider. delay is waited between
// engines.
func NewSerpFetcher(provider search.Provider, delay Delay, clock deals.Clock, logger logging.Logger) *SerpFetcher {
	return &SerpFetcher{
		provider: provider,
		engines:  DefaultEngines,
		delay:    delay,
		clock:    clock,
		logger:   logger,
	}
}

func (f *SerpFetcher) Fetch(ctx context.Context, query string) []deals.Candidate {
	var out []deals.Candidate
	seen := make(map[string]struct{})

	for i, engine := range f.engines {
		if i > 0 {
			if err := f.delay.Wait(ctx); err != nil {
				return out
			}
		}
		results, err := f.provider.Search(ctx, query, search.SearchOptions{
			Engine:    engine,
			Limit:     20,
			Country:   "us",
			Language:  "en",
			Freshness: "qdr:m",
		})
		if err != nil {
			f.logger.WithFields(logging.Fields{
				"channel": "serpapi",
				"engine":  engine,
				"query":   query,
			}).WithError(err).Warn("Search request failed")
			continue
		}

		added := 0
		source := fmt.Sprintf("SerpAPI (%s)", engine)
		for _, r := range results {
			if r.URL == "" {
				continue
			}
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
			out = append(out, deals.NewCandidate(r.Title, r.Content, r.URL, source, f.clock()))
			added++
		}
		f.logger.WithFields(logging.Fields{
			"engine":  engine,
			"query":   query,
			"results": added,
		}).Debug("SerpAPI engine done")
	}
	return out
}
