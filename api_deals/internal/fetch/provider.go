package fetch

import (
	"context"

	"gfdeals/api_deals/internal/deals"
	"gfdeals/pkg/logging"
	"gfdeals/pkg/search"
)

// ProviderFetcher runs a single search call per query against any provider
// and tags the candidates with a fixed source. It backs channel B when Brave
// replaces Tavily.
type ProviderFetcher struct {
	provider search.Provider
	source   string
	opts     search.SearchOptions
	clock    deals.Clock
	logger   logging.Logger
}

func NewProviderFetcher(provider search.Provider, source string, opts search.SearchOptions, clock deals.Clock, logger logging.Logger) *ProviderFetcher {
	return &ProviderFetcher{provider: provider, source: source, opts: opts, clock: clock, logger: logger}
}

// BraveOptions mirrors the Tavily request as closely as Brave allows.
func BraveOptions() search.SearchOptions {
	return search.SearchOptions{Limit: 20, Country: "us", Language: "en", Freshness: "pm"}
}

func (f *ProviderFetcher) Fetch(ctx context.Context, query string) []deals.Candidate {
	results, err := f.provider.Search(ctx, query, f.opts)
	if err != nil {
		f.logger.WithFields(logging.Fields{
			"channel": f.source,
			"query":   query,
		}).WithError(err).Warn("Search request failed")
		return nil
	}
	out := make([]deals.Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, deals.NewCandidate(r.Title, truncate(r.Content, resultSnippetSize), r.URL, f.source, f.clock()))
	}
	return out
}
