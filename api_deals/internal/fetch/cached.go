package fetch

import (
	"context"
	"time"

	"gfdeals/api_deals/internal/deals"
	"gfdeals/pkg/cache"
)

// CachedFetcher memoises non-empty results per channel and query. Empty
// results are never cached so a transient upstream failure is retried on
// the next run.
type CachedFetcher struct {
	channel string
	next    Fetcher
	cache   *cache.Cache[[]deals.Candidate]
}

func NewCachedFetcher(channel string, next Fetcher, ttl time.Duration, hooks cache.MetricsHooks) *CachedFetcher {
	return &CachedFetcher{
		channel: channel,
		next:    next,
		cache:   cache.New[[]deals.Candidate](cache.Options{TTL: ttl, MaxEntries: 1024}, hooks),
	}
}

func (f *CachedFetcher) Fetch(ctx context.Context, query string) []deals.Candidate {
	val, _, _ := f.cache.Get(ctx, f.channel+"|"+query, func(ctx context.Context, _ string) ([]deals.Candidate, bool, error) {
		out := f.next.Fetch(ctx, query)
		return out, len(out) > 0, nil
	})
	return val
}

// Len reports how many queries are currently memoised.
func (f *CachedFetcher) Len() int { return f.cache.Len() }
