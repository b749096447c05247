package fetch

import (
	"context"
	"math/rand/v2"
	"time"

	"gfdeals/api_deals/internal/deals"
)

// Fetcher runs one query against one search channel. Failures are logged by
// the implementation and yield no candidates.
type Fetcher interface {
	Fetch(ctx context.Context, query string) []deals.Candidate
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, query string) []deals.Candidate

func (f FetcherFunc) Fetch(ctx context.Context, query string) []deals.Candidate {
	return f(ctx, query)
}

// Delay waits a random duration in [Min, Max].
type Delay struct {
	Min time.Duration
	Max time.Duration

	// Sleep replaces the timer, mainly for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NoDelay never waits.
var NoDelay = Delay{}

// Wait blocks for the jittered duration or until ctx is done.
func (d Delay) Wait(ctx context.Context) error {
	dur := d.pick()
	if d.Sleep != nil {
		return d.Sleep(ctx, dur)
	}
	if dur <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d Delay) pick() time.Duration {
	if d.Max <= d.Min {
		return max(d.Min, 0)
	}
	return d.Min + rand.N(d.Max-d.Min+1)
}
