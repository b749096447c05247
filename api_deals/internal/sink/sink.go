package sink

import (
	"context"

	"gfdeals/api_deals/internal/deals"
)

// Result reports how a Persist call changed the store.
type Result struct {
	Deleted  int `json:"deleted"`
	Inserted int `json:"inserted"`
}

// Sink loads and fully replaces the persisted deal collection.
type Sink interface {
	Load(ctx context.Context) ([]deals.Deal, error)
	Persist(ctx context.Context, ds []deals.Deal) (Result, error)
}

type keyedDeal struct {
	hash string
	deal deals.Deal
}

// byContentHash keys ds by content hash. Deals that share a hash with an
// earlier (higher ranked) deal are dropped.
func byContentHash(ds []deals.Deal) []keyedDeal {
	seen := make(map[string]struct{}, len(ds))
	out := make([]keyedDeal, 0, len(ds))
	for _, d := range ds {
		h := d.ContentHash()
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, keyedDeal{hash: h, deal: d})
	}
	return out
}
