package deals

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

const titleKeyLength = 60

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// IdentityKey is the composite dedup key: normalized title prefix, link and
// discount amount.
func IdentityKey(d Deal) string {
	title := strings.TrimSpace(lower(nonWord.ReplaceAllString(d.Title, "")))
	if r := []rune(title); len(r) > titleKeyLength {
		title = string(r[:titleKeyLength])
	}
	return title + ":" + d.Link + ":" + d.DiscountAmount
}

// Merge collapses existing and incoming deals by IdentityKey, keeping the
// higher score (ties keep the first seen, existing before incoming), and
// sorts by score then timestamp, both descending. An empty incoming batch
// returns existing untouched apart from ordering.
func Merge(existing, incoming []Deal) []Deal {
	if len(incoming) == 0 {
		out := slices.Clone(existing)
		sortDeals(out)
		return out
	}

	index := make(map[string]int, len(existing)+len(incoming))
	out := make([]Deal, 0, len(existing)+len(incoming))
	for _, batch := range [][]Deal{existing, incoming} {
		for _, d := range batch {
			key := IdentityKey(d)
			if i, seen := index[key]; seen {
				if d.AIQualityScore > out[i].AIQualityScore {
					out[i] = d
				}
				continue
			}
			index[key] = len(out)
			out = append(out, d)
		}
	}
	sortDeals(out)
	return out
}

func sortDeals(ds []Deal) {
	slices.SortStableFunc(ds, func(a, b Deal) int {
		if c := cmp.Compare(b.AIQualityScore, a.AIQualityScore); c != 0 {
			return c
		}
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
}
