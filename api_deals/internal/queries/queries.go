package queries

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gfdeals/api_deals/internal/deals"
	"gfdeals/pkg/llm"
	"gfdeals/pkg/logging"
)

// DefaultMaxPerChannel caps how many queries each search channel receives.
const DefaultMaxPerChannel = 50

const (
	minLineLength   = 10
	minQueryLength  = 15
	generateTimeout = 90 * time.Second
)

// Set partitions search strings across the two channels.
type Set struct {
	SerpAPI []string `json:"serpapi" yaml:"serpapi"`
	Tavily  []string `json:"tavily" yaml:"tavily"`

	// Fallback is true when the deterministic set replaced model output.
	Fallback bool `json:"fallback" yaml:"fallback"`
}

// Len returns the total number of queries.
func (s Set) Len() int { return len(s.SerpAPI) + len(s.Tavily) }

// Source produces the query set for one run.
type Source interface {
	Generate(ctx context.Context) (Set, error)
}

// LLMSource asks a chat model for store and brand queries and falls back to
// FallbackSet when the model fails or leaves a channel empty.
type LLMSource struct {
	provider      llm.Provider
	catalog       *deals.Catalog
	maxPerChannel int
	logger        logging.Logger
}

// NewLLMSource creates a query source. maxPerChannel <= 0 uses DefaultMaxPerChannel.
func NewLLMSource(provider llm.Provider, cat *deals.Catalog, maxPerChannel int, logger logging.Logger) *LLMSource {
	if maxPerChannel <= 0 {
		maxPerChannel = DefaultMaxPerChannel
	}
	return &LLMSource{provider: provider, catalog: cat, maxPerChannel: maxPerChannel, logger: logger}
}

// Generate returns the query set. Model failures never surface as errors;
// only a cancelled context does.
func (s *LLMSource) Generate(ctx context.Context) (Set, error) {
	if err := ctx.Err(); err != nil {
		return Set{}, err
	}
	if s.provider == nil {
		return FallbackSet(s.catalog, s.catalog.Now()), nil
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	raw, err := llm.Collect(genCtx, s.provider, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(s.catalog, s.catalog.Now())},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Set{}, ctxErr
		}
		s.warn(err, "query generation failed, using fallback queries")
		return FallbackSet(s.catalog, s.catalog.Now()), nil
	}

	set := split(CleanLines(raw), s.maxPerChannel)
	if len(set.SerpAPI) == 0 || len(set.Tavily) == 0 {
		s.warn(nil, "query generation left a channel empty, using fallback queries")
		return FallbackSet(s.catalog, s.catalog.Now()), nil
	}
	if s.logger != nil {
		s.logger.WithFields(logging.Fields{
			"serpapi_queries": len(set.SerpAPI),
			"tavily_queries":  len(set.Tavily),
		}).Info("Generated search queries")
	}
	return set, nil
}

func (s *LLMSource) warn(err error, msg string) {
	if s.logger == nil {
		return
	}
	entry := s.logger.WithField("component", "queries")
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(msg)
}

var listMarker = regexp.MustCompile(`^(\d+\.|\d+\)|•|-)`)

// CleanLines turns raw model output into search strings: one per line,
// bullets trimmed, numbered or short lines dropped.
func CleanLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) <= minLineLength {
			continue
		}
		line = strings.Trim(line, "•- ")
		if listMarker.MatchString(line) || utf8.RuneCountInString(line) <= minQueryLength {
			continue
		}
		out = append(out, line)
	}
	return out
}

// split halves qs, the first half going to SerpAPI, and caps each channel.
func split(qs []string, limit int) Set {
	mid := len(qs) / 2
	serp, tavily := qs[:mid], qs[mid:]
	if limit > 0 {
		serp = serp[:min(len(serp), limit)]
		tavily = tavily[:min(len(tavily), limit)]
	}
	return Set{SerpAPI: serp, Tavily: tavily}
}

const systemPrompt = "You are a comprehensive search query expert specializing in gluten-free deals across all major stores and brands."

func buildPrompt(cat *deals.Catalog, now time.Time) string {
	stores := cat.TrustedDomains()
	brands := cat.Brands()
	monthYear := now.Format("January 2006")
	year := now.Format("2006")

	var b strings.Builder
	fmt.Fprintf(&b, "You are a gluten-free deal researcher building a complete database. Generate search queries to find current gluten-free deals, coupons, promo codes, sales and discounts.\n\n")
	fmt.Fprintf(&b, "Requirements:\n")
	fmt.Fprintf(&b, "- Generate exactly 2 queries for EACH store: %s... (total %d stores)\n", strings.Join(stores[:min(10, len(stores))], ", "), len(stores))
	fmt.Fprintf(&b, "- Generate exactly 2 queries for EACH brand: %s... (total %d brands)\n", strings.Join(brands[:min(10, len(brands))], ", "), len(brands))
	fmt.Fprintf(&b, "- Focus only on gluten-free products and deals\n")
	fmt.Fprintf(&b, "- Mix deal types: coupons, promo codes, sales, discounts, BOGO, rebates\n")
	fmt.Fprintf(&b, "- Use current time indicators: %s, %s, today, current, active\n\n", monthYear, year)
	fmt.Fprintf(&b, "Store patterns:\n  \"[store] gluten free [deal type] [time]\"\n  \"gluten free [deal type] at [store] [time]\"\n")
	fmt.Fprintf(&b, "Brand patterns:\n  \"[brand] gluten free [deal type] [time]\"\n  \"[brand] [deal type] gluten free products [time]\"\n\n")
	fmt.Fprintf(&b, "Output rules: one query per line, no numbering, bullets or formatting, no site: operators. Every query must include \"gluten free\" or \"gluten-free\".\n")
	fmt.Fprintf(&b, "Generate all store queries first, then all brand queries. Total expected: %d queries.\n\n", 2*len(stores)+2*len(brands))
	fmt.Fprintf(&b, "Current date: %s\n", monthYear)
	return b.String()
}
