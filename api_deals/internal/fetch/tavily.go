package fetch

import (
	"context"

	"gfdeals/api_deals/internal/deals"
	"gfdeals/pkg/logging"
	"gfdeals/pkg/search"
)

const (
	SourceTavily        = "Tavily"
	SourceTavilySummary = "Tavily AI Summary"

	minAnswerLength   = 50
	answerSnippetSize = 500
	resultSnippetSize = 600
	summaryQuerySize  = 50
)

// TavilyFetcher asks Tavily for recent results on trusted store domains and
// keeps a substantial answer summary as an extra candidate.
type TavilyFetcher struct {
	provider search.AnswerProvider
	domains  []string
	clock    deals.Clock
	logger   logging.Logger
}

func NewTavilyFetcher(provider search.AnswerProvider, cat *deals.Catalog, logger logging.Logger) *TavilyFetcher {
	return &TavilyFetcher{
		provider: provider,
		domains:  cat.TrustedDomains(),
		clock:    cat.Now,
		logger:   logger,
	}
}

func (f *TavilyFetcher) Fetch(ctx context.Context, query string) []deals.Candidate {
	resp, err := f.provider.SearchWithAnswer(ctx, query, search.SearchOptions{
		SearchDepth:    "advanced",
		IncludeAnswer:  true,
		Limit:          25,
		Days:           30,
		IncludeDomains: f.domains,
	})
	if err != nil {
		f.logger.WithFields(logging.Fields{
			"channel": "tavily",
			"query":   query,
		}).WithError(err).Warn("Search request failed")
		return nil
	}

	out := make([]deals.Candidate, 0, len(resp.Results)+1)
	if len([]rune(resp.Answer)) > minAnswerLength {
		out = append(out, deals.NewCandidate(
			"AI Summary: "+truncate(query, summaryQuerySize)+"...",
			truncate(resp.Answer, answerSnippetSize),
			deals.NA,
			SourceTavilySummary,
			f.clock(),
		))
	}
	for _, r := range resp.Results {
		out = append(out, deals.NewCandidate(r.Title, truncate(r.Content, resultSnippetSize), r.URL, SourceTavily, f.clock()))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
