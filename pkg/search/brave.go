package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultBraveURL = "https://api.search.brave.com/res/v1/web/search"

// BraveProvider implements the Brave Search API.
type BraveProvider struct {
	apiKey string
	apiURL string
	http   transport
}

// NewBraveProvider creates a Brave search provider.
func NewBraveProvider(apiKey, apiURL string, opts ...Option) (*BraveProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("brave api key is required")
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultBraveURL
	}
	return &BraveProvider{
		apiKey: apiKey,
		apiURL: apiURL,
		http:   newTransport(opts),
	}, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title         string   `json:"title"`
			URL           string   `json:"url"`
			Description   string   `json:"description"`
			ExtraSnippets []string `json:"extra_snippets"`
		} `json:"results"`
	} `json:"web"`
}

// Search executes a query against the Brave Search API. Extra snippets are
// appended to the description so promo codes buried below the fold survive.
func (p *BraveProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	endpoint, err := url.Parse(p.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse brave url: %w", err)
	}
	q := endpoint.Query()
	q.Set("q", query)
	q.Set("extra_snippets", "true")
	if opts.Limit > 0 {
		// Brave caps count at 20.
		q.Set("count", strconv.Itoa(min(opts.Limit, 20)))
	}
	if opts.Country != "" {
		q.Set("country", opts.Country)
	}
	if opts.Language != "" {
		q.Set("search_lang", opts.Language)
	}
	if opts.Freshness != "" {
		q.Set("freshness", opts.Freshness)
	}
	endpoint.RawQuery = q.Encode()

	resp, err := p.http.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("create brave request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", p.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("brave request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("brave request failed with status %d", resp.StatusCode)
	}

	var decoded braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode brave response: %w", err)
	}

	results := make([]Result, 0, len(decoded.Web.Results))
	for _, item := range decoded.Web.Results {
		content := item.Description
		if len(item.ExtraSnippets) > 0 {
			content += " " + strings.Join(item.ExtraSnippets, " ")
		}
		results = append(results, Result{
			Title:   PlainText(item.Title),
			URL:     item.URL,
			Content: PlainText(content),
		})
	}

	return results, nil
}
