package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultSerpAPIURL = "https://serpapi.com/search"

// ErrRateLimited is returned when SerpAPI still answers 429 after retries.
var ErrRateLimited = errors.New("serpapi rate limited")

// SerpAPIProvider implements the SerpAPI meta-search API. One call hits one
// engine; callers pick it through SearchOptions.Engine (google by default).
type SerpAPIProvider struct {
	apiKey string
	apiURL string
	http   transport
}

// NewSerpAPIProvider creates a SerpAPI search provider.
func NewSerpAPIProvider(apiKey, apiURL string, opts ...Option) (*SerpAPIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("serpapi api key is required")
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultSerpAPIURL
	}
	return &SerpAPIProvider{
		apiKey: apiKey,
		apiURL: apiURL,
		http:   newTransport(opts),
	}, nil
}

type serpAPIResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
}

// Search executes a query against SerpAPI.
func (p *SerpAPIProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	endpoint, err := url.Parse(p.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse serpapi url: %w", err)
	}
	engine := opts.Engine
	if engine == "" {
		engine = "google"
	}
	q := endpoint.Query()
	q.Set("engine", engine)
	q.Set("q", query)
	q.Set("api_key", p.apiKey)
	q.Set("safe", "off")
	if opts.Limit > 0 {
		q.Set("num", strconv.Itoa(opts.Limit))
	}
	if opts.Country != "" {
		q.Set("gl", opts.Country)
	}
	if opts.Language != "" {
		q.Set("hl", opts.Language)
	}
	if opts.Freshness != "" {
		q.Set("tbs", opts.Freshness)
	}
	endpoint.RawQuery = q.Encode()

	resp, err := p.http.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("create serpapi request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w on engine %s", ErrRateLimited, engine)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("serpapi request failed with status %d", resp.StatusCode)
	}

	var decoded serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("serpapi error on engine %s: %s", engine, decoded.Error)
	}

	results := make([]Result, 0, len(decoded.OrganicResults))
	for _, item := range decoded.OrganicResults {
		results = append(results, Result{
			Title:   PlainText(item.Title),
			URL:     item.Link,
			Content: PlainText(item.Snippet),
		})
	}
	return results, nil
}
