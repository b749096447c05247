package search

import (
	"context"
	"net/http"
	"time"

	"gfdeals/pkg/clients"
)

const defaultTimeout = 30 * time.Second

// Provider defines the interface for web search providers.
type Provider interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error)
}

// AnswerProvider is implemented by providers that can return a synthesized
// answer alongside the result list.
type AnswerProvider interface {
	SearchWithAnswer(ctx context.Context, query string, opts SearchOptions) (Response, error)
}

// Result represents a single search result.
type Result struct {
	Title   string
	URL     string
	Content string
	Score   float64
}

// Response is a result list plus the provider's optional answer summary.
type Response struct {
	Answer  string
	Results []Result
}

// SearchOptions controls search behavior across providers. Providers ignore
// fields they have no equivalent for.
type SearchOptions struct {
	Limit       int
	SearchDepth string

	// Engine selects the backing engine for meta-search APIs (SerpAPI).
	Engine   string
	Country  string
	Language string
	// Freshness is a provider-native recency filter ("qdr:m" for SerpAPI,
	// "pm" for Brave).
	Freshness      string
	Days           int
	IncludeDomains []string
	IncludeAnswer  bool
}

// Option customizes a provider at construction time.
type Option func(*transport)

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(t *transport) {
		if timeout > 0 {
			t.client.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client. The client's timeout is kept.
func WithHTTPClient(client *http.Client) Option {
	return func(t *transport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithExecutor routes requests through a retrying executor.
func WithExecutor(exec *clients.HTTPExecutor) Option {
	return func(t *transport) {
		t.executor = exec
	}
}

// transport is the HTTP plumbing shared by all providers.
type transport struct {
	client   *http.Client
	executor *clients.HTTPExecutor
}

func newTransport(opts []Option) transport {
	t := transport{client: &http.Client{Timeout: defaultTimeout, Transport: clients.DefaultTransport()}}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func (t transport) do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	send := func(ctx context.Context) (*http.Response, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return t.client.Do(req)
	}
	if t.executor == nil {
		return send(ctx)
	}
	resp, err := t.executor.Do(ctx, send)
	if resp != nil {
		// Retries exhausted on a retryable status; the provider's status check reports it.
		return resp, nil
	}
	return nil, err
}
