package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBraveSearch(t *testing.T) {
	t.Parallel()

	errCh := make(chan error, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "brave-key" {
			errCh <- fmt.Errorf("missing brave api key")
			return
		}
		q := r.URL.Query()
		if got := q.Get("q"); got != "gluten free coupons" {
			errCh <- fmt.Errorf("expected query, got %q", got)
			return
		}
		if got := q.Get("count"); got != "20" {
			errCh <- fmt.Errorf("expected count capped at 20, got %q", got)
			return
		}
		if q.Get("freshness") != "pm" || q.Get("country") != "us" {
			errCh <- fmt.Errorf("unexpected filters %v", q)
			return
		}
		_, _ = fmt.Fprint(w, `{"web":{"results":[{"title":"Brave Result","url":"https://kroger.com/gf","description":"gluten free sale","extra_snippets":["use code SAVE10"]}]}}`)
	}))
	defer server.Close()

	provider, err := NewBraveProvider("brave-key", server.URL)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	results, err := provider.Search(context.Background(), "gluten free coupons", SearchOptions{Limit: 25, Country: "us", Freshness: "pm"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	select {
	case err := <-errCh:
		t.Fatalf("handler error: %v", err)
	default:
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Content != "gluten free sale use code SAVE10" {
		t.Fatalf("expected extra snippets appended, got %q", results[0].Content)
	}
}

func TestBraveResponseDecodesWithoutExtraSnippets(t *testing.T) {
	t.Parallel()

	var resp braveResponse
	if err := json.Unmarshal([]byte(`{"web":{"results":[{"title":"t","url":"u","description":"d"}]}}`), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Web.Results) != 1 || resp.Web.Results[0].ExtraSnippets != nil {
		t.Fatalf("unexpected decode %+v", resp.Web.Results)
	}
}
