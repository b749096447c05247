package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIProviderCollect(t *testing.T) {
	t.Parallel()

	errCh := make(chan error, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			errCh <- fmt.Errorf("expected auth header")
			return
		}
		if r.URL.Path != "/chat/completions" {
			errCh <- fmt.Errorf("unexpected path %s", r.URL.Path)
			return
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errCh <- fmt.Errorf("decode request: %w", err)
			return
		}
		if !req.Stream || req.MaxTokens != 2000 || req.Temperature != 0.7 || req.TopP != 0.9 {
			errCh <- fmt.Errorf("unexpected sampling params %+v", req)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Target gluten free coupons\\n\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Udi's promo codes\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	provider := NewOpenAIProvider(Config{
		APIURL:      server.URL,
		APIKey:      "test-key",
		Model:       "gpt-test",
		MaxTokens:   2000,
		Temperature: 0.7,
		TopP:        0.9,
	})

	content, err := Collect(context.Background(), provider, []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	select {
	case err := <-errCh:
		t.Fatalf("handler error: %v", err)
	default:
	}
	if content != "Target gluten free coupons\nUdi's promo codes" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestOpenAIProviderStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(Config{APIURL: server.URL, Model: "gpt-test"})
	if _, err := Collect(context.Background(), provider, nil); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestOpenAIProviderRequiresModel(t *testing.T) {
	t.Parallel()

	provider := NewOpenAIProvider(Config{})
	if _, err := provider.Complete(context.Background(), nil); err == nil {
		t.Fatalf("expected missing model error")
	}
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	t.Parallel()

	if _, err := NewProvider(Config{Provider: "anthropic"}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
	if p, err := NewProvider(Config{Model: "gpt"}); err != nil || p == nil {
		t.Fatalf("expected openai default, got %v", err)
	}
}
