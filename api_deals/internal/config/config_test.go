package config

import (
	"errors"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "LLM_API_KEY", "SERPAPI_KEY", "TAVILY_API_KEY", "BRAVE_API_KEY",
		"CHANNEL_B_PROVIDER", "SINK_BACKEND", "REQUEST_TIMEOUT", "FETCH_WORKERS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadConfig()
	if cfg.Port != "18040" || cfg.LLMModel != "gpt-3.5-turbo" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.FetchWorkers != 3 || cfg.MaxQueriesPerChannel != 50 {
		t.Fatalf("unexpected fetch defaults %+v", cfg)
	}
	if cfg.SinkBackend != SinkFile || cfg.DealsFile != "gf_deals.json" {
		t.Fatalf("unexpected sink defaults %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "llm")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("CHANNEL_B_PROVIDER", "Brave")
	t.Setenv("SINK_BACKEND", "REDIS")

	cfg := LoadConfig()
	if cfg.LLMAPIKey != "llm" {
		t.Fatalf("expected LLM_API_KEY fallback, got %q", cfg.LLMAPIKey)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("expected bare integer seconds, got %v", cfg.RequestTimeout)
	}
	if cfg.ChannelBProvider != "brave" || cfg.ChannelBName() != "Brave" || cfg.SinkBackend != SinkRedis {
		t.Fatalf("expected lower-cased selectors, got %+v", cfg)
	}
}

func TestValidateMissingCredentials(t *testing.T) {
	clearEnv(t)

	err := LoadConfig().Validate()
	var missing *MissingCredentialsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingCredentialsError, got %v", err)
	}
	if err.Error() != "missing API keys for: OpenAI, SerpAPI, Tavily" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestValidateBraveChannel(t *testing.T) {
	cfg := Config{LLMAPIKey: "a", SerpAPIKey: "b", ChannelBProvider: "brave", SinkBackend: SinkFile, DealsFile: "x.json"}
	err := cfg.Validate()
	var missing *MissingCredentialsError
	if !errors.As(err, &missing) || len(missing.Providers) != 1 || missing.Providers[0] != "Brave" {
		t.Fatalf("expected missing Brave key, got %v", err)
	}

	cfg.BraveAPIKey = "c"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateSinkBackends(t *testing.T) {
	base := Config{LLMAPIKey: "a", SerpAPIKey: "b", TavilyAPIKey: "c"}

	cases := map[string]Config{
		"postgres without url": {SinkBackend: SinkPostgres},
		"redis without url":    {SinkBackend: SinkRedis},
		"unknown backend":      {SinkBackend: "s3"},
	}
	for name, override := range cases {
		cfg := base
		cfg.SinkBackend = override.SinkBackend
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	cfg := base
	cfg.SinkBackend = SinkPostgres
	cfg.DatabaseURL = "postgres://localhost/deals"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected postgres sink to validate, got %v", err)
	}
}
