package search

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProviderSerpAPI = "serpapi"
	ProviderTavily  = "tavily"
	ProviderBrave   = "brave"
)

// Config selects and configures one search backend.
type Config struct {
	Provider string
	APIKey   string
	APIURL   string
	Timeout  time.Duration
}

// NewProvider creates a search provider from configuration.
func NewProvider(cfg Config, opts ...Option) (Provider, error) {
	if cfg.Timeout > 0 {
		opts = append([]Option{WithTimeout(cfg.Timeout)}, opts...)
	}
	switch strings.ToLower(cfg.Provider) {
	case ProviderSerpAPI:
		return NewSerpAPIProvider(cfg.APIKey, cfg.APIURL, opts...)
	case ProviderTavily:
		return NewTavilyProvider(cfg.APIKey, cfg.APIURL, opts...)
	case ProviderBrave:
		return NewBraveProvider(cfg.APIKey, cfg.APIURL, opts...)
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.Provider)
	}
}
