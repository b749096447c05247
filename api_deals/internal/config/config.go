package config

import (
	"fmt"
	"strings"
	"time"

	"gfdeals/pkg/config"
)

const (
	SinkFile     = "file"
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
)

// Config holds the lookout service settings. It is loaded once at startup
// and passed down explicitly.
type Config struct {
	Port string

	LLMProvider string
	LLMModel    string
	LLMAPIKey   string
	LLMAPIURL   string

	SerpAPIKey string
	SerpAPIURL string

	// ChannelBProvider selects the second search backend: tavily or brave.
	ChannelBProvider string
	TavilyAPIKey     string
	TavilyAPIURL     string
	BraveAPIKey      string
	BraveAPIURL      string

	RequestTimeout       time.Duration
	FetchWorkers         int
	FetchJitterMin       time.Duration
	FetchJitterMax       time.Duration
	EngineDelayMin       time.Duration
	EngineDelayMax       time.Duration
	MaxQueriesPerChannel int
	FetchCacheTTL        time.Duration

	SinkBackend string
	DealsFile   string
	DatabaseURL string
	RedisURL    string
	RedisKey    string

	// CatalogFile replaces the embedded keyword catalog when set.
	CatalogFile string
}

// LoadConfig reads the service configuration from the environment.
func LoadConfig() Config {
	return Config{
		Port:        config.GetEnv("PORT", "18040"),
		LLMProvider: config.GetEnv("LLM_PROVIDER", "openai"),
		LLMModel:    config.GetEnv("LLM_MODEL", "gpt-3.5-turbo"),
		LLMAPIKey:   config.GetEnv("OPENAI_API_KEY", config.GetEnv("LLM_API_KEY", "")),
		LLMAPIURL:   config.GetEnv("LLM_API_URL", ""),

		SerpAPIKey: config.GetEnv("SERPAPI_KEY", ""),
		SerpAPIURL: config.GetEnv("SERPAPI_URL", ""),

		ChannelBProvider: strings.ToLower(config.GetEnv("CHANNEL_B_PROVIDER", "tavily")),
		TavilyAPIKey:     config.GetEnv("TAVILY_API_KEY", ""),
		TavilyAPIURL:     config.GetEnv("TAVILY_API_URL", ""),
		BraveAPIKey:      config.GetEnv("BRAVE_API_KEY", ""),
		BraveAPIURL:      config.GetEnv("BRAVE_API_URL", ""),

		RequestTimeout:       config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		FetchWorkers:         config.GetEnvInt("FETCH_WORKERS", 3),
		FetchJitterMin:       config.GetEnvDuration("FETCH_JITTER_MIN", time.Second),
		FetchJitterMax:       config.GetEnvDuration("FETCH_JITTER_MAX", 2*time.Second),
		EngineDelayMin:       config.GetEnvDuration("SERP_ENGINE_DELAY_MIN", 2*time.Second),
		EngineDelayMax:       config.GetEnvDuration("SERP_ENGINE_DELAY_MAX", 4*time.Second),
		MaxQueriesPerChannel: config.GetEnvInt("MAX_QUERIES_PER_CHANNEL", 50),
		FetchCacheTTL:        config.GetEnvDuration("FETCH_CACHE_TTL", 30*time.Minute),

		SinkBackend: strings.ToLower(config.GetEnv("SINK_BACKEND", SinkFile)),
		DealsFile:   config.GetEnv("DEALS_FILE", "gf_deals.json"),
		DatabaseURL: config.GetEnv("DATABASE_URL", ""),
		RedisURL:    config.GetEnv("REDIS_URL", ""),
		RedisKey:    config.GetEnv("REDIS_KEY", "gfdeals:deals"),

		CatalogFile: config.GetEnv("CATALOG_FILE", ""),
	}
}

// MissingCredentialsError names the providers whose API keys are absent.
type MissingCredentialsError struct {
	Providers []string
}

func (e *MissingCredentialsError) Error() string {
	return "missing API keys for: " + strings.Join(e.Providers, ", ")
}

// Validate reports missing provider credentials as *MissingCredentialsError
// and rejects unknown backends.
func (c Config) Validate() error {
	var missing []string
	if c.LLMAPIKey == "" {
		missing = append(missing, "OpenAI")
	}
	if c.SerpAPIKey == "" {
		missing = append(missing, "SerpAPI")
	}
	switch c.ChannelBProvider {
	case "", "tavily":
		if c.TavilyAPIKey == "" {
			missing = append(missing, "Tavily")
		}
	case "brave":
		if c.BraveAPIKey == "" {
			missing = append(missing, "Brave")
		}
	default:
		return fmt.Errorf("unsupported CHANNEL_B_PROVIDER %q", c.ChannelBProvider)
	}
	if len(missing) > 0 {
		return &MissingCredentialsError{Providers: missing}
	}
	return c.validateSink()
}

func (c Config) validateSink() error {
	switch c.SinkBackend {
	case SinkFile:
		if c.DealsFile == "" {
			return fmt.Errorf("DEALS_FILE is required for the file sink")
		}
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres sink")
		}
	case SinkRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis sink")
		}
	default:
		return fmt.Errorf("unsupported SINK_BACKEND %q", c.SinkBackend)
	}
	return nil
}

// ChannelBName is the display name of the configured second channel.
func (c Config) ChannelBName() string {
	if c.ChannelBProvider == "brave" {
		return "Brave"
	}
	return "Tavily"
}
