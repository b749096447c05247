package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	apiconfig "gfdeals/api_deals/internal/config"
	"gfdeals/api_deals/internal/deals"
	"gfdeals/api_deals/internal/fetch"
	"gfdeals/api_deals/internal/pipeline"
	"gfdeals/api_deals/internal/queries"
	"gfdeals/api_deals/internal/sink"
	"gfdeals/pkg/clients"
	"gfdeals/pkg/database"
	"gfdeals/pkg/llm"
	"gfdeals/pkg/logging"
	"gfdeals/pkg/redis"
	"gfdeals/pkg/search"
)

// app owns the long-lived collaborators shared by the subcommands.
type app struct {
	cfg     apiconfig.Config
	logger  logging.Logger
	catalog *deals.Catalog

	store sink.Sink
	db    *sql.DB
	redis *goredis.Client

	executors      []*clients.HTTPExecutor
	breakerMetrics *clients.BreakerMetrics
}

// newApp loads the keyword catalog, preferring CATALOG_FILE over the embedded one.
func newApp(cfg apiconfig.Config, logger logging.Logger) (*app, error) {
	catalog := deals.NewCatalog(nil)
	if cfg.CatalogFile != "" {
		data, err := deals.LoadCatalogData(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		catalog = deals.NewCatalogFrom(data, nil)
		logger.WithField("path", cfg.CatalogFile).Info("Loaded catalog override")
	}
	return &app{cfg: cfg, logger: logger, catalog: catalog}, nil
}

// openSink connects the configured backend.
func (a *app) openSink(ctx context.Context) error {
	switch a.cfg.SinkBackend {
	case apiconfig.SinkPostgres:
		db, err := database.Connect(ctx, database.DefaultConfig(a.cfg.DatabaseURL), a.logger)
		if err != nil {
			return err
		}
		pg := sink.NewPostgresSink(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return err
		}
		a.db, a.store = db, pg
	case apiconfig.SinkRedis:
		client, err := redis.NewClientFromURL(ctx, a.cfg.RedisURL)
		if err != nil {
			return err
		}
		a.redis, a.store = client, sink.NewRedisSink(client, a.cfg.RedisKey)
	default:
		a.store = sink.NewFileSink(a.cfg.DealsFile)
	}
	a.logger.WithField("backend", a.cfg.SinkBackend).Info("Deal store ready")
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *app) executor(name string) *clients.HTTPExecutor {
	cfg := clients.DefaultHTTPExecutorConfig(name)
	cfg.Logger = a.logger
	if a.breakerMetrics != nil {
		cfg.OnStateChange = a.breakerMetrics.Record
	}
	exec := clients.NewHTTPExecutor(cfg)
	a.executors = append(a.executors, exec)
	return exec
}

// querySource builds the LLM-backed source. Without an API key it degrades to
// the deterministic fallback set.
func (a *app) querySource() (*queries.LLMSource, error) {
	var provider llm.Provider
	if a.cfg.LLMAPIKey != "" {
		p, err := llm.NewProvider(llm.Config{
			Provider:    a.cfg.LLMProvider,
			Model:       a.cfg.LLMModel,
			APIKey:      a.cfg.LLMAPIKey,
			APIURL:      a.cfg.LLMAPIURL,
			MaxTokens:   2000,
			Temperature: 0.7,
			TopP:        0.9,
			Timeout:     a.cfg.RequestTimeout * 3,
		}, llm.WithExecutor(a.executor("llm")))
		if err != nil {
			return nil, err
		}
		provider = p
	}
	return queries.NewLLMSource(provider, a.catalog, a.cfg.MaxQueriesPerChannel, a.logger), nil
}

func (a *app) channels(metrics *pipeline.Metrics) ([]pipeline.Channel, error) {
	timeout := search.WithTimeout(a.cfg.RequestTimeout)

	serp, err := search.NewProvider(search.Config{
		Provider: search.ProviderSerpAPI,
		APIKey:   a.cfg.SerpAPIKey,
		APIURL:   a.cfg.SerpAPIURL,
	}, timeout, search.WithExecutor(a.executor("serpapi")))
	if err != nil {
		return nil, fmt.Errorf("channel A: %w", err)
	}
	engineDelay := fetch.Delay{Min: a.cfg.EngineDelayMin, Max: a.cfg.EngineDelayMax}
	var channelA fetch.Fetcher = fetch.NewSerpFetcher(serp, engineDelay, a.catalog.Now, a.logger)

	var channelB fetch.Fetcher
	if a.cfg.ChannelBProvider == "brave" {
		brave, err := search.NewProvider(search.Config{
			Provider: search.ProviderBrave,
			APIKey:   a.cfg.BraveAPIKey,
			APIURL:   a.cfg.BraveAPIURL,
		}, timeout, search.WithExecutor(a.executor("brave")))
		if err != nil {
			return nil, fmt.Errorf("channel B: %w", err)
		}
		channelB = fetch.NewProviderFetcher(brave, "Brave", fetch.BraveOptions(), a.catalog.Now, a.logger)
	} else {
		tavily, err := search.NewTavilyProvider(a.cfg.TavilyAPIKey, a.cfg.TavilyAPIURL, timeout, search.WithExecutor(a.executor("tavily")))
		if err != nil {
			return nil, fmt.Errorf("channel B: %w", err)
		}
		channelB = fetch.NewTavilyFetcher(tavily, a.catalog, a.logger)
	}

	if ttl := a.cfg.FetchCacheTTL; ttl > 0 {
		channelA = fetch.NewCachedFetcher("serpapi", channelA, ttl, metrics.CacheHooks("serpapi"))
		name := strings.ToLower(a.cfg.ChannelBName())
		channelB = fetch.NewCachedFetcher(name, channelB, ttl, metrics.CacheHooks(name))
	}
	return []pipeline.Channel{
		{Name: "serpapi", Fetcher: channelA, Queries: pipeline.SerpAPIQueries},
		{Name: "tavily", Fetcher: channelB, Queries: pipeline.TavilyQueries},
	}, nil
}

// runner wires the pipeline. When credentials are missing the channels are
// left empty and every run fails its preflight with the missing providers.
func (a *app) runner(metrics *pipeline.Metrics) (*pipeline.Runner, error) {
	source, err := a.querySource()
	if err != nil {
		return nil, err
	}
	var channels []pipeline.Channel
	if err := a.cfg.Validate(); err != nil {
		a.logger.WithError(err).Warn("Pipeline is not fully configured; runs will be rejected")
	} else if channels, err = a.channels(metrics); err != nil {
		return nil, err
	}
	opts := pipeline.Options{
		Workers:   a.cfg.FetchWorkers,
		Jitter:    fetch.Delay{Min: a.cfg.FetchJitterMin, Max: a.cfg.FetchJitterMax},
		Preflight: a.cfg.Validate,
	}
	return pipeline.NewRunner(opts, a.catalog, source, channels, a.store, metrics, a.logger), nil
}
