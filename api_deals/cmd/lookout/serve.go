package main

import (
	"context"

	"github.com/spf13/cobra"

	apiconfig "gfdeals/api_deals/internal/config"
	"gfdeals/api_deals/internal/handlers"
	"gfdeals/api_deals/internal/pipeline"
	"gfdeals/pkg/clients"
	"gfdeals/pkg/logging"
	"gfdeals/pkg/monitoring"
	"gfdeals/pkg/server"
	"gfdeals/pkg/version"
)

func newServeCmd(logger logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the deal API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), apiconfig.LoadConfig(), logger)
		},
	}
}

func serve(ctx context.Context, cfg apiconfig.Config, logger logging.Logger) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.openSink(ctx); err != nil {
		return err
	}
	defer a.close()

	healthChecker := monitoring.NewHealthChecker(serviceName, version.Version)
	metricsCollector := monitoring.NewMetricsCollector(serviceName, version.Version, version.GitCommit)
	a.breakerMetrics = clients.NewBreakerMetrics(metricsCollector.Registerer())

	required := map[string]string{
		"OPENAI_API_KEY": cfg.LLMAPIKey,
		"SERPAPI_KEY":    cfg.SerpAPIKey,
	}
	if cfg.ChannelBProvider == "brave" {
		required["BRAVE_API_KEY"] = cfg.BraveAPIKey
	} else {
		required["TAVILY_API_KEY"] = cfg.TavilyAPIKey
	}
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(required))
	healthChecker.AddCheck("deal_store", monitoring.ProbeHealthCheck("Deal store", func(ctx context.Context) error {
		_, err := a.store.Load(ctx)
		return err
	}))
	if a.db != nil {
		healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(a.db))
	}
	if a.redis != nil {
		healthChecker.AddCheck("redis", monitoring.RedisHealthCheck(a.redis))
	}

	runner, err := a.runner(pipeline.NewMetrics(metricsCollector))
	if err != nil {
		return err
	}
	for _, exec := range a.executors {
		healthChecker.AddCheck("breaker_"+exec.Name(), monitoring.BreakerHealthCheck(exec.Name(), exec.BreakerOpen))
	}

	app := server.SetupServiceRouter(logger, serviceName, healthChecker, metricsCollector)

	dealMetrics := &handlers.DealMetrics{
		Requests: metricsCollector.NewCounter("deal_requests_total", "Deal API requests by endpoint and outcome", []string{"endpoint", "status"}),
	}
	handlers.NewDealsHandler(runner, a.store, logger, dealMetrics).Register(app)

	return server.Start(server.DefaultConfig(serviceName, cfg.Port), app, logger)
}

