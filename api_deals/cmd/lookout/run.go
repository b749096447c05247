package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apiconfig "gfdeals/api_deals/internal/config"
	"gfdeals/api_deals/internal/deals"
	"gfdeals/pkg/logging"
)

func newRunCmd(logger logging.Logger) *cobra.Command {
	var (
		asJSON bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and print the ranked deals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runOnce(ctx, apiconfig.LoadConfig(), logger, cmd.OutOrStdout(), asJSON, limit)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	cmd.Flags().IntVar(&limit, "limit", deals.DefaultReportLimit, "number of deals to print")
	return cmd
}

func runOnce(ctx context.Context, cfg apiconfig.Config, logger logging.Logger, out io.Writer, asJSON bool, limit int) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.openSink(ctx); err != nil {
		return err
	}
	defer a.close()

	runner, err := a.runner(nil)
	if err != nil {
		return err
	}
	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	if err := deals.WriteReport(out, report.Deals, limit); err != nil {
		return err
	}
	return deals.WriteAnalytics(out, deals.Analyze(report.Deals))
}
