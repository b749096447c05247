package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	apiconfig "gfdeals/api_deals/internal/config"
	"gfdeals/api_deals/internal/deals"
	"gfdeals/pkg/logging"
)

func newReportCmd(logger logging.Logger) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the stored deals and their analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printReport(cmd.Context(), apiconfig.LoadConfig(), logger, cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", deals.DefaultReportLimit, "number of deals to print")
	return cmd
}

func printReport(ctx context.Context, cfg apiconfig.Config, logger logging.Logger, out io.Writer, limit int) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.openSink(ctx); err != nil {
		return err
	}
	defer a.close()

	ds, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := deals.WriteReport(out, ds, limit); err != nil {
		return err
	}
	return deals.WriteAnalytics(out, deals.Analyze(ds))
}
