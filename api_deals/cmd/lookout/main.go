package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gfdeals/pkg/config"
	"gfdeals/pkg/logging"
)

const serviceName = "lookout"

func main() {
	logger := logging.NewLoggerWithService(serviceName)
	config.LoadEnv(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(logger logging.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Gluten-free deal discovery",
		Long:          "lookout searches the web for gluten-free coupons and promotions, scores them and keeps a ranked deal list.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(logger))
	rootCmd.AddCommand(newRunCmd(logger))
	rootCmd.AddCommand(newQueriesCmd(logger))
	rootCmd.AddCommand(newReportCmd(logger))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}
