package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	apiconfig "gfdeals/api_deals/internal/config"
	"gfdeals/api_deals/internal/queries"
	"gfdeals/pkg/logging"
)

func newQueriesCmd(logger logging.Logger) *cobra.Command {
	var (
		fallback bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Generate a query set and print its store and brand coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printQueries(cmd.Context(), apiconfig.LoadConfig(), logger, cmd.OutOrStdout(), fallback, format)
		},
	}
	cmd.Flags().BoolVar(&fallback, "fallback", false, "skip the language model and print the deterministic set")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}

type queriesOutput struct {
	Queries  queries.Set            `json:"queries" yaml:"queries"`
	Coverage queries.CoverageReport `json:"coverage" yaml:"coverage"`
}

func printQueries(ctx context.Context, cfg apiconfig.Config, logger logging.Logger, out io.Writer, fallback bool, format string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	var set queries.Set
	if fallback {
		set = queries.FallbackSet(a.catalog, a.catalog.Now())
	} else {
		source, err := a.querySource()
		if err != nil {
			return err
		}
		if set, err = source.Generate(ctx); err != nil {
			return err
		}
	}
	result := queriesOutput{Queries: set, Coverage: queries.Coverage(a.catalog, set)}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	c := result.Coverage
	_, err = fmt.Fprintf(out, "%d queries, %d/%d stores (%.1f%%), %d/%d brands (%.1f%%)\n",
		c.TotalQueries, c.StoresCovered, c.TotalStores, c.StoreCoveragePct,
		c.BrandsCovered, c.TotalBrands, c.BrandCoveragePct)
	return err
}
