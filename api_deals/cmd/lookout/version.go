package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gfdeals/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String(serviceName))
			return err
		},
	}
}
