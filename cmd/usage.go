package cmd

import (
	"fmt"

	"github.com/mcodersir/axkhan/internal/config"
	"github.com/spf13/cobra"
)

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show today's extraction count",
		Long: `Shows how many successful extractions were made today against the
advisory daily limit. The count resets on the first read of a new local day.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			rec := a.quota.Record()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d used, %d remaining\n",
				rec.Date, rec.Count, a.quota.Limit(), a.quota.Remaining())
			return nil
		},
	}
}
