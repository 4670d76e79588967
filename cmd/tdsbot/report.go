package main

import (
	"fmt"
	"time"

	"github.com/dejobratic/tdsbot/internal/database"
	"github.com/dejobratic/tdsbot/internal/storefront/adapters/postgres"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize orders recorded in the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, _ := cmd.Flags().GetDuration("since")

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := database.NewPool(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			since := time.Now().Add(-window)
			summary, err := postgres.NewLedger(pool).Summarize(ctx, since)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "orders since %s: %d, revenue ₹%s\n",
				since.Format(time.RFC3339), summary.Orders, summary.Revenue.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().Duration("since", 7*24*time.Hour, "how far back to look")
	return cmd
}
