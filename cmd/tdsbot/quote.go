package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/catalog"
	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/pricing"
	"github.com/spf13/cobra"
)

func quoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote [product]",
		Short: "Print the price tier for one or all products",
		Long: `Print the price each product would be sold at, evaluated in Asia/Kolkata.

Examples:
  tdsbot quote
  tdsbot quote netflix --at 2024-06-02T10:00:00+05:30
  tdsbot quote --catalog products.xlsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("catalog")
			at, _ := cmd.Flags().GetString("at")

			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = parsed
			}

			c, err := loadCatalog(path)
			if err != nil {
				return err
			}
			var key string
			if len(args) == 1 {
				key = args[0]
			}
			return printQuotes(cmd.OutOrStdout(), c, pricing.Default(), key, now)
		},
	}

	cmd.Flags().String("catalog", "", "catalog file (.yaml, .yml or .xlsx); defaults to the built-in catalog")
	cmd.Flags().String("at", "", "evaluate at this RFC 3339 instant instead of now")

	return cmd
}

func printQuotes(w io.Writer, c *catalog.Catalog, engine *pricing.Engine, key string, now time.Time) error {
	products := c.List()
	if key != "" {
		p, err := c.Get(key)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		products = []domain.Product{p}
	}

	tier := "normal"
	if engine.IsDiscountDay(now) {
		tier = "discount"
	}
	fmt.Fprintf(w, "%s tier at %s\n", tier, now.In(engine.Location()).Format("Mon 02 Jan 2006 15:04 MST"))

	for _, p := range products {
		q := engine.Quote(p, now)
		fmt.Fprintf(w, "%-10s %-18s %-16s %s\n", p.Key, p.Name, q.Label, q.Amount.StringFixed(2))
	}

	next := engine.NextDiscountWindowStart(now)
	fmt.Fprintf(w, "next discount window: %s\n", next.Format("Mon 02 Jan 2006 15:04 MST"))
	return nil
}
