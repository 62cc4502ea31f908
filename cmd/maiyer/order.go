package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"maiyer/internal/order"
	"maiyer/pkg/cache"
	"maiyer/pkg/idgen"
)

func newOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "Fill the cart from your Google Tasks shopping list",
		Long: `Pulls incomplete tasks from the configured Google Tasks list, matches
each one to a product at your store, adds everything to the cart in a
single call and checks off the matched tasks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			var productCache cache.Cache
			if a.config.RedisAddr != "" {
				productCache = cache.NewRedisCache(a.config.RedisAddr)
			}

			generator, err := idgen.NewSnowflakeGenerator(1)
			if err != nil {
				return err
			}

			svc := order.NewService(a.config, a.krogerTokens, a.googleTokens,
				a.krogerAPI, a.tasksAPI, productCache, generator, a.logger)

			summary, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order %s\n", summary.OrderRef)
			if len(summary.Added) == 0 && len(summary.NotFound) == 0 {
				fmt.Fprintln(out, "Shopping list is empty, nothing to do.")
				return nil
			}
			for _, item := range summary.Added {
				fmt.Fprintf(out, "  + %s (%s) x%d\n", item.Name, item.ProductID, item.Quantity)
			}
			for _, term := range summary.NotFound {
				fmt.Fprintf(out, "  ? no product found for %q\n", term)
			}
			fmt.Fprintf(out, "%d item(s) added to your cart.\n", len(summary.Added))
			return nil
		},
	}
}
