package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the catalog at your configured store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			accessToken, err := a.clientToken(cmd)
			if err != nil {
				return err
			}

			term := strings.Join(args, " ")
			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = fmt.Sprintf(" Searching for %q...", term)
			sp.Start()
			products, err := a.krogerAPI.SearchProducts(cmd.Context(), accessToken, term, a.config.Kroger.StoreID, limit)
			sp.Stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(products) == 0 {
				fmt.Fprintf(out, "No products found for %q.\n", term)
				return nil
			}
			for _, p := range products {
				price := "n/a"
				if p.Price != nil {
					price = fmt.Sprintf("$%.2f", *p.Price)
				}
				stock := ""
				if !p.InStock {
					stock = "  [out of stock]"
				}
				fmt.Fprintf(out, "  %-14s %-8s %s%s\n", p.ProductID, price, p.Name, stock)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	return cmd
}
