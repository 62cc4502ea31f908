package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"maiyer/pkg/krogerclient"
)

func newStoresCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stores <zip>",
		Short: "List Fred Meyer stores near a ZIP code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			accessToken, err := a.clientToken(cmd)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " Looking up stores..."
			sp.Start()
			stores, err := a.krogerAPI.FindStores(cmd.Context(), accessToken, args[0], krogerclient.DefaultChain, limit)
			sp.Stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(stores) == 0 {
				fmt.Fprintf(out, "No stores found near %s.\n", args[0])
				return nil
			}
			for _, s := range stores {
				marker := " "
				if s.LocationID == a.config.Kroger.StoreID {
					marker = "*"
				}
				fmt.Fprintf(out, " %s %-10s %s (%s)\n", marker, s.LocationID, s.Name, s.Address)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of stores")
	return cmd
}
