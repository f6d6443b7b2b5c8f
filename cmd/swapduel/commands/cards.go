package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cards: print the catalog.
func cardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List the card catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, c := range cards.Cards() {
				tag := ""
				if !c.BoosterEligible {
					tag = "  (not in boosters)"
				}
				fmt.Fprintf(out, "%-14s %s%s\n", c.Name, c.DisplayString(), tag)
			}
			fmt.Fprintf(out, "\nAverage booster card: %.1f pts\n", cards.ExpectedBoosterPoints())
			return nil
		},
	}
}
