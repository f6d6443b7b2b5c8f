package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/decision"
	"github.com/peterkuimelis/swapduel/internal/match"
	swapnet "github.com/peterkuimelis/swapduel/internal/net"
)

// practice: play the computer from this terminal.
func practiceCmd() *cobra.Command {
	var (
		owned      string
		difficulty string
		style      string
		starting   string
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Play a practice match against the computer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if difficulty != "" {
				settings.Match.Difficulty = difficulty
			}
			if style != "" {
				settings.Match.Style = style
			}
			if seed != 0 {
				settings.Match.Seed = seed
			}
			if err := settings.Validate(); err != nil {
				return err
			}
			assets, err := loadOwned(owned)
			if err != nil {
				return err
			}

			_, err = swapnet.Practice(cmd.Context(), match.PracticeConfig{
				Catalog: cards,
				Owned:   catalog.FromAssets(assets),
				Seed:    settings.Match.Seed,
				Player:  match.Seat{Name: "you", Timeout: settings.Match.HumanTimeout},
				Opponent: match.Seat{
					Name:     "opponent",
					Provider: settings.Opponent(decision.NewBot(cards)),
					Config:   settings.Decision(),
					Timeout:  settings.Match.DecisionTimeout,
				},
			}, starting, os.Stdin, os.Stdout)
			return err
		},
	}
	cmd.Flags().StringVar(&owned, "owned", "", "JSON file of owned card assets (default: a random booster)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy, normal or hard (overrides config)")
	cmd.Flags().StringVar(&style, "style", "", "opponent play style (overrides config)")
	cmd.Flags().StringVar(&starting, "starting", "", "who leads every round: a, b or random")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible deals")
	return cmd
}
