package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/config"
)

var (
	configPath string
	settings   config.Config
	cards      *catalog.Catalog
)

func Execute() error {
	root := &cobra.Command{
		Use:          "swapduel",
		Short:        "Three-round reveal and swap card duel",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = config.Load(configPath)
			if err != nil {
				return err
			}
			cards, err = catalog.Load(settings.Catalog)
			return err
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults apply when empty)")

	root.AddCommand(practiceCmd(), hostCmd(), joinCmd(), cardsCmd())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return root.ExecuteContext(ctx)
}

// loadOwned reads an owned-asset JSON file. An empty path means none.
func loadOwned(path string) ([]catalog.Asset, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read owned cards: %w", err)
	}
	return catalog.ParseAssets(data)
}
