package commands

import (
	"github.com/spf13/cobra"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	swapnet "github.com/peterkuimelis/swapduel/internal/net"
)

// host: wait for one opponent over TCP and play seat A.
func hostCmd() *cobra.Command {
	var (
		port  string
		name  string
		owned string
	)
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Start a game server and play as seat A",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := loadOwned(owned)
			if err != nil {
				return err
			}
			srv := &swapnet.Server{
				Catalog:      cards,
				Port:         port,
				HostName:     name,
				HostOwned:    catalog.FromAssets(assets),
				Seed:         settings.Match.Seed,
				HumanTimeout: settings.Match.HumanTimeout,
			}
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&port, "port", "9000", "TCP port to listen on")
	cmd.Flags().StringVar(&name, "name", "host", "your player name")
	cmd.Flags().StringVar(&owned, "owned", "", "JSON file of owned card assets (default: a random booster)")
	return cmd
}
