package commands

import (
	"github.com/spf13/cobra"

	swapnet "github.com/peterkuimelis/swapduel/internal/net"
)

// join: connect to a host and play seat B.
func joinCmd() *cobra.Command {
	var (
		addr  string
		name  string
		owned string
	)
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Connect to a game server and play as seat B",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := loadOwned(owned)
			if err != nil {
				return err
			}
			return swapnet.Connect(cmd.Context(), addr, name, assets)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9000", "server address to connect to")
	cmd.Flags().StringVar(&name, "name", "guest", "your player name")
	cmd.Flags().StringVar(&owned, "owned", "", "JSON file of owned card assets (default: a random booster)")
	return cmd
}
