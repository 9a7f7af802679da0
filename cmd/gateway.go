package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriReview/internal/gateway"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the gateway that relays form requests to the reviewer",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Gateway.Addr = addr
		}
		if upstream, _ := cmd.Flags().GetString("upstream"); upstream != "" {
			cfg.Gateway.Upstream = upstream
		}
		debug, _ := cmd.Flags().GetBool("debug")

		ctx, stop, logger := serviceContext(debug)
		defer stop()

		if err := gateway.NewServer(cfg.Gateway, logger).Serve(ctx, cfg.Gateway.Addr); err != nil {
			log.Fatalf("Gateway error: %v", err)
		}
	},
}

func init() {
	gatewayCmd.Flags().String("addr", "", "listen address (default from config, :8081)")
	gatewayCmd.Flags().String("upstream", "", "reviewer URL to forward to")
	gatewayCmd.Flags().Bool("debug", false, "enable debug logging")
	rootCmd.AddCommand(gatewayCmd)
}
