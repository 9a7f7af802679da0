package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriReview/internal/reviewer"
)

var reviewerCmd = &cobra.Command{
	Use:   "reviewer",
	Short: "Run the AI reviewer service",
	Long: `Run the AI reviewer service. The API key comes from the active profile,
a .env file in the working directory or OPENAI_API_KEY, the last one winning.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		if err := reviewer.LoadEnv(cfg); err != nil {
			log.Fatalf("Failed to load .env: %v", err)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Reviewer.Addr = addr
		}
		if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
			cfg.Reviewer.Mode = mode
		}
		debug, _ := cmd.Flags().GetBool("debug")

		ctx, stop, logger := serviceContext(debug)
		defer stop()

		if err := reviewer.NewService(cfg, logger).Serve(ctx, cfg.Reviewer.Addr); err != nil {
			log.Fatalf("Reviewer error: %v", err)
		}
	},
}

func init() {
	reviewerCmd.Flags().String("addr", "", "listen address (default from config, :5000)")
	reviewerCmd.Flags().String("mode", "", "review mode: single or agentic")
	reviewerCmd.Flags().Bool("debug", false, "enable debug logging")
	rootCmd.AddCommand(reviewerCmd)
}
