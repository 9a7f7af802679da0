package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriReview/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "rorireview",
	Short: "AI code review assistant for the terminal",
	Long:  `RoriReview sends a code snippet to an AI review service and shows the feedback.`,
	Run: func(cmd *cobra.Command, args []string) {
		runForm()
	},
}

func runForm() {
	application, err := app.NewApplication()
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(profileCmd)
}
