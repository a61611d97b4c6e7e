package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "axkhan",
		Short: "Extract editable text from images with Gemini",
		Long: `Axkhan turns an image containing text into edited, exportable plain text.

Images are sent to a Gemini vision model with OCR and right-to-left script
correction instructions. Results can be edited, viewed next to the source
image, and exported as text, YAML or XLSX.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if verbose {
				logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
				slog.SetDefault(logger)
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newUsageCmd())
	cmd.AddCommand(newSettingsCmd())

	return cmd
}
