package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcodersir/axkhan/internal/acquire"
	"github.com/mcodersir/axkhan/internal/config"
	"github.com/mcodersir/axkhan/internal/export"
	"github.com/mcodersir/axkhan/internal/models"
	"github.com/mcodersir/axkhan/internal/notify"
	"github.com/mcodersir/axkhan/internal/ocr"
	"github.com/mcodersir/axkhan/internal/settings"
	"github.com/spf13/cobra"
)

// runSettings overrides the stored settings for a single command
type runSettings struct {
	base   *settings.Manager
	apiKey string
	eco    *bool
}

func (r runSettings) Get() settings.Settings {
	s := r.base.Get()
	if r.apiKey != "" {
		s.APIKey = r.apiKey
	}
	if r.eco != nil {
		s.EcoMode = *r.eco
	}
	return s
}

func newExtractCmd() *cobra.Command {
	var eco bool
	var instructions string
	var apiKey string
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "extract FILE|-",
		Short: "Extract text from a single image",
		Long: `Extracts the text of one image and writes it to stdout or a file.

Pass - to read the image from stdin, e.g. piped from a clipboard tool.
The API key is taken from --key, then the saved settings, then GEMINI_API_KEY.`,
		Example: `  # Extract to stdout
  axkhan extract scan.jpg

  # Shrink the image before sending and export a right-to-left spreadsheet
  axkhan extract scan.png --eco --format xlsx --output scan.xlsx

  # Read from the clipboard
  wl-paste --type image/png | axkhan extract -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			cfg := config.Load()
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				payload models.ImagePayload
				source  acquire.Source
			)
			if args[0] == "-" {
				payload, err = acquire.FromReader(os.Stdin, "", "", cfg.MaxUploadBytes)
				source = acquire.SourceClipboard
			} else {
				payload, err = acquire.FromFile(args[0], cfg.MaxUploadBytes)
				source = acquire.SourceFilePicker
			}
			if err != nil {
				return err
			}

			prefs := runSettings{base: a.settings, apiKey: strings.TrimSpace(apiKey)}
			if cmd.Flags().Changed("eco") {
				prefs.eco = &eco
			}

			// pauses are presentational only and skipped on the command line
			coord := a.coordinator(prefs, acquire.Options{})
			coord.SetInstructions(instructions)

			run, err := coord.Submit(cmd.Context(), payload, source)
			if err != nil {
				return err
			}
			_, err = run.Wait(cmd.Context())
			printNotifications(cmd.ErrOrStderr(), a.feed)
			if err != nil {
				return fmt.Errorf("extraction failed: %s", ocr.Message(err))
			}

			result := coord.Result()
			doc := export.Document{Text: result.Text, Direction: result.Direction, Model: cfg.Model}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()
				w = file
			}
			return export.Write(w, f, doc)
		},
	}

	cmd.Flags().BoolVar(&eco, "eco", false, "Downscale the image before sending it (overrides saved setting)")
	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "Extra instructions for the model")
	cmd.Flags().StringVar(&apiKey, "key", "", "Gemini API key for this run")
	cmd.Flags().StringVarP(&format, "format", "f", "txt", "Output format (txt, yaml, xlsx)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func printNotifications(w io.Writer, feed *notify.Feed) {
	for _, e := range feed.Since(0) {
		if e.Kind == notify.KindToast {
			fmt.Fprintf(w, "[%s] %s\n", e.Level, e.Message)
		}
	}
}
