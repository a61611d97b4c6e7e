package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcodersir/axkhan/internal/acquire"
	"github.com/mcodersir/axkhan/internal/config"
	"github.com/mcodersir/axkhan/internal/handlers"
	"github.com/mcodersir/axkhan/internal/images"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var dropDir string
	var staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the extraction workspace",
		Long: `Starts the Axkhan workspace on the specified port.

Images can be uploaded, pasted (raw, as a data URI, or as an image URL), or
dropped into a watched directory. Only one image is processed at a time;
submissions made while an extraction is running are rejected.`,
		Example: `  # Start server on default port 8888
  axkhan serve

  # Start server on custom port and watch a drop folder
  axkhan serve --port 3000 --drop-dir ~/Desktop/ocr-inbox`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			coord := a.coordinator(a.settings, acquire.Options{
				UploadPause: cfg.UploadPause,
				FormatPause: cfg.FormatPause,
			})

			if dropDir != "" {
				err := acquire.WatchDropDir(cmd.Context(), acquire.DropConfig{
					Dir:      dropDir,
					MaxBytes: cfg.MaxUploadBytes,
				}, coord)
				if err != nil {
					return err
				}
			}

			handler := handlers.New(handlers.Deps{
				Coordinator:    coord,
				Settings:       a.settings,
				Quota:          a.quota,
				Feed:           a.feed,
				Fetcher:        images.NewFetcher(cfg.FetchTimeout, cfg.MaxUploadBytes),
				Limiter:        handlers.NewRateLimiter(cfg.RateEvery, cfg.RateBurst),
				EnvKeySet:      cfg.EnvAPIKey != "",
				Model:          cfg.Model,
				MaxUploadBytes: cfg.MaxUploadBytes,
				StaticDir:      staticDir,
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Axkhan workspace available", "addr", addr, "url", "http://localhost"+addr, "model", cfg.Model)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&dropDir, "drop-dir", "", "Directory to watch for dropped images")
	cmd.Flags().StringVar(&staticDir, "static-dir", "static", "Directory holding the web interface")

	return cmd
}
