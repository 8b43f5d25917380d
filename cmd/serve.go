package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/artify/internal/generation"
	"github.com/lehigh-university-libraries/artify/internal/handlers"
	"github.com/lehigh-university-libraries/artify/internal/huggingface"
	"github.com/lehigh-university-libraries/artify/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the image generation interface",
		Long: `Starts the Artify web interface.

The browser keeps its gallery in localStorage; the server only forwards
prompts to the inference API and returns images as data URIs.`,
		Example: `  # Start server on default port 8888
  artify serve

  # Start server on custom port
  artify serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cfg.HuggingFace.APIKey == "" {
				slog.Warn("HUGGINGFACE_API_KEY is not set; every generation request will fail until it is configured")
			}

			hf := huggingface.New(cfg.HuggingFace, nil)
			handler := handlers.New(generation.NewGateway(hf), web.Assets())

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Artify interface available", "addr", addr, "url", "http://localhost"+addr, "model", hf.Endpoint())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
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

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
