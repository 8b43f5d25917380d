package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/artify/internal/config"
	"github.com/lehigh-university-libraries/artify/internal/gallery"
	"github.com/lehigh-university-libraries/artify/internal/storage"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "artify",
		Short: "Text-to-image generation with a local gallery",
		Long: `Artify turns natural-language prompts into images using the Hugging Face
Inference API.

Run "artify serve" for the browser interface, or use "artify generate" and
"artify gallery" to work from the terminal.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newGalleryCmd(opts))

	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

func openGallery(cfg *config.Config) (*gallery.Store, error) {
	kv, err := storage.NewFile(cfg.Gallery.Dir, cfg.Gallery.QuotaBytes)
	if err != nil {
		return nil, err
	}
	slog.Debug("Opening gallery", "dir", kv.Dir(), "key", cfg.Gallery.Key)
	return gallery.Open(kv, cfg.Gallery.Key), nil
}
