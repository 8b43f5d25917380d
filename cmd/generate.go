package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/artify/internal/gallery"
	"github.com/lehigh-university-libraries/artify/internal/generation"
	"github.com/lehigh-university-libraries/artify/internal/huggingface"
	"github.com/lehigh-university-libraries/artify/internal/models"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var saveDir string
	var skipGallery bool

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate an image from a prompt and add it to the gallery",
		Example: `  # Generate and keep the result in the local gallery
  artify generate "a red circle on a white background"

  # Also write the image file to ./out
  artify generate --save ./out "a lighthouse at dusk"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if skipGallery && saveDir != "" {
				return errors.New("--save requires the gallery; drop --no-gallery")
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			gw := generation.NewGateway(huggingface.New(cfg.HuggingFace, nil))

			payload, err := gw.Generate(cmd.Context(), prompt)
			if err != nil {
				var genErr *generation.Error
				if !errors.As(err, &genErr) {
					return err
				}
				if genErr.Details != "" {
					return fmt.Errorf("%s (%s)", genErr.Message, genErr.Details)
				}
				return errors.New(genErr.Message)
			}

			img := models.NewGeneratedImage(payload.Prompt, payload.Image)
			out := cmd.OutOrStdout()

			if !skipGallery {
				store, err := openGallery(cfg)
				if err != nil {
					return err
				}
				if err := store.Add(img); err != nil {
					var persistErr *gallery.PersistenceError
					if !errors.As(err, &persistErr) {
						return err
					}
					slog.Warn("Image generated but the gallery could not be saved", "err", err)
				}
				if saveDir != "" {
					path, err := store.Save(img.ID, saveDir)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Saved %s\n", path)
				}
			}

			fmt.Fprintf(out, "%s\t%s\t%s\n", img.ID, payload.ContentType, img.Prompt)
			return nil
		},
	}

	cmd.Flags().StringVar(&saveDir, "save", "", "Directory to write the image file to")
	cmd.Flags().BoolVar(&skipGallery, "no-gallery", false, "Do not add the result to the gallery")

	return cmd
}
