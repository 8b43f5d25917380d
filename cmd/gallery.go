package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/lehigh-university-libraries/artify/internal/gallery"
	"github.com/spf13/cobra"
)

func newGalleryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Manage the local gallery of generated images",
		Long: `The gallery lives in a single JSON file under the configured gallery
directory and is ordered newest first.`,
	}

	cmd.AddCommand(newGalleryListCmd(opts))
	cmd.AddCommand(newGalleryDeleteCmd(opts))
	cmd.AddCommand(newGalleryClearCmd(opts))
	cmd.AddCommand(newGallerySaveCmd(opts))
	cmd.AddCommand(newGalleryExportCmd(opts))
	cmd.AddCommand(newGalleryImportCmd(opts))

	return cmd
}

func loadGallery(opts *rootOptions) (*gallery.Store, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}
	return openGallery(cfg)
}

func newGalleryListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List gallery images, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadGallery(opts)
			if err != nil {
				return err
			}
			images := store.List()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(images)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tPROMPT")
			for _, img := range images {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", img.ID, img.CreatedAt.Local().Format(time.DateTime), img.Prompt)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full records as JSON")

	return cmd
}

func newGalleryDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete images by id",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadGallery(opts)
			if err != nil {
				return err
			}
			var errs []error
			for _, id := range args {
				if _, err := store.Get(id); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: not in gallery\n", id)
					continue
				}
				if err := store.Remove(id); err != nil {
					errs = append(errs, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return errors.Join(errs...)
		},
	}
}

func newGalleryClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every image in the gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the gallery without --yes")
			}
			store, err := loadGallery(opts)
			if err != nil {
				return err
			}
			n := store.Len()
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d images\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing the gallery")

	return cmd
}

func newGallerySaveCmd(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "save <id>...",
		Short: "Write images to disk as ai-artify-<id> files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadGallery(opts)
			if err != nil {
				return err
			}
			for _, id := range args {
				path, err := store.Save(id, dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write images to")

	return cmd
}

func newGalleryExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export the gallery to .json, .yaml or .parquet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadGallery(opts)
			if err != nil {
				return err
			}
			n, err := store.Export(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d images to %s\n", n, args[0])
			return nil
		},
	}
}

func newGalleryImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import images from a .json, .yaml or .parquet export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadGallery(opts)
			if err != nil {
				return err
			}
			n, err := store.Import(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d images from %s\n", n, args[0])
			return nil
		},
	}
}
