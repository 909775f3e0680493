package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voyagen/m3ulive/internal/models"
	"github.com/voyagen/m3ulive/internal/service"
)

func newCatalogCommand(cc *commandContext) *cobra.Command {
	var panel, filter, output string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Build a playlist from a panel catalog JSON and a category filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := service.CatalogOptions{
				Panel:  pick(cmd, "panel", panel, cc.cfg.PanelFile),
				Filter: pick(cmd, "filter", filter, cc.cfg.PanelFilterFile),
				Output: pick(cmd, "output", output, cc.cfg.CatalogOutput),
			}
			res, err := service.ExtractCatalogFile(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d channels from %d categories to %s\n", res.Channels, res.Categories, opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&panel, "panel", "", "Panel catalog JSON `FILE` (default from PANEL_FILE)")
	cmd.Flags().StringVar(&filter, "filter", "", "Category filter definition `FILE`, JSON or YAML (default from PANEL_FILTER_FILE)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output playlist `FILE` (default from OUT_M3U_FILE)")
	return cmd
}

func newCategoriesCommand(cc *commandContext) *cobra.Command {
	var panel, kind, output string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Dump the category names of a panel catalog as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch kind {
			case models.CategoryKindLive, models.CategoryKindVOD, models.CategoryKindSeries:
			default:
				return fmt.Errorf("unsupported category type %q (want live, vod or series)", kind)
			}
			if output == "" {
				output = "all_categories_" + kind + ".json"
			}
			n, err := service.DumpCategoriesFile(cmd.Context(), pick(cmd, "panel", panel, cc.cfg.PanelFile), kind, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d %s categories to %s\n", n, kind, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&panel, "panel", "", "Panel catalog JSON `FILE` (default from PANEL_FILE)")
	cmd.Flags().StringVar(&kind, "type", models.CategoryKindLive, "Category type: live, vod or series")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output JSON `FILE` (default all_categories_<type>.json)")
	return cmd
}

// pick returns the flag value when the flag was set, otherwise fallback.
func pick(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}
