package service

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/voyagen/m3ulive/internal/catalog"
)

// CatalogOptions configures ExtractCatalogFile.
type CatalogOptions struct {
	Panel  string // catalog JSON path
	Filter string // filter definition path
	Output string
}

// CatalogResult describes a completed catalog extraction.
type CatalogResult struct {
	Categories int // live categories selected by the filter
	Channels   int // channels written
	BaseURL    string
}

// ExtractCatalogFile renders the allow-listed live channels of a panel
// catalog into a playlist. Catalog entries are not classified.
func ExtractCatalogFile(ctx context.Context, opts CatalogOptions) (CatalogResult, error) {
	log := zerolog.Ctx(ctx)
	var res CatalogResult

	log.Debug().Str("path", opts.Filter).Msg("loading filter file")
	filter, err := catalog.LoadFilter(opts.Filter)
	if err != nil {
		return res, err
	}

	log.Debug().Str("path", opts.Panel).Msg("loading panel file")
	c, err := catalog.LoadFile(opts.Panel)
	if err != nil {
		return res, err
	}

	cats := catalog.ExtractCategories(c, filter.AllowSet())
	index := catalog.IndexByID(cats)
	channels := catalog.FilterChannelsByCategory(c.Channels, index)
	res.Categories = len(cats)
	res.Channels = len(channels)
	res.BaseURL = catalog.BaseURL(c)
	log.Debug().Int("categories", res.Categories).Int("channels", res.Channels).Msg("catalog filtered")

	unlock, err := lockDestination(opts.Output)
	if err != nil {
		return res, err
	}
	defer unlock()

	f, err := os.Create(opts.Output)
	if err != nil {
		return res, fmt.Errorf("create output %s: %w", opts.Output, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := catalog.Render(w, channels, index, res.BaseURL); err != nil {
		return res, fmt.Errorf("write output %s: %w", opts.Output, err)
	}
	if err := w.Flush(); err != nil {
		return res, fmt.Errorf("write output %s: %w", opts.Output, err)
	}
	if err := f.Close(); err != nil {
		return res, fmt.Errorf("close output %s: %w", opts.Output, err)
	}
	log.Info().Str("output", opts.Output).Int("channels", res.Channels).Msg("catalog playlist written")
	return res, nil
}

// DumpCategoriesFile writes the category names of kind from the catalog at
// panel to output as {"all_categories": [...]}.
func DumpCategoriesFile(ctx context.Context, panel, kind, output string) (int, error) {
	c, err := catalog.LoadFile(panel)
	if err != nil {
		return 0, err
	}
	names, err := catalog.CategoryNames(c, kind)
	if err != nil {
		return 0, err
	}

	unlock, err := lockDestination(output)
	if err != nil {
		return 0, err
	}
	defer unlock()

	f, err := os.Create(output)
	if err != nil {
		return 0, fmt.Errorf("create output %s: %w", output, err)
	}
	defer f.Close()
	if err := catalog.WriteCategoryDump(f, names); err != nil {
		return 0, fmt.Errorf("write output %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close output %s: %w", output, err)
	}
	zerolog.Ctx(ctx).Info().Str("output", output).Str("kind", kind).Int("categories", len(names)).Msg("category list written")
	return len(names), nil
}
