package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/voyagen/m3ulive/internal/logging"
	"github.com/voyagen/m3ulive/internal/service"
)

func newFilterCommand(cc *commandContext) *cobra.Command {
	var (
		groupsFile  string
		streaming   bool
		noStreaming bool
	)

	cmd := &cobra.Command{
		Use:   "filter [input] [output]",
		Short: "Remove series, movies and other VOD from a playlist",
		Example: "  m3ulive filter\n" +
			"  m3ulive filter input.m3u output.m3u --filter-by-groups groups.txt",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cc.cfg
			opts := service.FilterOptions{
				Input:     cfg.Input,
				Output:    cfg.Output,
				AllowList: cfg.GroupsFilterFile,
				Threshold: cfg.StreamingThreshold,
			}
			if len(args) > 0 {
				opts.Input = args[0]
			}
			if len(args) > 1 {
				opts.Output = args[1]
			}
			if cmd.Flags().Changed("filter-by-groups") {
				opts.AllowList = groupsFile
			}

			mode, err := service.ParseMode(cfg.Mode)
			if err != nil {
				return err
			}
			switch {
			case streaming:
				mode = service.ModeStreaming
			case noStreaming:
				mode = service.ModeBatch
			}
			opts.Mode = mode

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "M3U Playlist Filter - Remove Series and Movies")
			printKeyValues(out, [][2]string{
				{"Input file", opts.Input},
				{"Output file", opts.Output},
				{"Groups filter", opts.AllowList},
			})

			bar := newProgressBar(cmd.ErrOrStderr(), opts.Input, zerolog.Ctx(cmd.Context()).GetLevel())
			if bar != nil {
				opts.Progress = bar
			}
			res, err := service.FilterFile(cmd.Context(), opts)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderStats(res.Stats, res.Filtered))
			fmt.Fprintf(out, "\nFiltering complete (%s mode). Live channels playlist saved as: %s\n", res.Mode, opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&groupsFile, "filter-by-groups", "", "Only keep entries whose group-title is listed in `FILE`")
	cmd.Flags().BoolVar(&streaming, "streaming", false, "Force streaming mode")
	cmd.Flags().BoolVar(&noStreaming, "no-streaming", false, "Force batch mode (loads the whole file into memory)")
	cmd.MarkFlagsMutuallyExclusive("streaming", "no-streaming")
	return cmd
}

// newProgressBar returns a byte progress bar for input when w is a terminal
// and per-entry debug logging is off; otherwise nil.
func newProgressBar(w io.Writer, input string, level zerolog.Level) *progressbar.ProgressBar {
	if level <= zerolog.DebugLevel || !logging.IsTerminal(w) {
		return nil
	}
	info, err := os.Stat(input)
	if err != nil {
		return nil
	}
	return progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("filtering"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}
