package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voyagen/m3ulive/internal/service"
)

// consoleGroupPreview is how many groups are echoed when the full list goes to a file.
const consoleGroupPreview = 10

func newGroupsCommand(cc *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "groups [input]",
		Short: "List the unique group-title values of a playlist",
		Long: "List the unique group-title values of a playlist.\n\n" +
			"With --groups-output the list is written one group per line; the file\n" +
			"can be trimmed and passed to 'filter --filter-by-groups'.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := cc.cfg.Input
			if len(args) > 0 {
				input = args[0]
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "M3U Playlist Group Titles Listing")
			printKeyValues(out, [][2]string{
				{"Input file", input},
				{"Output file", output},
			})

			report, err := service.ListGroups(cmd.Context(), input, output)
			if err != nil {
				return err
			}

			groups := report.Sorted()
			fmt.Fprintf(out, "\nFound %d unique group titles in %d entries:\n", len(groups), report.Total)
			if output == "" {
				fmt.Fprintln(out, renderGroups(groups, -1))
			} else {
				fmt.Fprintf(out, "Group titles written to: %s\n", output)
				fmt.Fprintln(out, renderGroups(groups, consoleGroupPreview))
				if len(groups) > consoleGroupPreview {
					fmt.Fprintf(out, "... and %d more (see output file)\n", len(groups)-consoleGroupPreview)
				}
			}
			if prefixes := report.Prefixes(10); len(prefixes) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderPrefixes(prefixes))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "groups-output", "", "Write group titles to `FILE` (one per line)")
	return cmd
}
