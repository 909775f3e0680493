package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/voyagen/m3ulive/internal/models"
	"github.com/voyagen/m3ulive/internal/playlist"
)

func newTable(title string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}
	return tw
}

// renderStats renders the filtering statistics. The group row only appears
// when an allow-list was in effect.
func renderStats(s models.FilterStats, grouped bool) string {
	tw := newTable("Filtering statistics")
	tw.AppendRow(table.Row{"Total entries processed", s.Total})
	tw.AppendRow(table.Row{"Live channels kept", s.Kept})
	tw.AppendRow(table.Row{"Series filtered out", s.Series})
	tw.AppendRow(table.Row{"Movies filtered out", s.Movies})
	tw.AppendRow(table.Row{"Other content filtered out", s.OtherVOD})
	if grouped {
		tw.AppendRow(table.Row{"Groups filtered out", s.Category})
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"Total filtered out", s.Rejected()})
	if s.Total > 0 {
		tw.AppendRow(table.Row{"Live channels percentage", percent(s.Kept, s.Total)})
		tw.AppendRow(table.Row{"Filtered content percentage", percent(s.Rejected(), s.Total)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	return tw.Render()
}

func percent(n, total int) string {
	return strconv.FormatFloat(float64(n)*100/float64(total), 'f', 1, 64) + "%"
}

// renderGroups renders up to limit groups with their position; limit < 0
// renders all of them.
func renderGroups(groups []string, limit int) string {
	tw := newTable("")
	tw.AppendHeader(table.Row{"#", "Group"})
	for i, g := range groups {
		if limit >= 0 && i >= limit {
			break
		}
		tw.AppendRow(table.Row{i + 1, g})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})
	return tw.Render()
}

func renderPrefixes(prefixes []playlist.PrefixCount) string {
	tw := newTable("Most common group prefixes")
	tw.AppendHeader(table.Row{"Prefix", "Groups"})
	for _, p := range prefixes {
		tw.AppendRow(table.Row{p.Prefix, p.Count})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	return tw.Render()
}

// printKeyValues prints aligned "key: value" lines, skipping empty values.
func printKeyValues(w io.Writer, pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		if p[1] != "" && len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		fmt.Fprintf(w, "%-*s %s\n", width+1, p[0]+":", p[1])
	}
}
