package playlist

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// GroupReport summarises the group-title values of a playlist.
type GroupReport struct {
	Total  int
	groups map[string]struct{}
}

// PrefixCount is a group prefix and the number of groups sharing it.
type PrefixCount struct {
	Prefix string
	Count  int
}

// CollectGroups reads r and records every distinct non-empty group title.
func CollectGroups(r io.Reader) (*GroupReport, error) {
	report := &GroupReport{groups: make(map[string]struct{})}
	pr := NewReader(r)
	for {
		e, ok := pr.Next()
		if !ok {
			break
		}
		report.Total++
		if g := strings.TrimSpace(e.Category); g != "" {
			report.groups[g] = struct{}{}
		}
	}
	if err := pr.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

// Len returns the number of distinct groups.
func (g *GroupReport) Len() int {
	return len(g.groups)
}

// Sorted returns the groups ordered case-insensitively, ties broken bytewise.
func (g *GroupReport) Sorted() []string {
	fold := cases.Fold()
	out := make([]string, 0, len(g.groups))
	keys := make(map[string]string, len(g.groups))
	for name := range g.groups {
		out = append(out, name)
		keys[name] = fold.String(name)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := keys[out[i]], keys[out[j]]
		if ki != kj {
			return ki < kj
		}
		return out[i] < out[j]
	})
	return out
}

// Prefixes returns up to n of the most common group prefixes. A prefix is the
// text before " | " or " - ", or else the first word.
func (g *GroupReport) Prefixes(n int) []PrefixCount {
	counts := make(map[string]int)
	for name := range g.groups {
		counts[groupPrefix(name)]++
	}
	out := make([]PrefixCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PrefixCount{Prefix: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Prefix < out[j].Prefix
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func groupPrefix(name string) string {
	if before, _, ok := strings.Cut(name, " | "); ok {
		return before
	}
	if before, _, ok := strings.Cut(name, " - "); ok {
		return before
	}
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}

// WriteGroupFile writes the report as one group per line behind a commented
// header, so the file can be edited and used as an allow-list.
func WriteGroupFile(w io.Writer, g *GroupReport, input string, now time.Time) error {
	sorted := g.Sorted()
	var b strings.Builder
	b.WriteString("# M3U Playlist Group Analysis\n")
	fmt.Fprintf(&b, "# Input: %s\n", input)
	fmt.Fprintf(&b, "# Generated: %s\n", now.Format(time.DateTime))
	fmt.Fprintf(&b, "# Total entries: %d\n", g.Total)
	fmt.Fprintf(&b, "# Unique groups: %d\n", len(sorted))
	b.WriteString("#\n")
	for _, name := range sorted {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
