package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"github.com/voyagen/m3ulive/internal/allowlist"
	"github.com/voyagen/m3ulive/internal/config"
	"github.com/voyagen/m3ulive/internal/models"
)

const mixedPlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="cnn.us" tvg-name="CNN" tvg-logo="http://logo/cnn.png" group-title="News",CNN HD
http://x/stream/1.ts
#EXTINF:-1 group-title="Drama",Breaking Bad S02E05
http://x/series/u/p/2.mkv
#EXTINF:-1 group-title="Movies",Inception (2010)
http://x/movie/u/p/3.mkv
#EXTINF:-1 group-title="Rentals",Box Office
http://x/stream/4.ts
#EXTINF:-1 group-title="Sports",Sky Sports 1
http://x/stream/5.ts
# a stray comment
#EXTINF:-1 group-title="Sports"
http://x/stream/6.ts

#EXTINF:-1,No Group Channel
http://x/stream/7.ts
`

func TestFilterStreamingMatchesBatch(t *testing.T) {
	allowSets := map[string]*models.AllowSet{
		"no allow-list": nil,
		"sports only":   models.NewAllowSet("Sports"),
		"empty":         models.NewAllowSet(),
	}
	for name, allow := range allowSets {
		t.Run(name, func(t *testing.T) {
			var streamed, batched bytes.Buffer
			sStats, err := Filter(context.Background(), strings.NewReader(mixedPlaylist), &streamed, allow, ModeStreaming)
			if err != nil {
				t.Fatalf("streaming Filter: %v", err)
			}
			bStats, err := Filter(context.Background(), strings.NewReader(mixedPlaylist), &batched, allow, ModeBatch)
			if err != nil {
				t.Fatalf("batch Filter: %v", err)
			}
			if streamed.String() != batched.String() {
				t.Fatalf("outputs differ:\nstreaming %q\nbatch     %q", streamed.String(), batched.String())
			}
			if sStats != bStats {
				t.Fatalf("stats differ: streaming %+v batch %+v", sStats, bStats)
			}
		})
	}
}

func TestFilterStats(t *testing.T) {
	var out bytes.Buffer
	stats, err := Filter(context.Background(), strings.NewReader(mixedPlaylist), &out, nil, ModeStreaming)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := models.FilterStats{Total: 7, Kept: 4, Series: 1, Movies: 1, OtherVOD: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
	wantOut := "#EXTM3U\n" +
		`#EXTINF:-1 tvg-id="cnn.us" tvg-name="CNN" tvg-logo="http://logo/cnn.png" group-title="News",CNN HD` + "\n" +
		"http://x/stream/1.ts\n" +
		`#EXTINF:-1 group-title="Sports",Sky Sports 1` + "\n" +
		"http://x/stream/5.ts\n" +
		`#EXTINF:-1 group-title="Sports",` + "\n" +
		"http://x/stream/6.ts\n" +
		"#EXTINF:-1,No Group Channel\n" +
		"http://x/stream/7.ts\n"
	if out.String() != wantOut {
		t.Fatalf("output = %q, want %q", out.String(), wantOut)
	}
}

func TestFilterLongMetadataLineDoesNotAbort(t *testing.T) {
	src := "#EXTM3U\n" +
		`#EXTINF:-1 tvg-logo="http://logo/` + strings.Repeat("x", 2<<20) + `" group-title="News",Big Logo` + "\n" +
		"http://x/1.ts\n" +
		`#EXTINF:-1 group-title="News",CNN HD` + "\n" +
		"http://x/2.ts\n"
	for _, mode := range []Mode{ModeStreaming, ModeBatch} {
		var out bytes.Buffer
		stats, err := Filter(context.Background(), strings.NewReader(src), &out, nil, mode)
		if err != nil {
			t.Fatalf("%s Filter: %v", mode, err)
		}
		if stats.Total != 2 || stats.Kept != 2 {
			t.Fatalf("%s stats = %+v, want 2 kept", mode, stats)
		}
		if !strings.HasSuffix(out.String(), "#EXTINF:-1 group-title=\"News\",CNN HD\nhttp://x/2.ts\n") {
			t.Fatalf("%s output is missing the entry after the long line", mode)
		}
	}
}

func TestFilterWithAllowList(t *testing.T) {
	var out bytes.Buffer
	stats, err := Filter(context.Background(), strings.NewReader(mixedPlaylist), &out, models.NewAllowSet("Sports", "Drama"), ModeBatch)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := models.FilterStats{Total: 7, Kept: 2, Series: 1, Category: 4}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestFilterOutputIsFixedPoint(t *testing.T) {
	for _, allow := range []*models.AllowSet{nil, models.NewAllowSet("Sports")} {
		var first, second bytes.Buffer
		firstStats, err := Filter(context.Background(), strings.NewReader(mixedPlaylist), &first, allow, ModeStreaming)
		if err != nil {
			t.Fatalf("first pass: %v", err)
		}
		stats, err := Filter(context.Background(), bytes.NewReader(first.Bytes()), &second, allow, ModeStreaming)
		if err != nil {
			t.Fatalf("second pass: %v", err)
		}
		if stats.Rejected() != 0 {
			t.Fatalf("second pass rejected entries: %+v", stats)
		}
		if stats.Kept != firstStats.Kept {
			t.Fatalf("second pass kept %d, first kept %d", stats.Kept, firstStats.Kept)
		}
		if first.String() != second.String() {
			t.Fatalf("output is not a fixed point:\n%q\n%q", first.String(), second.String())
		}
	}
}

func TestFilterEmptySourceWritesHeader(t *testing.T) {
	var out bytes.Buffer
	stats, err := Filter(context.Background(), strings.NewReader(""), &out, nil, ModeAuto)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.String() != "#EXTM3U\n" {
		t.Fatalf("output = %q, want header only", out.String())
	}
	if stats != (models.FilterStats{}) {
		t.Fatalf("stats = %+v, want zero", stats)
	}
}

func TestFilterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if _, err := Filter(ctx, strings.NewReader(mixedPlaylist), &out, nil, ModeStreaming); !errors.Is(err, context.Canceled) {
		t.Fatalf("Filter error = %v, want context.Canceled", err)
	}
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		forced Mode
		size   int64
		want   Mode
	}{
		{ModeAuto, 10, ModeBatch},
		{ModeAuto, config.DefaultStreamingThreshold, ModeBatch},
		{ModeAuto, config.DefaultStreamingThreshold + 1, ModeStreaming},
		{ModeBatch, 10 * config.DefaultStreamingThreshold, ModeBatch},
		{ModeStreaming, 10, ModeStreaming},
	}
	for _, tt := range tests {
		if got := ResolveMode(tt.forced, tt.size, 0); got != tt.want {
			t.Fatalf("ResolveMode(%v, %d) = %v, want %v", tt.forced, tt.size, got, tt.want)
		}
	}
	if got := ResolveMode(ModeAuto, 200, 100); got != ModeStreaming {
		t.Fatalf("custom threshold ignored: %v", got)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeAuto, "auto": ModeAuto, "Streaming": ModeStreaming, "batch": ModeBatch} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("parallel"); !errors.Is(err, config.ErrInvalidMode) {
		t.Fatalf("ParseMode(parallel) error = %v, want ErrInvalidMode", err)
	}
}

func TestFilterFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.m3u")
	out := filepath.Join(dir, "out.m3u")
	groups := filepath.Join(dir, "groups.txt")
	writeFile(t, in, mixedPlaylist)
	writeFile(t, groups, "# wanted\nNews\n\nSports\n")

	var progress bytes.Buffer
	res, err := FilterFile(context.Background(), FilterOptions{
		Input:     in,
		Output:    out,
		AllowList: groups,
		Progress:  &progress,
	})
	if err != nil {
		t.Fatalf("FilterFile: %v", err)
	}
	if res.Mode != ModeBatch {
		t.Fatalf("Mode = %v, want batch for a small file", res.Mode)
	}
	if res.Allowed != 2 || !res.Filtered {
		t.Fatalf("allow-list not reported: %+v", res)
	}
	if res.Stats.Kept != 3 || res.Stats.Category != 4 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
	if progress.String() != mixedPlaylist {
		t.Fatal("progress writer did not see the whole source")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "#EXTM3U\n") || strings.Count(string(data), "#EXTINF") != 3 {
		t.Fatalf("unexpected output %q", data)
	}
	lock := flock.New(out + ".lock")
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("destination lock still held after FilterFile: %v, %v", ok, err)
	}
	_ = lock.Unlock()
}

func TestFilterFileForcedModesAgree(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.m3u")
	writeFile(t, in, mixedPlaylist)
	outputs := make(map[Mode]string)
	for _, mode := range []Mode{ModeStreaming, ModeBatch} {
		out := filepath.Join(dir, mode.String()+".m3u")
		res, err := FilterFile(context.Background(), FilterOptions{Input: in, Output: out, Mode: mode})
		if err != nil {
			t.Fatalf("FilterFile(%v): %v", mode, err)
		}
		if res.Mode != mode {
			t.Fatalf("forced mode %v resolved to %v", mode, res.Mode)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		outputs[mode] = string(data)
	}
	if outputs[ModeStreaming] != outputs[ModeBatch] {
		t.Fatal("streaming and batch files differ")
	}
}

func TestFilterFileSourceNotFound(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.m3u")
	_, err := FilterFile(context.Background(), FilterOptions{Input: filepath.Join(dir, "missing.m3u"), Output: out})
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("FilterFile error = %v, want ErrSourceNotFound", err)
	}
	if !strings.Contains(err.Error(), "missing.m3u") {
		t.Fatalf("error %q does not name the source", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output created despite missing source: %v", err)
	}
}

func TestFilterFileAllowListUnreadable(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.m3u")
	out := filepath.Join(dir, "out.m3u")
	writeFile(t, in, mixedPlaylist)
	_, err := FilterFile(context.Background(), FilterOptions{Input: in, Output: out, AllowList: filepath.Join(dir, "nope.txt")})
	if !errors.Is(err, allowlist.ErrAllowListUnreadable) {
		t.Fatalf("FilterFile error = %v, want ErrAllowListUnreadable", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output created despite unreadable allow-list: %v", err)
	}
}

func TestFilterFileDestinationLocked(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.m3u")
	out := filepath.Join(dir, "out.m3u")
	writeFile(t, in, mixedPlaylist)

	held := flock.New(out + ".lock")
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer held.Unlock()

	if _, err := FilterFile(context.Background(), FilterOptions{Input: in, Output: out}); !errors.Is(err, ErrDestinationLocked) {
		t.Fatalf("FilterFile error = %v, want ErrDestinationLocked", err)
	}
}

func TestOutputsRespectDestinationLock(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.m3u")
	panel := filepath.Join(dir, "panel.json")
	out := filepath.Join(dir, "out.txt")
	writeFile(t, in, mixedPlaylist)
	writeFile(t, panel, panelJSON)

	held := flock.New(out + ".lock")
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer held.Unlock()

	if _, err := ListGroups(context.Background(), in, out); !errors.Is(err, ErrDestinationLocked) {
		t.Fatalf("ListGroups error = %v, want ErrDestinationLocked", err)
	}
	if _, err := DumpCategoriesFile(context.Background(), panel, "live", out); !errors.Is(err, ErrDestinationLocked) {
		t.Fatalf("DumpCategoriesFile error = %v, want ErrDestinationLocked", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output written while locked: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
