package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/voyagen/m3ulive/internal/allowlist"
	"github.com/voyagen/m3ulive/internal/classify"
	"github.com/voyagen/m3ulive/internal/config"
	"github.com/voyagen/m3ulive/internal/models"
	"github.com/voyagen/m3ulive/internal/playlist"
)

var (
	// ErrSourceNotFound is returned when the source playlist does not exist.
	ErrSourceNotFound = errors.New("source playlist not found")
	// ErrDestinationLocked is returned when another run holds the destination lock.
	ErrDestinationLocked = errors.New("destination is locked by another run")
)

// Mode selects how Filter walks the source.
type Mode int

const (
	// ModeAuto streams sources larger than the threshold and batches the rest.
	ModeAuto Mode = iota
	// ModeStreaming reads, classifies and writes one entry at a time.
	ModeStreaming
	// ModeBatch parses the whole source before classifying and writing.
	ModeBatch
)

func (m Mode) String() string {
	switch m {
	case ModeStreaming:
		return config.ModeStreaming
	case ModeBatch:
		return config.ModeBatch
	default:
		return config.ModeAuto
	}
}

// ParseMode maps a config mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", config.ModeAuto:
		return ModeAuto, nil
	case config.ModeStreaming:
		return ModeStreaming, nil
	case config.ModeBatch:
		return ModeBatch, nil
	}
	return ModeAuto, fmt.Errorf("%w: %q", config.ErrInvalidMode, s)
}

// ResolveMode returns forced unless it is ModeAuto, in which case sources
// larger than threshold stream and smaller ones are batched.
func ResolveMode(forced Mode, size, threshold int64) Mode {
	if forced != ModeAuto {
		return forced
	}
	if threshold <= 0 {
		threshold = config.DefaultStreamingThreshold
	}
	if size > threshold {
		return ModeStreaming
	}
	return ModeBatch
}

// progressEvery is the line interval between streaming progress records.
const progressEvery = 10000

// Filter copies the live entries of src to dst, preceded by the playlist
// header. allow, when non-nil, restricts output to its categories. ModeAuto
// is treated as streaming since the source size is unknown here.
// Both modes write the same bytes and return the same stats.
func Filter(ctx context.Context, src io.Reader, dst io.Writer, allow *models.AllowSet, mode Mode) (models.FilterStats, error) {
	w := bufio.NewWriter(dst)
	if err := playlist.WriteHeader(w); err != nil {
		return models.FilterStats{}, fmt.Errorf("write header: %w", err)
	}

	var (
		stats models.FilterStats
		err   error
	)
	if mode == ModeBatch {
		stats, err = filterBatch(ctx, src, w, allow)
	} else {
		stats, err = filterStreaming(ctx, src, w, allow)
	}
	if err != nil {
		return stats, err
	}
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}
	return stats, nil
}

func filterStreaming(ctx context.Context, src io.Reader, w io.Writer, allow *models.AllowSet) (models.FilterStats, error) {
	log := zerolog.Ctx(ctx)
	var stats models.FilterStats
	r := playlist.NewReader(src)
	nextProgress := progressEvery
	for {
		// Cancellation is observed between entries.
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("filter cancelled: %w", err)
		}
		e, ok := r.Next()
		if !ok {
			break
		}
		if err := apply(ctx, w, e, allow, &stats); err != nil {
			return stats, err
		}
		if r.Lines() >= nextProgress {
			log.Debug().Int("lines", r.Lines()).Int("entries", stats.Total).Msg("progress")
			nextProgress = (r.Lines()/progressEvery + 1) * progressEvery
		}
	}
	if err := r.Err(); err != nil {
		return stats, fmt.Errorf("read source: %w", err)
	}
	return stats, nil
}

func filterBatch(ctx context.Context, src io.Reader, w io.Writer, allow *models.AllowSet) (models.FilterStats, error) {
	var stats models.FilterStats
	entries, err := playlist.ParseAll(src)
	if err != nil {
		return stats, fmt.Errorf("read source: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Int("entries", len(entries)).Msg("source parsed")

	kept := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("filter cancelled: %w", err)
		}
		d := classify.Classify(e, allow)
		stats.Record(d)
		logDecision(ctx, e, d)
		if d == models.Keep {
			kept = append(kept, e)
		}
	}
	for _, e := range kept {
		if err := playlist.WriteEntry(w, e); err != nil {
			return stats, fmt.Errorf("write entry: %w", err)
		}
	}
	return stats, nil
}

func apply(ctx context.Context, w io.Writer, e models.Entry, allow *models.AllowSet, stats *models.FilterStats) error {
	d := classify.Classify(e, allow)
	stats.Record(d)
	logDecision(ctx, e, d)
	if d != models.Keep {
		return nil
	}
	if err := playlist.WriteEntry(w, e); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

func logDecision(ctx context.Context, e models.Entry, d models.Decision) {
	log := zerolog.Ctx(ctx)
	if d == models.Keep {
		log.Debug().Str("name", e.Name).Msg("keeping")
		return
	}
	log.Debug().Str("name", e.Name).Stringer("reason", d).Msg("filtered")
}

// FilterOptions configures FilterFile.
type FilterOptions struct {
	Input     string
	Output    string
	AllowList string // optional allow-list path
	Mode      Mode
	Threshold int64 // bytes; ModeAuto streams sources larger than this

	// Progress, when set, receives a copy of every source byte read.
	Progress io.Writer
}

// FilterResult describes a completed FilterFile run.
type FilterResult struct {
	Stats    models.FilterStats
	Mode     Mode
	Size     int64
	Allowed  int // allow-list size, 0 when no allow-list was requested
	Filtered bool
}

// FilterFile filters the playlist at opts.Input into opts.Output.
// Source and allow-list problems are reported before the output is touched.
func FilterFile(ctx context.Context, opts FilterOptions) (FilterResult, error) {
	log := zerolog.Ctx(ctx)
	var res FilterResult

	info, err := os.Stat(opts.Input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, fmt.Errorf("%w: %s", ErrSourceNotFound, opts.Input)
		}
		return res, fmt.Errorf("stat source %s: %w", opts.Input, err)
	}
	res.Size = info.Size()
	res.Mode = ResolveMode(opts.Mode, res.Size, opts.Threshold)
	log.Info().
		Str("input", opts.Input).
		Str("size", humanize.Bytes(uint64(res.Size))).
		Stringer("mode", res.Mode).
		Msg("reading playlist")

	var allow *models.AllowSet
	if opts.AllowList != "" {
		allow, err = allowlist.Load(opts.AllowList)
		if err != nil {
			return res, err
		}
		res.Allowed = allow.Len()
		res.Filtered = true
		log.Info().Str("path", opts.AllowList).Int("groups", allow.Len()).Msg("group filter loaded")
	}

	src, err := os.Open(opts.Input)
	if err != nil {
		return res, fmt.Errorf("open source %s: %w", opts.Input, err)
	}
	defer src.Close()

	unlock, err := lockDestination(opts.Output)
	if err != nil {
		return res, err
	}
	defer unlock()

	dst, err := os.Create(opts.Output)
	if err != nil {
		return res, fmt.Errorf("create output %s: %w", opts.Output, err)
	}
	defer dst.Close()

	var in io.Reader = src
	if opts.Progress != nil {
		in = io.TeeReader(src, opts.Progress)
	}
	res.Stats, err = Filter(ctx, in, dst, allow, res.Mode)
	if err != nil {
		return res, err
	}
	if err := dst.Close(); err != nil {
		return res, fmt.Errorf("close output %s: %w", opts.Output, err)
	}
	log.Info().Str("output", opts.Output).Int("kept", res.Stats.Kept).Int("total", res.Stats.Total).Msg("filtered playlist written")
	return res, nil
}

// lockDestination takes an advisory lock on path+".lock" so two runs cannot
// write the same file at once. The lock file stays on disk after unlock.
func lockDestination(path string) (func(), error) {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lock.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDestinationLocked, path)
	}
	return func() { _ = lock.Unlock() }, nil
}
