package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagen/m3ulive/internal/playlist"
)

// ListGroups collects the group titles of the playlist at input. When output
// is set the sorted groups are also written there in allow-list format.
func ListGroups(ctx context.Context, input, output string) (*playlist.GroupReport, error) {
	src, err := os.Open(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, input)
		}
		return nil, fmt.Errorf("open source %s: %w", input, err)
	}
	defer src.Close()

	report, err := playlist.CollectGroups(src)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", input, err)
	}
	zerolog.Ctx(ctx).Debug().Int("entries", report.Total).Int("groups", report.Len()).Msg("groups collected")
	if output == "" {
		return report, nil
	}

	unlock, err := lockDestination(output)
	if err != nil {
		return nil, err
	}
	defer unlock()

	f, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", output, err)
	}
	defer f.Close()
	if err := playlist.WriteGroupFile(f, report, input, time.Now()); err != nil {
		return nil, fmt.Errorf("write output %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close output %s: %w", output, err)
	}
	return report, nil
}
