package playlist

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/voyagen/m3ulive/internal/models"
)

// Reader yields playlist entries one at a time, holding at most one pending
// metadata line. Memory use does not grow with the playlist.
type Reader struct {
	br      *bufio.Reader
	pending *models.Entry
	lines   int
	done    bool
	err     error
}

// NewReader returns a Reader over r. Lines of any length are accepted.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next complete entry. ok is false at end of input or on a
// read error; call Err to tell them apart.
func (r *Reader) Next() (e models.Entry, ok bool) {
	for !r.done {
		raw, err := r.br.ReadString('\n')
		if err != nil {
			r.done = true
			if !errors.Is(err, io.EOF) {
				r.err = err
				break
			}
			if raw == "" {
				break
			}
		}
		r.lines++
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			continue
		case IsMetadataLine(line):
			// Previous EXTINF without URL is dropped.
			parsed := ParseMetadataLine(line)
			r.pending = &parsed
		case strings.HasPrefix(line, "#"):
			continue
		default:
			if r.pending == nil {
				continue
			}
			e = *r.pending
			e.StreamURL = line
			r.pending = nil
			return e, true
		}
	}
	return models.Entry{}, false
}

// Err returns the first read error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Lines returns the number of source lines consumed so far.
func (r *Reader) Lines() int {
	return r.lines
}

// ParseAll reads every entry of r into memory.
func ParseAll(r io.Reader) ([]models.Entry, error) {
	var entries []models.Entry
	pr := NewReader(r)
	for {
		e, ok := pr.Next()
		if !ok {
			break
		}
		entries = append(entries, e)
	}
	if err := pr.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
