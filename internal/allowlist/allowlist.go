// Package allowlist loads the operator's list of permitted categories.
package allowlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/voyagen/m3ulive/internal/models"
)

// ErrAllowListUnreadable is returned when an allow-list file was requested
// but could not be opened or read.
var ErrAllowListUnreadable = errors.New("allow-list unreadable")

// Read builds an AllowSet from r, one category per line. Surrounding
// whitespace is stripped; blank lines and lines starting with '#' are skipped.
func Read(r io.Reader) (*models.AllowSet, error) {
	set := models.NewAllowSet()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// Load reads the allow-list file at path.
func Load(path string) (*models.AllowSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAllowListUnreadable, path, err)
	}
	defer f.Close()
	set, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAllowListUnreadable, path, err)
	}
	return set, nil
}
