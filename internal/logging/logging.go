// Package logging builds the zerolog logger used by the command line tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options describes logger construction parameters.
type Options struct {
	Level   string
	Console io.Writer // defaults to os.Stderr
	// FileDir, when set, adds a warn-level JSON sink process_log_<unix>.log in that directory.
	FileDir string
	App     string
}

// Logger is a zerolog logger plus the log file it writes to, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New constructs a logger. The console sink is human readable on a terminal
// and JSON otherwise; every record carries a run id.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	if IsTerminal(console) {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}
	}

	l := &Logger{}
	var out io.Writer = console
	if opts.FileDir != "" {
		if err := os.MkdirAll(opts.FileDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		path := filepath.Join(opts.FileDir, fmt.Sprintf("process_log_%d.log", time.Now().Unix()))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		out = zerolog.MultiLevelWriter(console, minLevelWriter{w: f, min: zerolog.WarnLevel})
	}

	app := opts.App
	if app == "" {
		app = "m3ulive"
	}
	l.Logger = zerolog.New(out).Level(level).With().
		Timestamp().
		Str("app", app).
		Str("run", uuid.NewString()).
		Logger()
	return l, nil
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the path of the log file, or "".
func (l *Logger) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// ParseLevel maps a level name to a zerolog level; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: unsupported value %q", s)
	}
	return level, nil
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// minLevelWriter drops records below min.
type minLevelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (m minLevelWriter) Write(p []byte) (int, error) {
	return m.w.Write(p)
}

func (m minLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < m.min {
		return len(p), nil
	}
	return m.w.Write(p)
}
