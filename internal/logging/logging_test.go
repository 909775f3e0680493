package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesJSONWithRunID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Console: &buf, App: "test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()
	l.Debug().Str("path", "in.m3u").Msg("reading")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("console output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["app"] != "test" || rec["path"] != "in.m3u" || rec["message"] != "reading" {
		t.Fatalf("unexpected record %v", rec)
	}
	if run, _ := rec["run"].(string); len(run) != 36 {
		t.Fatalf("expected a uuid run id, got %v", rec["run"])
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "warning", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info record written at warn level: %q", buf.String())
	}
}

func TestFileSinkKeepsWarningsOnly(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Console: &buf, FileDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info().Msg("info record")
	l.Warn().Msg("warn record")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(l.FilePath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(data), "info record") {
		t.Fatalf("file sink contains info record: %q", data)
	}
	if !strings.Contains(string(data), "warn record") {
		t.Fatalf("file sink missing warn record: %q", data)
	}
	if !strings.Contains(buf.String(), "info record") {
		t.Fatalf("console missing info record: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
