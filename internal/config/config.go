package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Processing modes accepted by Config.Mode.
const (
	ModeAuto      = "auto"
	ModeStreaming = "streaming"
	ModeBatch     = "batch"
)

// DefaultStreamingThreshold is the source size above which auto mode streams.
const DefaultStreamingThreshold int64 = 1024 * 1024

var (
	// ErrInvalidMode is returned for a processing mode other than auto, streaming or batch.
	ErrInvalidMode = errors.New("invalid processing mode")
	// ErrInvalidValue is returned when an environment value cannot be parsed.
	ErrInvalidValue = errors.New("invalid config value")
)

// Config holds the paths and switches for one run. It is built once at the
// command boundary and passed down explicitly.
type Config struct {
	Input              string `yaml:"input" toml:"input" env:"PLAYLIST_INPUT"`
	Output             string `yaml:"output" toml:"output" env:"PLAYLIST_OUTPUT"`
	GroupsFilterFile   string `yaml:"groups_filter_file" toml:"groups_filter_file" env:"GROUPS_FILTER_FILE"`
	Mode               string `yaml:"mode" toml:"mode" env:"PROCESSING_MODE"`
	StreamingThreshold int64  `yaml:"streaming_threshold" toml:"streaming_threshold" env:"STREAMING_THRESHOLD"`

	PanelFile       string `yaml:"panel_file" toml:"panel_file" env:"PANEL_FILE"`
	PanelFilterFile string `yaml:"panel_filter_file" toml:"panel_filter_file" env:"PANEL_FILTER_FILE"`
	CatalogOutput   string `yaml:"out_m3u_file" toml:"out_m3u_file" env:"OUT_M3U_FILE"`

	LogLevel  string `yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	LogToFile bool   `yaml:"log_to_file" toml:"log_to_file" env:"LOG_TO_FILE_ENABLED"`
	LogDir    string `yaml:"log_dir" toml:"log_dir" env:"LOG_DIR"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Input:              "filtered.m3u",
		Output:             "live_channels.m3u",
		Mode:               ModeAuto,
		StreamingThreshold: DefaultStreamingThreshold,
		PanelFile:          "KY-panel.json",
		PanelFilterFile:    "KY-filter_all.json",
		CatalogOutput:      "ky-filter-1.m3u",
		LogLevel:           "info",
	}
}

// Load builds config from defaults and environment variables.
// .env.local and .env in the working and executable directories fill in
// variables that are not already set.
func Load() (*Config, error) {
	loadEnvFiles()
	c := Default()
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

// applyEnv overrides fields from the variables named by their env tags.
// Empty values are ignored.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		raw, ok := lookup(key)
		if !ok || raw == "" {
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 0 {
				return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, raw)
			}
			field.SetInt(n)
		case reflect.Bool:
			b, err := ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, raw)
			}
			field.SetBool(b)
		default:
			return fmt.Errorf("config: unsupported env field %s", t.Field(i).Name)
		}
	}
	return nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case "":
		c.Mode = ModeAuto
	case ModeAuto, ModeStreaming, ModeBatch:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if c.StreamingThreshold <= 0 {
		c.StreamingThreshold = DefaultStreamingThreshold
	}
	return nil
}

// ParseBool accepts y/yes/t/true/on/1 and n/no/f/false/off/0, any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid truth value %q", s)
}
