// Package config loads and saves the uploader configuration from a TOML
// file in the data directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultScoreHeaders are always accepted as score-column headers, in
// addition to any the user configures.
var DefaultScoreHeaders = []string{"High Score", "Your Score", "Score", "PB"}

// DefaultPollInterval is the watch-loop poll interval in seconds.
const DefaultPollInterval = 5.0

var ErrMissingField = errors.New("missing config field")

// Config is the on-disk configuration consumed by the uploader.
type Config struct {
	SheetID         string   `toml:"sheet_id"`
	StatsRoot       string   `toml:"stats_root"`
	CredentialsFile string   `toml:"credentials_file"`
	PollInterval    float64  `toml:"poll_interval"`
	ScoreHeaders    []string `toml:"score_headers"`
	WorksheetFilter []string `toml:"worksheet_filter,omitempty"`
	ListenAddress   string   `toml:"listen_address,omitempty"`
}

// Load reads the config file at path and fills in defaults. The score
// header list always contains the built-in defaults, merged after the
// user's entries with case-insensitive dedup.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no config found at %s, create one first", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.SheetID = strings.TrimSpace(cfg.SheetID)
	if cfg.SheetID == "" {
		return nil, fmt.Errorf("%w: sheet_id", ErrMissingField)
	}
	cfg.StatsRoot = strings.TrimSpace(cfg.StatsRoot)
	if cfg.StatsRoot == "" {
		return nil, fmt.Errorf("%w: stats_root", ErrMissingField)
	}
	cfg.CredentialsFile = strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("%w: credentials_file", ErrMissingField)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	cfg.ScoreHeaders = MergeScoreHeaders(cfg.ScoreHeaders)
	cfg.WorksheetFilter = cleanList(cfg.WorksheetFilter)

	return &cfg, nil
}

// Save writes the config back out to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	b, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// MergeScoreHeaders appends the built-in defaults to the user's headers,
// dropping blanks and case-insensitive duplicates while preserving the
// first spelling seen.
func MergeScoreHeaders(userHeaders []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, candidate := range append(cleanList(userHeaders), DefaultScoreHeaders...) {
		lower := strings.ToLower(candidate)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		merged = append(merged, candidate)
	}
	return merged
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
