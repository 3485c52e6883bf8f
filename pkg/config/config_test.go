package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
sheet_id = "abc123"
stats_root = "/stats"
credentials_file = "/creds.json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultScoreHeaders, cfg.ScoreHeaders)
	if cfg.WorksheetFilter != nil {
		t.Errorf("worksheet filter = %v, want nil", cfg.WorksheetFilter)
	}
}

func TestLoadMergesScoreHeaders(t *testing.T) {
	path := writeConfig(t, `
sheet_id = "abc123"
stats_root = "/stats"
credentials_file = "/creds.json"
score_headers = ["Best", "  ", "high score", "Best"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// User spelling wins for duplicates, defaults follow, blanks dropped.
	assert.Equal(t, []string{"Best", "high score", "Your Score", "Score", "PB"}, cfg.ScoreHeaders)
}

func TestLoadMissingFields(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"sheet_id", `stats_root = "/stats"` + "\n" + `credentials_file = "/c.json"`},
		{"stats_root", `sheet_id = "abc"` + "\n" + `credentials_file = "/c.json"`},
		{"credentials_file", `sheet_id = "abc"` + "\n" + `stats_root = "/stats"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("err = %v, want ErrMissingField", err)
			}
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := &Config{
		SheetID:         "abc123",
		StatsRoot:       "/stats",
		CredentialsFile: "/creds.json",
		PollInterval:    10,
		ScoreHeaders:    []string{"High Score"},
		WorksheetFilter: []string{"Bench"},
		ListenAddress:   ":8080",
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, cfg.SheetID, loaded.SheetID)
	assert.Equal(t, float64(10), loaded.PollInterval)
	assert.Equal(t, []string{"Bench"}, loaded.WorksheetFilter)
	assert.Equal(t, ":8080", loaded.ListenAddress)
}

func TestPaths(t *testing.T) {
	p := Paths{BaseDir: "/data"}
	assert.Equal(t, filepath.Join("/data", "config.toml"), p.ConfigFile())
	assert.Equal(t, filepath.Join("/data", "state.json"), p.StateFile())
}
