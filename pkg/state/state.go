// Package state persists the uploader's progress between passes: the best
// score seen per scenario, the cached sheet coordinates for each scenario,
// and the set of stats files already ingested.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ProcessedFileLimit bounds the processed-file history kept in the state
// file.
const ProcessedFileLimit = 500

// ScenarioState is what we remember about one scenario. The three cell
// fields are all-or-nothing: a score cell without its worksheet and label
// cell is useless for cache validation.
type ScenarioState struct {
	BestScore    *float64 `json:"best_score"`
	Worksheet    string   `json:"worksheet,omitempty"`
	ScoreCell    string   `json:"score_cell,omitempty"`
	ScenarioCell string   `json:"scenario_cell,omitempty"`
}

// AppState owns all per-scenario records plus the processed-file history.
type AppState struct {
	Scenarios      map[string]*ScenarioState `json:"scenarios"`
	ProcessedFiles []string                  `json:"processed_files"`
}

// Scenario returns the entry for name, creating it on first sighting.
func (s *AppState) Scenario(name string) *ScenarioState {
	if s.Scenarios == nil {
		s.Scenarios = make(map[string]*ScenarioState)
	}
	entry, ok := s.Scenarios[name]
	if !ok {
		entry = &ScenarioState{}
		s.Scenarios[name] = entry
	}
	return entry
}

// TrimProcessed keeps only the most recent ProcessedFileLimit entries.
func (s *AppState) TrimProcessed() {
	if len(s.ProcessedFiles) > ProcessedFileLimit {
		s.ProcessedFiles = s.ProcessedFiles[len(s.ProcessedFiles)-ProcessedFileLimit:]
	}
}

type rawScenario struct {
	BestScore      *float64 `json:"best_score"`
	Worksheet      string   `json:"worksheet"`
	ScoreCell      string   `json:"score_cell"`
	ScenarioCell   string   `json:"scenario_cell"`
	ProcessedFiles []string `json:"processed_files"` // legacy location
}

type rawState struct {
	Scenarios      map[string]rawScenario `json:"scenarios"`
	ProcessedFiles []string               `json:"processed_files"`
}

// Load reads the state file, returning an empty state when it does not
// exist. Unknown or missing fields default to empty; a state file written
// by the legacy layout (processed files nested under each scenario) is
// migrated on load.
func Load(path string) (*AppState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &AppState{Scenarios: make(map[string]*ScenarioState)}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var raw rawState
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}

	state := &AppState{
		Scenarios:      make(map[string]*ScenarioState, len(raw.Scenarios)),
		ProcessedFiles: raw.ProcessedFiles,
	}
	for name, entry := range raw.Scenarios {
		state.Scenarios[name] = &ScenarioState{
			BestScore:    entry.BestScore,
			Worksheet:    entry.Worksheet,
			ScoreCell:    entry.ScoreCell,
			ScenarioCell: entry.ScenarioCell,
		}
	}

	if len(state.ProcessedFiles) == 0 {
		var collected []string
		for _, entry := range raw.Scenarios {
			collected = append(collected, entry.ProcessedFiles...)
		}
		if len(collected) > ProcessedFileLimit {
			collected = collected[len(collected)-ProcessedFileLimit:]
		}
		state.ProcessedFiles = collected
	}

	return state, nil
}

// Save writes the state atomically: to a temp file in the same directory,
// then renamed over the target.
func Save(path string, state *AppState) error {
	state.TrimProcessed()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	payload = append(payload, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
