// Package uploader drives synchronization passes: it ingests new KovaaK's
// stats files, resolves each scenario to its sheet cells and keeps the
// remote personal-best cells up to date.
package uploader

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/XWAP06yg/viscose-uploader/pkg/config"
	"github.com/XWAP06yg/viscose-uploader/pkg/sheets"
	"github.com/XWAP06yg/viscose-uploader/pkg/state"
	"github.com/XWAP06yg/viscose-uploader/pkg/stats"
)

// Uploader owns one spreadsheet's synchronization. Only one pass may be in
// flight against a given state file at a time; the watch loop guarantees
// that by running passes sequentially.
type Uploader struct {
	paths  config.Paths
	cfg    *config.Config
	client *sheets.Client

	mu     sync.RWMutex
	status Status
}

// Status is a read-only snapshot of the uploader's progress, served by the
// status endpoint.
type Status struct {
	LastPass  time.Time                 `json:"last_pass"`
	Passes    int                       `json:"passes"`
	Updated   bool                      `json:"updated"`
	Scenarios map[string]ScenarioStatus `json:"scenarios"`
}

// ScenarioStatus summarizes one scenario for the status endpoint.
type ScenarioStatus struct {
	BestScore *float64 `json:"best_score"`
	Worksheet string   `json:"worksheet,omitempty"`
	ScoreCell string   `json:"score_cell,omitempty"`
}

func New(paths config.Paths, cfg *config.Config, client *sheets.Client) *Uploader {
	return &Uploader{paths: paths, cfg: cfg, client: client}
}

// Status returns a copy of the latest pass snapshot.
func (u *Uploader) Status() Status {
	u.mu.RLock()
	defer u.mu.RUnlock()
	snapshot := u.status
	snapshot.Scenarios = make(map[string]ScenarioStatus, len(u.status.Scenarios))
	for name, entry := range u.status.Scenarios {
		snapshot.Scenarios[name] = entry
	}
	return snapshot
}

// ProcessOnce runs a single synchronization pass and reports whether any
// remote write occurred. With skipProcessed false every stats file is
// re-ingested, forcing a full resync.
//
// Per-run failures (unresolvable scenario, failed write) are logged and
// skipped; pass-wide failures (state load, worksheet listing) end the pass
// with partial progress preserved.
func (u *Uploader) ProcessOnce(skipProcessed bool) (bool, error) {
	u.client.Reset()

	st, err := state.Load(u.paths.StateFile())
	if err != nil {
		return false, err
	}

	runs, processed, err := u.collectRuns(st.ProcessedFiles, skipProcessed)
	if err != nil {
		return false, err
	}

	if len(runs) == 0 {
		st.ProcessedFiles = processed
		if err := state.Save(u.paths.StateFile(), st); err != nil {
			return false, err
		}
		u.recordStatus(st, false)
		return false, nil
	}

	seen := make(map[string]bool, len(processed))
	for _, path := range processed {
		seen[path] = true
	}
	markAttempted := func(run stats.ScenarioRun) {
		if !seen[run.SourceFile] {
			seen[run.SourceFile] = true
			processed = append(processed, run.SourceFile)
		}
	}

	updated := false
	for _, run := range runs {
		wrote, err := u.syncRun(st, run)
		if err != nil {
			// Metadata-level failure: end the pass, keeping the progress
			// made so far. The current run's file stays unprocessed so
			// the next pass retries it.
			st.ProcessedFiles = processed
			if saveErr := state.Save(u.paths.StateFile(), st); saveErr != nil {
				log.Errorf("Failed to save state: %v", saveErr)
			}
			u.recordStatus(st, updated)
			return updated, err
		}
		markAttempted(run)
		if wrote {
			updated = true
		}
	}

	st.ProcessedFiles = processed
	if err := state.Save(u.paths.StateFile(), st); err != nil {
		return updated, err
	}
	u.recordStatus(st, updated)
	return updated, nil
}

// syncRun applies the personal-best policy for one run. Failures local to
// the run (unresolvable scenario, unreadable grid, failed write) are
// logged and swallowed; only a remote metadata failure during resolution
// is returned, aborting the pass.
func (u *Uploader) syncRun(st *state.AppState, run stats.ScenarioRun) (bool, error) {
	entry := st.Scenario(run.Scenario)

	var hint *sheets.Target
	if entry.Worksheet != "" && entry.ScoreCell != "" && entry.ScenarioCell != "" {
		hint = &sheets.Target{
			Worksheet:    entry.Worksheet,
			ScoreCell:    entry.ScoreCell,
			ScenarioCell: entry.ScenarioCell,
		}
	}

	target, err := u.client.ResolveTarget(
		u.cfg.SheetID, run.Scenario, u.cfg.ScoreHeaders, u.cfg.WorksheetFilter, hint)
	if err != nil {
		if errors.Is(err, sheets.ErrRemote) {
			return false, err
		}
		log.Warnf("Skipping update for %q: %v", run.Scenario, err)
		return false, nil
	}

	entry.Worksheet = target.Worksheet
	entry.ScoreCell = target.ScoreCell
	entry.ScenarioCell = target.ScenarioCell

	isNewBest := entry.BestScore == nil || run.Score > *entry.BestScore
	targetValue := run.Score
	if !isNewBest {
		targetValue = *entry.BestScore
	}

	sheetValue, haveValue, err := u.client.NumericCell(u.cfg.SheetID, target.Worksheet, target.ScoreCell)
	if err != nil {
		log.Warnf("Skipping update for %q: %v", run.Scenario, err)
		return false, nil
	}
	if haveValue && scoresEqual(sheetValue, targetValue) && !isNewBest {
		// Sheet already holds the value and this run is not a PB.
		return false, nil
	}

	mirrors, err := u.client.FindMirrorCells(
		u.cfg.SheetID, target.Worksheet, target.ScoreCell, u.cfg.ScoreHeaders)
	if err != nil {
		log.Warnf("Skipping update for %q: %v", run.Scenario, err)
		return false, nil
	}

	formatted := FormatScore(targetValue)
	if isNewBest {
		log.Infof("Updating %s on %s with score %s (new PB)", run.Scenario, target.Worksheet, formatted)
	} else {
		log.Infof("Syncing %s on %s to score %s", run.Scenario, target.Worksheet, formatted)
	}

	if err := u.client.WriteCell(
		u.cfg.SheetID, sheets.RangeRef(target.Worksheet, target.ScoreCell), targetValue); err != nil {
		log.Warnf("Skipping update for %q: %v", run.Scenario, err)
		return false, nil
	}

	if len(mirrors) > 0 {
		log.Infof("Also syncing columns %s", strings.Join(mirrors, ", "))
		for _, cell := range mirrors {
			if err := u.client.WriteCell(
				u.cfg.SheetID, sheets.RangeRef(target.Worksheet, cell), targetValue); err != nil {
				log.Warnf("Failed to sync mirror cell %s for %q: %v", cell, run.Scenario, err)
			}
		}
	}

	if isNewBest {
		score := run.Score
		entry.BestScore = &score
	}
	return true, nil
}

// collectRuns lists stats files oldest first and parses the ones not yet
// processed. Unparsable new files are marked processed right away so a
// permanently broken file is not retried each pass; parseable files are
// only marked once their run has been attempted, so a pass that aborts
// mid-way leaves the unreached runs pending.
func (u *Uploader) collectRuns(alreadyProcessed []string, skipProcessed bool) ([]stats.ScenarioRun, []string, error) {
	files, err := stats.ListStatsFiles(u.cfg.StatsRoot)
	if err != nil {
		return nil, nil, err
	}

	processedSet := make(map[string]bool, len(alreadyProcessed))
	processed := make([]string, 0, len(alreadyProcessed)+len(files))
	for _, path := range alreadyProcessed {
		processedSet[path] = true
		processed = append(processed, path)
	}

	var runs []stats.ScenarioRun
	for _, path := range files {
		if skipProcessed && processedSet[path] {
			continue
		}
		run, err := stats.ParseStatsFile(path, stats.DefaultScoreField)
		if err != nil {
			log.Warnf("Failed to parse %s: %v", path, err)
			if !processedSet[path] {
				processedSet[path] = true
				processed = append(processed, path)
			}
			continue
		}
		runs = append(runs, run)
	}
	return runs, processed, nil
}

func (u *Uploader) recordStatus(st *state.AppState, updated bool) {
	scenarios := make(map[string]ScenarioStatus, len(st.Scenarios))
	for name, entry := range st.Scenarios {
		var best *float64
		if entry.BestScore != nil {
			score := *entry.BestScore
			best = &score
		}
		scenarios[name] = ScenarioStatus{
			BestScore: best,
			Worksheet: entry.Worksheet,
			ScoreCell: entry.ScoreCell,
		}
	}
	u.mu.Lock()
	u.status = Status{
		LastPass:  time.Now(),
		Passes:    u.status.Passes + 1,
		Updated:   updated,
		Scenarios: scenarios,
	}
	u.mu.Unlock()
}

// scoresEqual compares a sheet value against a target score within the
// tolerance used for the no-op write optimization.
func scoresEqual(a, b float64) bool {
	diff := math.Abs(a - b)
	larger := math.Max(math.Abs(a), math.Abs(b))
	return diff <= math.Max(1e-6*larger, 1e-6)
}

// FormatScore renders a score for display: integer-close values drop the
// fractional part, everything else keeps full precision.
func FormatScore(value float64) string {
	rounded := math.Round(value)
	if math.Abs(value-rounded) <= 1e-6 {
		return strconv.FormatInt(int64(rounded), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
