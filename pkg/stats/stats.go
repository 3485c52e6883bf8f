// Package stats reads KovaaK's per-run stats exports: one CSV file per
// run, holding key/value rows such as "Scenario:,Tile Frenzy" and
// "Score:,123.4".
package stats

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultScoreField is the stats row holding the run's score.
const DefaultScoreField = "Score"

// ScenarioRun is one parsed result: the scenario played, the score
// achieved, and the file it came from.
type ScenarioRun struct {
	Scenario   string
	Score      float64
	SourceFile string
}

// ParseError reports a stats file that could not be ingested. The file is
// still marked processed by the driver so a permanently broken file is not
// retried every pass.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// ListStatsFiles returns every CSV file under root, recursively, ordered
// oldest-modified first. A missing root yields an empty list.
func ListStatsFiles(root string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	type statFile struct {
		path    string
		modTime int64
	}
	var files []statFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, statFile{path: path, modTime: info.ModTime().UnixNano()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan stats root %s: %w", root, err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime < files[j].modTime
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// ParseStatsFile extracts the scenario name and score from one stats CSV.
func ParseStatsFile(path, scoreField string) (ScenarioRun, error) {
	if scoreField == "" {
		scoreField = DefaultScoreField
	}

	f, err := os.Open(path)
	if err != nil {
		return ScenarioRun{}, &ParseError{Path: path, Reason: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		scenario  string
		score     float64
		haveScore bool
	)
	scoreKey := scoreField + ":"

	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		if len(row) == 0 {
			continue
		}
		key := strings.TrimSpace(strings.TrimPrefix(row[0], "\ufeff"))
		if key == "" {
			continue
		}
		if key == "Scenario:" && len(row) > 1 {
			scenario = strings.TrimSpace(row[1])
		}
		if key == scoreKey && len(row) > 1 {
			value := strings.TrimSpace(row[1])
			score, err = strconv.ParseFloat(value, 64)
			if err != nil {
				return ScenarioRun{}, &ParseError{
					Path:   path,
					Reason: fmt.Sprintf("could not parse score value %q as a number", value),
				}
			}
			haveScore = true
		}
		if scenario != "" && haveScore {
			break
		}
	}

	if scenario == "" {
		return ScenarioRun{}, &ParseError{Path: path, Reason: "no 'Scenario:' entry found"}
	}
	if !haveScore {
		return ScenarioRun{}, &ParseError{Path: path, Reason: fmt.Sprintf("no '%s' entry found", scoreKey)}
	}

	return ScenarioRun{Scenario: scenario, Score: score, SourceFile: path}, nil
}
