package sheets

import (
	"regexp"
	"strings"
)

// Target names the cells backing one scenario: the worksheet, the cell
// holding the score and the cell holding the scenario label.
type Target struct {
	Worksheet    string
	ScoreCell    string
	ScenarioCell string
}

func (t Target) complete() bool {
	return t.Worksheet != "" && t.ScoreCell != "" && t.ScenarioCell != ""
}

// headerScanRows bounds how deep into a worksheet header rows are searched.
const headerScanRows = 200

var (
	nonAlnumRe  = regexp.MustCompile(`[^a-z0-9]+`)
	nonLetterRe = regexp.MustCompile(`[^a-z]+`)
)

func normalizeName(text string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(text), "")
}

func lettersOnly(text string) string {
	return nonLetterRe.ReplaceAllString(strings.ToLower(text), "")
}

// ResolveTarget determines the worksheet and cells for a scenario's score.
//
// When a cached hint is given it is validated against the live grid first:
// the label cell must still hold the scenario name and the score column
// must still look like a score column. Sheets are human-edited, so a stale
// hint taken on trust could silently overwrite an unrelated cell.
//
// Without a usable hint every candidate worksheet is scanned. An exact
// case-insensitive label match wins immediately; otherwise the fuzzy
// fallback candidate whose normalized text length is closest to the
// scenario name's is returned. No match anywhere is a ResolutionError.
func (c *Client) ResolveTarget(spreadsheetID, scenarioName string, headerCandidates, worksheetFilter []string, hint *Target) (Target, error) {
	scenarioKey := strings.ToLower(strings.TrimSpace(scenarioName))
	scenarioNorm := normalizeName(scenarioName)
	scenarioLetters := lettersOnly(scenarioName)

	headers := make([]string, 0, len(headerCandidates))
	for _, item := range headerCandidates {
		if trimmed := strings.ToLower(strings.TrimSpace(item)); trimmed != "" {
			headers = append(headers, trimmed)
		}
	}
	if len(headers) == 0 {
		headers = []string{"your score"}
	}

	if hint != nil && hint.complete() {
		grid, err := c.Values(spreadsheetID, hint.Worksheet)
		if err != nil {
			return Target{}, err
		}
		if scenarioCellMatches(grid, hint.ScenarioCell, scenarioKey) &&
			scoreCellMatches(grid, hint.ScoreCell, headers) {
			return *hint, nil
		}
	}

	titles, err := c.ListWorksheets(spreadsheetID)
	if err != nil {
		return Target{}, err
	}

	var allowed map[string]bool
	if len(worksheetFilter) > 0 {
		allowed = make(map[string]bool, len(worksheetFilter))
		for _, title := range worksheetFilter {
			allowed[strings.TrimSpace(title)] = true
		}
	}

	var (
		bestFallback Target
		bestDiff     int
		haveFallback bool
	)

	for _, title := range titles {
		if allowed != nil && !allowed[title] {
			continue
		}
		grid, err := c.Values(spreadsheetID, title)
		if err != nil {
			return Target{}, err
		}
		if len(grid) == 0 {
			continue
		}

		progressCol := findProgressColumn(grid)
		scoreColumns := findScoreColumns(grid, headers)

		for rowIdx, row := range grid {
			for colIdx, cell := range row {
				text, ok := cellString(cell)
				if !ok {
					continue
				}
				col, rowNum := colIdx+1, rowIdx+1
				if strings.ToLower(text) == scenarioKey {
					scoreCol := selectScoreColumn(col, scoreColumns, progressCol)
					return Target{
						Worksheet:    title,
						ScoreCell:    MakeCellRef(scoreCol, rowNum),
						ScenarioCell: MakeCellRef(col, rowNum),
					}, nil
				}
				cellNorm := normalizeName(text)
				if cellNorm != scenarioNorm && lettersOnly(text) != scenarioLetters {
					continue
				}
				lenDiff := len(cellNorm) - len(scenarioNorm)
				if lenDiff < 0 {
					lenDiff = -lenDiff
				}
				if !haveFallback || lenDiff < bestDiff {
					scoreCol := selectScoreColumn(col, scoreColumns, progressCol)
					bestFallback = Target{
						Worksheet:    title,
						ScoreCell:    MakeCellRef(scoreCol, rowNum),
						ScenarioCell: MakeCellRef(col, rowNum),
					}
					bestDiff = lenDiff
					haveFallback = true
				}
			}
		}
	}

	if haveFallback {
		return bestFallback, nil
	}
	return Target{}, &ResolutionError{Scenario: scenarioName}
}

// scenarioCellMatches reports whether the cached label cell still holds the
// scenario name, case-insensitively.
func scenarioCellMatches(grid Grid, scenarioCell, scenarioKey string) bool {
	row, col, ok := CellToIndexes(scenarioCell)
	if !ok || row >= len(grid) || col >= len(grid[row]) {
		return false
	}
	text, ok := cellString(grid[row][col])
	if !ok {
		return false
	}
	return strings.ToLower(text) == scenarioKey
}

// scoreCellMatches reports whether the cached score cell's column still
// looks like a score column: a header candidate appears in it within the
// first 200 rows, or the column sits immediately to the right of a
// "Progress" column.
func scoreCellMatches(grid Grid, scoreCell string, headers []string) bool {
	_, col, ok := CellToIndexes(scoreCell)
	if !ok {
		return false
	}
	progressCol := findProgressColumn(grid)
	limit := len(grid)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for _, row := range grid[:limit] {
		if col < len(row) {
			if text, ok := cellString(row[col]); ok && containsHeader(headers, text) {
				return true
			}
		}
		if progressCol > 0 {
			progressZero := progressCol - 1
			if col == progressZero+1 && progressZero < len(row) {
				if text, ok := cellString(row[progressZero]); ok && strings.EqualFold(text, "progress") {
					return true
				}
			}
		}
	}
	return false
}

func containsHeader(headers []string, text string) bool {
	lowered := strings.ToLower(text)
	for _, h := range headers {
		if h == lowered {
			return true
		}
	}
	return false
}

// findScoreColumns returns the 1-based columns whose header cells match a
// candidate, in row-major scan order, deduplicated.
func findScoreColumns(grid Grid, headers []string) []int {
	var columns []int
	limit := len(grid)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for _, row := range grid[:limit] {
		for idx, value := range row {
			text, ok := cellString(value)
			if !ok || !containsHeader(headers, text) {
				continue
			}
			col := idx + 1
			seen := false
			for _, existing := range columns {
				if existing == col {
					seen = true
					break
				}
			}
			if !seen {
				columns = append(columns, col)
			}
		}
	}
	return columns
}

// findProgressColumn returns the 1-based column of the first "Progress"
// header within the first 200 rows, or 0 when absent.
func findProgressColumn(grid Grid) int {
	limit := len(grid)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for _, row := range grid[:limit] {
		for idx, value := range row {
			if text, ok := cellString(value); ok && strings.EqualFold(text, "progress") {
				return idx + 1
			}
		}
	}
	return 0
}

// selectScoreColumn picks the 1-based score column for a matched label.
// Explicitly labeled columns win; a "Progress" column implies the score
// sits immediately to its left; failing both, the score is assumed a few
// columns right of the label. The positional rules are conventions
// observed in real sheets, not guarantees.
func selectScoreColumn(scenarioCol int, scoreColumns []int, progressCol int) int {
	if len(scoreColumns) > 0 {
		return scoreColumns[0]
	}
	if progressCol > 1 {
		return progressCol - 1
	}
	col := scenarioCol + 3
	if col < 1 {
		col = 1
	}
	return col
}
