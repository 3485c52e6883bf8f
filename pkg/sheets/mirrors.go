package sheets

import "strings"

// mirrorHeaderRows bounds how deep the header scan for merged score/mirror
// headers goes.
const mirrorHeaderRows = 20

// FindMirrorCells returns the cells that duplicate the score for display
// and must be written with the same value as the primary score cell.
//
// Two layouts are recognized. Some sheets merge the score header across
// two columns, leaving a blank header cell between the score header and a
// "Progress" header; the blank column mirrors the score. Others simply
// keep a copy of the value in the column right of the score cell, with no
// header at all; when the current data row holds equal values in both
// columns that column is treated as a mirror too.
func (c *Client) FindMirrorCells(spreadsheetID, worksheet, scoreCell string, headerCandidates []string) ([]string, error) {
	grid, err := c.Values(spreadsheetID, worksheet)
	if err != nil {
		return nil, err
	}
	rowIdx, colIdx, ok := CellToIndexes(scoreCell)
	if !ok {
		return nil, nil
	}

	scoreCol := colIdx + 1 // 1-based
	headerSet := make(map[string]bool, len(headerCandidates)+1)
	for _, item := range headerCandidates {
		if trimmed := strings.ToLower(strings.TrimSpace(item)); trimmed != "" {
			headerSet[trimmed] = true
		}
	}
	headerSet["high score"] = true

	var mirrors []int

	limit := len(grid)
	if limit > mirrorHeaderRows {
		limit = mirrorHeaderRows
	}
	for _, headerRow := range grid[:limit] {
		if len(headerRow) < scoreCol {
			continue
		}
		headerText, ok := cellString(headerRow[scoreCol-1])
		if !ok || !headerSet[strings.ToLower(headerText)] {
			continue
		}
		neighbourBlank := true
		if len(headerRow) > scoreCol {
			if text, isText := cellString(headerRow[scoreCol]); isText && text != "" {
				neighbourBlank = false
			}
		}
		progressLabelled := false
		if len(headerRow) > scoreCol+1 {
			if text, isText := cellString(headerRow[scoreCol+1]); isText && strings.EqualFold(text, "progress") {
				progressLabelled = true
			}
		}
		if neighbourBlank && progressLabelled {
			mirrors = append(mirrors, scoreCol+1)
		}
		break
	}

	// A sheet without a formal Progress header may still mirror the value
	// into the next column on the data row itself.
	if rowIdx < len(grid) {
		row := grid[rowIdx]
		if len(row) > colIdx+1 && row[colIdx] == row[colIdx+1] {
			mirrorCol := scoreCol + 1
			seen := false
			for _, existing := range mirrors {
				if existing == mirrorCol {
					seen = true
					break
				}
			}
			if !seen {
				mirrors = append(mirrors, mirrorCol)
			}
		}
	}

	cells := make([]string, 0, len(mirrors))
	for _, col := range mirrors {
		cells = append(cells, MakeCellRef(col, rowIdx+1))
	}
	return cells, nil
}
