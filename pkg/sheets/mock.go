package sheets

import (
	"strings"
)

// MockWrite records one UpdateCell call against a MockValues backend.
type MockWrite struct {
	SpreadsheetID string
	RangeRef      string
	Value         float64
}

// MockValues is an in-memory ValuesAPI used by tests in this package and
// in the uploader.
type MockValues struct {
	Titles []string
	Grids  map[string]Grid

	ListErr   error
	GetErr    map[string]error
	UpdateErr error

	ListCalls int
	GetCalls  map[string]int
	Writes    []MockWrite
}

func NewMockValues() *MockValues {
	return &MockValues{
		Grids:    make(map[string]Grid),
		GetErr:   make(map[string]error),
		GetCalls: make(map[string]int),
	}
}

func (m *MockValues) ListWorksheets(spreadsheetID string) ([]string, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, &RemoteError{Op: "list worksheets", Err: m.ListErr}
	}
	return m.Titles, nil
}

func (m *MockValues) GetValues(spreadsheetID, worksheet string) (Grid, error) {
	m.GetCalls[worksheet]++
	if err := m.GetErr[worksheet]; err != nil {
		return nil, &RemoteError{Op: "read worksheet '" + worksheet + "'", Err: err}
	}
	return m.Grids[worksheet], nil
}

func (m *MockValues) UpdateCell(spreadsheetID, rangeRef string, value float64) error {
	if m.UpdateErr != nil {
		return &RemoteError{Op: "write " + rangeRef, Err: m.UpdateErr}
	}
	m.Writes = append(m.Writes, MockWrite{SpreadsheetID: spreadsheetID, RangeRef: rangeRef, Value: value})
	m.applyWrite(rangeRef, value)
	return nil
}

// applyWrite mutates the backing grid so later reads observe the write,
// the way the real backend would between passes.
func (m *MockValues) applyWrite(rangeRef string, value float64) {
	worksheet, cell, ok := splitRangeRef(rangeRef)
	if !ok {
		return
	}
	row, col, ok := CellToIndexes(cell)
	if !ok {
		return
	}
	grid := m.Grids[worksheet]
	for len(grid) <= row {
		grid = append(grid, nil)
	}
	for len(grid[row]) <= col {
		grid[row] = append(grid[row], "")
	}
	grid[row][col] = value
	m.Grids[worksheet] = grid
}

func splitRangeRef(rangeRef string) (worksheet, cell string, ok bool) {
	idx := strings.LastIndex(rangeRef, "!")
	if idx < 0 {
		return "", "", false
	}
	worksheet = strings.Trim(rangeRef[:idx], "'")
	cell = rangeRef[idx+1:]
	return worksheet, cell, worksheet != "" && cell != ""
}
