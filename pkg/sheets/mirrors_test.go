package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindMirrorCellsMergedHeader(t *testing.T) {
	mock := NewMockValues()
	mock.Grids["Bench"] = Grid{
		{"Scenario", "High Score", "", "Progress"},
		{"Close Range", 120.0, "", 0.4},
	}
	client := NewClient(mock)

	mirrors, err := client.FindMirrorCells("sheet-id", "Bench", "B2", testHeaders)
	if err != nil {
		t.Fatalf("FindMirrorCells: %v", err)
	}
	assert.Equal(t, []string{"C2"}, mirrors)
}

func TestFindMirrorCellsDataRowDuplicate(t *testing.T) {
	mock := NewMockValues()
	mock.Grids["Bench"] = Grid{
		{"Scenario", "Best"},
		{"Close Range", 120.0, 120.0},
	}
	client := NewClient(mock)

	mirrors, err := client.FindMirrorCells("sheet-id", "Bench", "B2", testHeaders)
	if err != nil {
		t.Fatalf("FindMirrorCells: %v", err)
	}
	assert.Equal(t, []string{"C2"}, mirrors)
}

func TestFindMirrorCellsNone(t *testing.T) {
	mock := NewMockValues()
	mock.Grids["Bench"] = Grid{
		{"Scenario", "High Score", "Avg"},
		{"Close Range", 120.0, 80.0},
	}
	client := NewClient(mock)

	mirrors, err := client.FindMirrorCells("sheet-id", "Bench", "B2", testHeaders)
	if err != nil {
		t.Fatalf("FindMirrorCells: %v", err)
	}
	if len(mirrors) != 0 {
		t.Errorf("mirrors = %v, want none", mirrors)
	}
}

func TestFindMirrorCellsBothDetections(t *testing.T) {
	mock := NewMockValues()
	mock.Grids["Bench"] = Grid{
		{"Scenario", "High Score", "", "Progress"},
		{"Close Range", 120.0, 120.0, 0.4},
	}
	client := NewClient(mock)

	mirrors, err := client.FindMirrorCells("sheet-id", "Bench", "B2", testHeaders)
	if err != nil {
		t.Fatalf("FindMirrorCells: %v", err)
	}
	// Header and data-row detection point at the same column; it is
	// reported once.
	assert.Equal(t, []string{"C2"}, mirrors)
}

func TestFindMirrorCellsBadReference(t *testing.T) {
	client := NewClient(NewMockValues())
	mirrors, err := client.FindMirrorCells("sheet-id", "Bench", "not-a-cell", testHeaders)
	if err != nil {
		t.Fatalf("FindMirrorCells: %v", err)
	}
	if mirrors != nil {
		t.Errorf("mirrors = %v, want nil", mirrors)
	}
}
