package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericCell(t *testing.T) {
	mock := NewMockValues()
	mock.Titles = []string{"Bench"}
	mock.Grids["Bench"] = Grid{
		{120.5, "1,234", " 450 ", ""},
		{"not a number", 87, "  ", "12,345.75"},
	}
	client := NewClient(mock)

	tests := []struct {
		name string
		cell string
		want float64
		ok   bool
	}{
		{"number cell", "A1", 120.5, true},
		{"text with thousands separator", "B1", 1234, true},
		{"text with surrounding spaces", "C1", 450, true},
		{"empty cell", "D1", 0, false},
		{"non-numeric text", "A2", 0, false},
		{"integer cell", "B2", 87, true},
		{"whitespace-only cell", "C2", 0, false},
		{"separator and fraction", "D2", 12345.75, true},
		{"cell beyond the grid", "F9", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := client.NumericCell("sheet-id", "Bench", tt.cell)
			if err != nil {
				t.Fatalf("NumericCell(%s): %v", tt.cell, err)
			}
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
