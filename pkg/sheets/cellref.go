package sheets

import (
	"fmt"
	"strings"
	"unicode"
)

// ColumnLetter converts a 1-based column index to its A1 letter form
// (1 -> "A", 27 -> "AA").
func ColumnLetter(index int) string {
	var b []byte
	for index > 0 {
		index--
		b = append([]byte{byte('A' + index%26)}, b...)
		index /= 26
	}
	if len(b) == 0 {
		return "A"
	}
	return string(b)
}

// MakeCellRef builds an A1 cell reference from 1-based column and row
// indexes.
func MakeCellRef(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnLetter(col), row)
}

// CellToIndexes parses an A1 cell reference into zero-based (row, col)
// indexes. Returns ok=false for anything that is not letters followed by
// digits.
func CellToIndexes(cell string) (row, col int, ok bool) {
	cell = strings.ToUpper(strings.TrimSpace(cell))
	if cell == "" {
		return 0, 0, false
	}
	var letters, digits string
	for _, r := range cell {
		switch {
		case unicode.IsLetter(r):
			if digits != "" {
				// letters must precede digits
				return 0, 0, false
			}
			letters += string(r)
		case unicode.IsDigit(r):
			digits += string(r)
		default:
			return 0, 0, false
		}
	}
	if letters == "" || digits == "" {
		return 0, 0, false
	}
	colIndex := 0
	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, 0, false
		}
		colIndex = colIndex*26 + int(r-'A'+1)
	}
	rowIndex := 0
	for _, r := range digits {
		rowIndex = rowIndex*10 + int(r-'0')
		if rowIndex > 10_000_000 {
			return 0, 0, false
		}
	}
	if rowIndex <= 0 {
		return 0, 0, false
	}
	return rowIndex - 1, colIndex - 1, true
}

// RangeRef builds a 'Sheet'!A1 style range reference for a single cell.
func RangeRef(worksheet, cell string) string {
	return fmt.Sprintf("'%s'!%s", worksheet, cell)
}
