package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/gridtable/model"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeString indicates a string value.
	CellTypeString CellType = iota
	// CellTypeNumber indicates a numeric value.
	CellTypeNumber
	// CellTypeEmpty indicates an empty cell.
	CellTypeEmpty
)

// String returns the string representation of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeString:
		return "string"
	case CellTypeNumber:
		return "number"
	case CellTypeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Cell is one slot of the worksheet plan.
type Cell struct {
	Value  string   // Cell text; blocks are separated by newlines
	Type   CellType // The type of data
	Row    int      // 0-indexed row
	Col    int      // 0-indexed column
	Align  model.Align
	VAlign model.VAlign
	Header bool // Cell belongs to a head row

	// Merge information
	IsMerged    bool // Is this cell part of a merged region?
	IsMergeRoot bool // Is this the top-left cell of a merged region?
	MergeRows   int  // Number of rows in merge (1 = no merge)
	MergeCols   int  // Number of columns in merge (1 = no merge)
}

// IsEmpty returns true if the cell has no value.
func (c *Cell) IsEmpty() bool {
	return c.Type == CellTypeEmpty || c.Value == ""
}

// Sheet is the planned content of a worksheet.
type Sheet struct {
	Name   string
	Rows   [][]Cell
	MaxRow int // Maximum row index (0-indexed), -1 when empty
	MaxCol int // Maximum column index (0-indexed), -1 when empty

	// Merged cell regions
	MergedRegions []MergedRegion

	// Tables holds the first row of each exported table
	Tables []int
}

// MergedRegion represents a merged cell region.
type MergedRegion struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Refs returns the top-left and bottom-right cell names of the region
func (m MergedRegion) Refs() (topLeft, bottomRight string, err error) {
	if topLeft, err = CellRef(m.StartCol, m.StartRow); err != nil {
		return "", "", err
	}
	if bottomRight, err = CellRef(m.EndCol, m.EndRow); err != nil {
		return "", "", err
	}
	return topLeft, bottomRight, nil
}

// Cell returns the cell at the given row and column (0-indexed).
// Returns nil if the cell doesn't exist.
func (s *Sheet) Cell(row, col int) *Cell {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return nil
	}
	return &s.Rows[row][col]
}

// CellByRef returns the cell at the given reference (e.g., "A1").
// Returns nil if the cell doesn't exist.
func (s *Sheet) CellByRef(ref string) *Cell {
	col, row, err := ParseCellRef(ref)
	if err != nil {
		return nil
	}
	return s.Cell(row, col)
}

// RowCount returns the number of rows in the sheet.
func (s *Sheet) RowCount() int {
	return s.MaxRow + 1
}

// ColCount returns the maximum number of columns in any row.
func (s *Sheet) ColCount() int {
	return s.MaxCol + 1
}

// set stores c at its position, growing the grid as needed
func (s *Sheet) set(c Cell) {
	for len(s.Rows) <= c.Row {
		s.Rows = append(s.Rows, nil)
	}
	for len(s.Rows[c.Row]) <= c.Col {
		s.Rows[c.Row] = append(s.Rows[c.Row], Cell{
			Type: CellTypeEmpty, Row: c.Row, Col: len(s.Rows[c.Row]), MergeRows: 1, MergeCols: 1,
		})
	}
	s.Rows[c.Row][c.Col] = c
	s.MaxRow = max(s.MaxRow, c.Row)
	s.MaxCol = max(s.MaxCol, c.Col)
}

// ParseCellRef parses a cell reference like "A1" or "AA100" into column and row indices (0-indexed).
func ParseCellRef(ref string) (col, row int, err error) {
	c, r, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell reference %q: %w", ref, err)
	}
	return c - 1, r - 1, nil
}

// CellRef creates a cell reference string from column and row indices (0-indexed).
func CellRef(col, row int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}
