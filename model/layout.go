package model

// Placement positions one cell on the table's visual grid
type Placement struct {
	Row, Col         int
	RowSpan, ColSpan int
	Cell             *Node // nil for a filler slot in a ragged table
	Section          NodeType
}

// Layout is the visual occupancy grid of a table. Unlike the editing
// commands, which address columns per row, a layout accounts for cells
// pushed right by row-spanning cells above them. It is used by renderers
// that need real geometry.
type Layout struct {
	Rows, Cols int
	HeadRows   int
	FootRows   int
	Cells      []Placement
	grid       [][]int
}

// At returns the placement covering (row, col), or nil when out of range
func (l *Layout) At(row, col int) *Placement {
	if row < 0 || row >= l.Rows || col < 0 || col >= l.Cols {
		return nil
	}
	return &l.Cells[l.grid[row][col]]
}

// SectionOf returns the section type of a visual row
func (l *Layout) SectionOf(row int) NodeType {
	switch {
	case row < l.HeadRows:
		return NodeTableHead
	case row >= l.Rows-l.FootRows:
		return NodeTableFoot
	default:
		return NodeTableBody
	}
}

// LayoutTable computes the occupancy grid of a table. Row spans are clamped
// to their section, and slots left uncovered by ragged rows are filled with
// 1x1 placements without a cell.
func LayoutTable(table *Node) *Layout {
	l := &Layout{}
	var occupied [][]int

	ensure := func(row, col int) {
		for len(occupied) <= row {
			occupied = append(occupied, nil)
		}
		for len(occupied[row]) <= col {
			occupied[row] = append(occupied[row], -1)
		}
	}
	free := func(row, col int) bool {
		return row >= len(occupied) || col >= len(occupied[row]) || occupied[row][col] < 0
	}

	row := 0
	for _, section := range table.Content {
		if !section.Type.IsSection() {
			continue
		}
		sectionEnd := row + len(section.Content)
		switch section.Type {
		case NodeTableHead:
			l.HeadRows += len(section.Content)
		case NodeTableFoot:
			l.FootRows += len(section.Content)
		}
		for _, r := range section.Content {
			col := 0
			for _, cell := range r.Content {
				if cell.Type != NodeTableCell {
					continue
				}
				for !free(row, col) {
					col++
				}
				rs := min(cell.Attrs.Rows(), sectionEnd-row)
				cs := cell.Attrs.Cols()
				idx := len(l.Cells)
				l.Cells = append(l.Cells, Placement{Row: row, Col: col, RowSpan: rs, ColSpan: cs, Cell: cell, Section: section.Type})
				for dr := 0; dr < rs; dr++ {
					for dc := 0; dc < cs; dc++ {
						ensure(row+dr, col+dc)
						occupied[row+dr][col+dc] = idx
					}
				}
				col += cs
			}
			row++
		}
	}

	l.Rows = row
	for _, r := range occupied {
		l.Cols = max(l.Cols, len(r))
	}

	l.grid = make([][]int, l.Rows)
	for r := 0; r < l.Rows; r++ {
		l.grid[r] = make([]int, l.Cols)
		for c := 0; c < l.Cols; c++ {
			if !free(r, c) {
				l.grid[r][c] = occupied[r][c]
				continue
			}
			l.grid[r][c] = len(l.Cells)
			l.Cells = append(l.Cells, Placement{Row: r, Col: c, RowSpan: 1, ColSpan: 1, Section: l.SectionOf(r)})
		}
	}
	return l
}
