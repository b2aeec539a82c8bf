package markup

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tsawler/gridtable/model"
)

// gridTop matches the first line of a grid table
var gridTop = regexp.MustCompile(`^\+(?:[-=:<>^xv]+\+)+\s*$`)

// Errors reported for grid blocks that are kept as text
var (
	ErrGridIncomplete = errors.New("grid does not close")
	ErrGridNoBody     = errors.New("grid has no body rows")
)

func isHorizontal(s string) bool {
	switch s {
	case "-", "=", ":", "<", ">", "^", "x", "v":
		return true
	}
	return false
}

// escapedRule is a '|' inside cell text. On the canvas it takes the slot
// of the '|' and the backslash slot is left empty.
const escapedRule = `\|`

func markEscapedRules(cv *canvas) {
	for r := range cv.slots {
		for c := 1; c < cv.width; c++ {
			if cv.slots[r][c] == columnRuleChar && cv.slots[r][c-1] == `\` {
				cv.slots[r][c-1] = ""
				cv.slots[r][c] = escapedRule
			}
		}
	}
}

// gridRect is one cell found on the canvas, given by its border lines
type gridRect struct {
	top, left, bottom, right int
}

// gridScanner finds the cells of a grid block. Starting from the top
// left corner it traces each cell clockwise, then queues the cell's top
// right and bottom left corners.
type gridScanner struct {
	cv      *canvas
	bottom  int
	right   int
	done    []int
	rowseps map[int]bool
	colseps map[int]bool
	cells   []gridRect
}

func newGridScanner(lines []string) *gridScanner {
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " \t")
	}
	cv := canvasFromLines(trimmed)
	markEscapedRules(cv)
	s := &gridScanner{
		cv:      cv,
		bottom:  cv.height() - 1,
		right:   cv.width - 1,
		done:    make([]int, cv.width),
		rowseps: map[int]bool{0: true},
		colseps: map[int]bool{0: true},
	}
	for i := range s.done {
		s.done[i] = -1
	}
	return s
}

func (s *gridScanner) scan() error {
	if s.bottom < 2 || s.right < 2 {
		return ErrGridIncomplete
	}
	corners := [][2]int{{0, 0}}
	for len(corners) > 0 {
		top, left := corners[0][0], corners[0][1]
		corners = corners[1:]
		if top == s.bottom || left == s.right || top <= s.done[left] {
			continue
		}
		rect, ok := s.scanCell(top, left)
		if !ok {
			continue
		}
		if err := s.markDone(rect); err != nil {
			return err
		}
		s.cells = append(s.cells, rect)
		corners = append(corners, [2]int{top, rect.right}, [2]int{rect.bottom, left})
		slices.SortFunc(corners, func(a, b [2]int) int {
			if a[0] != b[0] {
				return a[0] - b[0]
			}
			return a[1] - b[1]
		})
	}
	for col := 0; col < s.right; col++ {
		if s.done[col] != s.bottom-1 {
			return fmt.Errorf("%w: column %d", ErrGridIncomplete, col+1)
		}
	}
	return nil
}

func (s *gridScanner) markDone(r gridRect) error {
	for col := r.left; col < r.right; col++ {
		if s.done[col] != r.top-1 {
			return fmt.Errorf("%w: overlapping cells at line %d", ErrGridIncomplete, r.top+1)
		}
		s.done[col] = r.bottom - 1
	}
	return nil
}

// scanCell traces the cell whose top left corner is (top, left)
func (s *gridScanner) scanCell(top, left int) (gridRect, bool) {
	if !s.junction(top, left) {
		return gridRect{}, false
	}
	for right := left + 1; right <= s.right; right++ {
		ch := s.cv.at(top, right)
		if s.junction(top, right) {
			if ch == cornerChar {
				s.colseps[right] = true
			}
			if bottom, ok := s.scanDown(top, left, right); ok {
				s.colseps[right] = true
				return gridRect{top, left, bottom, right}, true
			}
			continue
		}
		if !isHorizontal(ch) {
			return gridRect{}, false
		}
	}
	return gridRect{}, false
}

func (s *gridScanner) scanDown(top, left, right int) (int, bool) {
	for bottom := top + 1; bottom <= s.bottom; bottom++ {
		ch := s.cv.at(bottom, right)
		if ch == cornerChar || isHorizontal(ch) {
			if s.scanLeft(top, left, bottom, right) {
				s.rowseps[bottom] = true
				return bottom, true
			}
			if ch != cornerChar {
				return 0, false
			}
			continue
		}
		if ch != columnRuleChar {
			return 0, false
		}
	}
	return 0, false
}

func (s *gridScanner) scanLeft(top, left, bottom, right int) bool {
	var cols []int
	for col := right - 1; col > left; col-- {
		ch := s.cv.at(bottom, col)
		if ch == cornerChar {
			cols = append(cols, col)
		} else if !isHorizontal(ch) {
			return false
		}
	}
	if ch := s.cv.at(bottom, left); ch != cornerChar && !isHorizontal(ch) {
		return false
	}
	var rows []int
	for row := bottom - 1; row > top; row-- {
		ch := s.cv.at(row, left)
		if ch == cornerChar {
			rows = append(rows, row)
		} else if ch != columnRuleChar {
			return false
		}
	}
	for _, c := range cols {
		s.colseps[c] = true
	}
	for _, r := range rows {
		s.rowseps[r] = true
	}
	return true
}

// junction reports whether a border line meets a column border at (row,
// col). Besides '+', a border character with a column border directly
// above or below counts, since a spanning cell on the other side may draw
// its border straight through the corner.
func (s *gridScanner) junction(row, col int) bool {
	ch := s.cv.at(row, col)
	if ch == cornerChar {
		return true
	}
	return isHorizontal(ch) && (s.cv.at(row-1, col) == columnRuleChar || s.cv.at(row+1, col) == columnRuleChar)
}

// sectionLine reports whether a row border is drawn with '='
func (s *gridScanner) sectionLine(row int) bool {
	for col := 0; col <= s.right; col++ {
		if s.cv.at(row, col) == sectionRule {
			return true
		}
	}
	return false
}

// cellAttrs reads the alignment markers on a cell's top border
func (s *gridScanner) cellAttrs(r gridRect) model.Attrs {
	attrs := model.DefaultCellAttrs()
	first, last := s.cv.at(r.top, r.left+1), s.cv.at(r.top, r.right-1)
	switch {
	case first == ">" && last == "<":
		attrs.Align = model.AlignJustify
	case r.right-r.left > 2 && first == ":" && last == ":":
		attrs.Align = model.AlignCenter
	case first == ":":
		attrs.Align = model.AlignLeft
	case last == ":":
		attrs.Align = model.AlignRight
	}
	for col := r.left + 1; col < r.right; col++ {
		switch s.cv.at(r.top, col) {
		case "^":
			attrs.VAlign = model.VAlignTop
		case "x":
			attrs.VAlign = model.VAlignMiddle
		case "v":
			attrs.VAlign = model.VAlignBottom
		}
	}
	return attrs
}

// cellText returns a cell's interior with common indentation and
// surrounding blank lines removed
func (s *gridScanner) cellText(r gridRect) []string {
	lines := s.cv.region(r.top, r.left, r.bottom, r.right)
	indent := -1
	for i, line := range lines {
		line = strings.TrimRight(strings.ReplaceAll(line, escapedRule, columnRuleChar), " \t")
		lines[i] = line
		if line == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		}
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// parseGrid turns a grid block into a table. Cell contents are parsed as
// markdown blocks. The first interior '=' border closes the head; a later
// one opens the foot.
func (p *parser) parseGrid(lines []string, firstLine int) (*model.Node, error) {
	s := newGridScanner(lines)
	if err := s.scan(); err != nil {
		return nil, err
	}

	rowLines := sortedKeys(s.rowseps)
	colLines := sortedKeys(s.colseps)
	rowIndex := indexOf(rowLines)
	colIndex := indexOf(colLines)
	rows := len(rowLines) - 1

	headEnd, footStart := 0, rows
	var eq []int
	for _, line := range rowLines[1 : len(rowLines)-1] {
		if s.sectionLine(line) {
			eq = append(eq, rowIndex[line])
		}
	}
	if len(eq) > 0 {
		headEnd = eq[0]
	}
	if len(eq) > 1 {
		footStart = eq[len(eq)-1]
	}
	sectionEnd := func(row int) int {
		switch {
		case row < headEnd:
			return headEnd
		case row >= footStart:
			return rows
		default:
			return footStart
		}
	}

	// Rows where no cell starts are folded into the row above.
	starts := make([]bool, rows)
	for _, r := range s.cells {
		starts[rowIndex[r.top]] = true
	}
	compact := make([]int, rows+1)
	for r := 0; r < rows; r++ {
		compact[r+1] = compact[r]
		if starts[r] {
			compact[r+1]++
		}
	}

	slices.SortFunc(s.cells, func(a, b gridRect) int {
		if a.top != b.top {
			return a.top - b.top
		}
		return a.left - b.left
	})
	built := make([][]*model.Node, rows)
	for _, r := range s.cells {
		top := rowIndex[r.top]
		bottom := min(rowIndex[r.bottom], sectionEnd(top))
		attrs := s.cellAttrs(r)
		attrs.ColSpan = colIndex[r.right] - colIndex[r.left]
		attrs.RowSpan = max(compact[bottom]-compact[top], 1)

		text := s.cellText(r)
		blocks := p.parseBlocks(text, firstLine+r.top+1)
		built[top] = append(built[top], model.NewCell(attrs, blocks...))
	}

	section := func(t model.NodeType, from, to int) *model.Node {
		var out []*model.Node
		for r := from; r < to; r++ {
			if len(built[r]) > 0 {
				out = append(out, model.NewRow(built[r]...))
			}
		}
		if len(out) == 0 {
			return nil
		}
		return model.NewSection(t, out...)
	}
	head := section(model.NodeTableHead, 0, headEnd)
	body := section(model.NodeTableBody, headEnd, footStart)
	foot := section(model.NodeTableFoot, footStart, rows)
	if body == nil {
		return nil, ErrGridNoBody
	}
	return model.NewTable(head, body, foot), nil
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func indexOf(lines []int) map[int]int {
	out := make(map[int]int, len(lines))
	for i, line := range lines {
		out[line] = i
	}
	return out
}
