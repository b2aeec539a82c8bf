package model

import (
	"fmt"
	"strings"
)

// Align is a cell's horizontal alignment. The zero value means no alignment
// is set.
type Align string

const (
	AlignNone    Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// Valid reports whether a is one of the known alignments (or unset)
func (a Align) Valid() bool {
	switch a {
	case AlignNone, AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// ParseAlign parses an alignment name. "", "null" and "none" yield AlignNone.
func ParseAlign(s string) (Align, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "null", "none":
		return AlignNone, nil
	default:
		if a := Align(v); a.Valid() {
			return a, nil
		}
	}
	return AlignNone, fmt.Errorf("unknown alignment %q", s)
}

// VAlign is a cell's vertical alignment. The zero value means no vertical
// alignment is set.
type VAlign string

const (
	VAlignNone   VAlign = ""
	VAlignTop    VAlign = "top"
	VAlignMiddle VAlign = "middle"
	VAlignBottom VAlign = "bottom"
)

// Valid reports whether v is one of the known vertical alignments (or unset)
func (v VAlign) Valid() bool {
	switch v {
	case VAlignNone, VAlignTop, VAlignMiddle, VAlignBottom:
		return true
	}
	return false
}

// ParseVAlign parses a vertical alignment name
func ParseVAlign(s string) (VAlign, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "null", "none":
		return VAlignNone, nil
	default:
		if va := VAlign(v); va.Valid() {
			return va, nil
		}
	}
	return VAlignNone, fmt.Errorf("unknown vertical alignment %q", s)
}

// Attrs holds node attributes. Only the fields relevant to a node's type are
// meaningful: spans and alignments for cells, Align for simple cells, Level
// for headings and Info for code blocks.
type Attrs struct {
	ColSpan int    `json:"colSpan,omitempty"`
	RowSpan int    `json:"rowSpan,omitempty"`
	Align   Align  `json:"align,omitempty"`
	VAlign  VAlign `json:"valign,omitempty"`
	Level   int    `json:"level,omitempty"`
	Info    string `json:"info,omitempty"`
}

// DefaultCellAttrs returns the attributes of a fresh cell: 1x1, no alignment
func DefaultCellAttrs() Attrs {
	return Attrs{ColSpan: 1, RowSpan: 1}
}

// Largest spans a cell can take. Browsers cap colspan and rowspan at the
// same values.
const (
	MaxColSpan = 1000
	MaxRowSpan = 65534
)

// Cols returns the column span, treating unset values as 1
func (a Attrs) Cols() int {
	if a.ColSpan < 1 {
		return 1
	}
	return min(a.ColSpan, MaxColSpan)
}

// Rows returns the row span, treating unset values as 1
func (a Attrs) Rows() int {
	if a.RowSpan < 1 {
		return 1
	}
	return min(a.RowSpan, MaxRowSpan)
}

// normalized fills defaults so that attribute sets compare by meaning
func (a Attrs) normalized(t NodeType) Attrs {
	if t == NodeTableCell {
		a.ColSpan = a.Cols()
		a.RowSpan = a.Rows()
	}
	return a
}

func (a Attrs) String() string {
	var parts []string
	if a.Cols() > 1 {
		parts = append(parts, fmt.Sprintf("colSpan=%d", a.ColSpan))
	}
	if a.Rows() > 1 {
		parts = append(parts, fmt.Sprintf("rowSpan=%d", a.RowSpan))
	}
	if a.Align != AlignNone {
		parts = append(parts, "align="+string(a.Align))
	}
	if a.VAlign != VAlignNone {
		parts = append(parts, "valign="+string(a.VAlign))
	}
	return strings.Join(parts, " ")
}

// NewCell creates a table cell. Spans below 1 are raised to 1 and a cell
// without blocks is filled with one empty paragraph.
func NewCell(attrs Attrs, blocks ...*Node) *Node {
	attrs.ColSpan = attrs.Cols()
	attrs.RowSpan = attrs.Rows()
	if len(blocks) == 0 {
		blocks = []*Node{NewParagraph("")}
	}
	return &Node{Type: NodeTableCell, Attrs: attrs, Content: blocks}
}

// NewTextCell creates a 1x1 cell holding a single paragraph of text
func NewTextCell(text string) *Node {
	return NewCell(DefaultCellAttrs(), NewParagraph(text))
}

// NewRow creates a table row
func NewRow(cells ...*Node) *Node {
	return &Node{Type: NodeTableRow, Content: cells}
}

// NewSection creates a head, body or foot section
func NewSection(t NodeType, rows ...*Node) *Node {
	return &Node{Type: t, Content: rows}
}

// NewTable assembles a table from its sections. head and foot may be nil.
func NewTable(head, body, foot *Node) *Node {
	var content []*Node
	for _, s := range []*Node{head, body, foot} {
		if s != nil {
			content = append(content, s)
		}
	}
	return &Node{Type: NodeTable, Content: content}
}

// NewDoc creates a document root
func NewDoc(blocks ...*Node) *Node {
	return &Node{Type: NodeDoc, Content: blocks}
}

// EmptyRow creates a row of cols default cells
func EmptyRow(cols int) *Node {
	if cols < 1 {
		cols = 1
	}
	cells := make([]*Node, cols)
	for i := range cells {
		cells[i] = NewCell(DefaultCellAttrs())
	}
	return NewRow(cells...)
}

// BuildTable creates an empty table with the given dimensions. rows counts
// the header row when hasHeader is set; the body always gets at least one
// row. The footer, when requested, is a single row.
func BuildTable(rows, cols int, hasHeader, hasFooter bool) *Node {
	var head, foot *Node
	if hasHeader {
		head = NewSection(NodeTableHead, EmptyRow(cols))
	}

	bodyRows := rows
	if hasHeader {
		bodyRows--
	}
	if bodyRows < 1 {
		bodyRows = 1
	}
	body := make([]*Node, bodyRows)
	for i := range body {
		body[i] = EmptyRow(cols)
	}

	if hasFooter {
		foot = NewSection(NodeTableFoot, EmptyRow(cols))
	}
	return NewTable(head, NewSection(NodeTableBody, body...), foot)
}

// Head returns the table's head section or nil
func (n *Node) Head() *Node { return n.ChildOfType(NodeTableHead) }

// Body returns the table's body section or nil
func (n *Node) Body() *Node { return n.ChildOfType(NodeTableBody) }

// Foot returns the table's foot section or nil
func (n *Node) Foot() *Node { return n.ChildOfType(NodeTableFoot) }

// Rows returns all rows of a table in order: head, body, foot
func (n *Node) Rows() []*Node {
	var rows []*Node
	for _, section := range n.Content {
		if !section.Type.IsSection() {
			continue
		}
		for _, row := range section.Content {
			if row.Type == NodeTableRow {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// RowWidth returns the number of columns a row covers: the sum of its cells'
// column spans
func RowWidth(row *Node) int {
	width := 0
	for _, c := range row.Content {
		if c.Type == NodeTableCell {
			width += c.Attrs.Cols()
		}
	}
	return width
}
