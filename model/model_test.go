package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// sampleDoc returns
//
//	paragraph("ab") table(tableBody(tableRow(cell(p("x")), cell(p("y")))))
//
// Positions: paragraph 0-4, table 4, body 5, row 6, first cell 7 (text at
// 9), second cell 12 (text at 14).
func sampleDoc() *Node {
	return NewDoc(
		NewParagraph("ab"),
		NewTable(nil, NewSection(NodeTableBody, NewRow(NewTextCell("x"), NewTextCell("y"))), nil),
	)
}

// ============================================================================
// Node Tests
// ============================================================================

func TestNodeTypeString(t *testing.T) {
	tests := []struct {
		nodeType NodeType
		expected string
	}{
		{NodeDoc, "doc"},
		{NodeTable, "table"},
		{NodeTableHead, "tableHead"},
		{NodeTableBody, "tableBody"},
		{NodeTableFoot, "tableFoot"},
		{NodeTableRow, "tableRow"},
		{NodeTableCell, "tableCell"},
		{NodeCodeBlock, "code_block"},
		{NodeType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.nodeType.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
			if tt.nodeType == NodeType(999) {
				return
			}
			parsed, ok := ParseNodeType(tt.expected)
			if !ok || parsed != tt.nodeType {
				t.Errorf("ParseNodeType(%q) = %v, %v", tt.expected, parsed, ok)
			}
		})
	}
}

func TestNodeSize(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want int
	}{
		{"text", NewText("héllo"), 5},
		{"empty paragraph", NewParagraph(""), 2},
		{"paragraph", NewParagraph("ab"), 4},
		{"cell", NewTextCell("x"), 5},
		{"empty cell", NewCell(DefaultCellAttrs()), 4},
		{"row", NewRow(NewTextCell("x"), NewTextCell("y")), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}

	if got := sampleDoc().ContentSize(); got != 20 {
		t.Errorf("doc ContentSize() = %d, want 20", got)
	}
}

func TestNodeEqual(t *testing.T) {
	a := NewRow(NewTextCell("x"), NewCell(Attrs{ColSpan: 2}, NewParagraph("y")))
	b := NewRow(NewTextCell("x"), NewCell(Attrs{ColSpan: 2, RowSpan: 1}, NewParagraph("y")))
	if !a.Equal(b) {
		t.Errorf("expected rows to be equal:\n%s\n%s", a, b)
	}

	c := NewRow(NewTextCell("x"), NewCell(Attrs{ColSpan: 2, Align: AlignCenter}, NewParagraph("y")))
	if a.Equal(c) {
		t.Error("rows with different alignment compared equal")
	}
}

func TestNewCellFillsContent(t *testing.T) {
	cell := NewCell(Attrs{})
	if cell.Attrs.ColSpan != 1 || cell.Attrs.RowSpan != 1 {
		t.Errorf("spans = %dx%d, want 1x1", cell.Attrs.ColSpan, cell.Attrs.RowSpan)
	}
	if len(cell.Content) != 1 || cell.Content[0].Type != NodeParagraph {
		t.Errorf("content = %s, want one empty paragraph", cell)
	}
}

func TestTextContent(t *testing.T) {
	cell := NewCell(DefaultCellAttrs(), NewParagraph("one"), NewParagraph("two"))
	if got := cell.TextContent(); got != "one\ntwo" {
		t.Errorf("TextContent() = %q, want %q", got, "one\ntwo")
	}
}

// ============================================================================
// Table Builder Tests
// ============================================================================

func TestBuildTable(t *testing.T) {
	tests := []struct {
		name                string
		rows, cols          int
		header, footer      bool
		headRows, bodyRows  int
		footRows, cellCount int
	}{
		{"3x3 with header", 3, 3, true, false, 1, 2, 0, 3},
		{"3x3 no header", 3, 3, false, false, 0, 3, 0, 3},
		{"header and footer", 4, 2, true, true, 1, 3, 1, 2},
		{"single row with header keeps a body row", 1, 2, true, false, 1, 1, 0, 2},
		{"zero rows", 0, 2, false, false, 0, 1, 0, 2},
		{"zero cols clamps to one", 2, 0, false, false, 0, 2, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := BuildTable(tt.rows, tt.cols, tt.header, tt.footer)
			if err := ValidateTable(table); err != nil {
				t.Fatalf("ValidateTable() = %v", err)
			}

			count := func(s *Node) int {
				if s == nil {
					return 0
				}
				return len(s.Content)
			}
			if got := count(table.Head()); got != tt.headRows {
				t.Errorf("head rows = %d, want %d", got, tt.headRows)
			}
			if got := count(table.Body()); got != tt.bodyRows {
				t.Errorf("body rows = %d, want %d", got, tt.bodyRows)
			}
			if got := count(table.Foot()); got != tt.footRows {
				t.Errorf("foot rows = %d, want %d", got, tt.footRows)
			}
			for i, row := range table.Rows() {
				if len(row.Content) != tt.cellCount {
					t.Errorf("row %d has %d cells, want %d", i, len(row.Content), tt.cellCount)
				}
			}
		})
	}
}

func TestRowWidth(t *testing.T) {
	row := NewRow(NewCell(Attrs{ColSpan: 2}), NewTextCell("a"), NewCell(Attrs{ColSpan: 3}))
	if got := RowWidth(row); got != 6 {
		t.Errorf("RowWidth() = %d, want 6", got)
	}
}

func TestParseAlign(t *testing.T) {
	tests := []struct {
		input   string
		want    Align
		wantErr bool
	}{
		{"center", AlignCenter, false},
		{"RIGHT", AlignRight, false},
		{"justify", AlignJustify, false},
		{"null", AlignNone, false},
		{"", AlignNone, false},
		{"middle", AlignNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlign(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAlign(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAlign(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseVAlign("middle"); err != nil {
		t.Errorf("ParseVAlign(middle) = %v", err)
	}
	if _, err := ParseVAlign("center"); err == nil {
		t.Error("ParseVAlign(center) should fail")
	}
}

// ============================================================================
// Position Tests
// ============================================================================

func TestResolve(t *testing.T) {
	doc := sampleDoc()

	r, err := Resolve(doc, 9)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if r.Depth != 5 {
		t.Fatalf("Depth = %d, want 5", r.Depth)
	}
	if r.Parent().Type != NodeParagraph {
		t.Errorf("Parent() = %s, want paragraph", r.Parent().Type)
	}

	cell, ok := r.FindAncestor(NodeTableCell)
	if !ok || cell.Pos != 7 {
		t.Errorf("cell ancestor = %+v, %v; want pos 7", cell, ok)
	}
	row, ok := r.FindAncestor(NodeTableRow)
	if !ok || row.Pos != 6 {
		t.Errorf("row ancestor pos = %d, want 6", row.Pos)
	}
	table, ok := r.FindAncestor(NodeTable)
	if !ok || table.Pos != 4 || table.End() != 20 {
		t.Errorf("table ancestor = [%d, %d], want [4, 20]", table.Pos, table.End())
	}
	if _, ok := r.FindAncestor(NodeTableHead); ok {
		t.Error("found a head section that does not exist")
	}
}

func TestResolveInsideText(t *testing.T) {
	r, err := Resolve(sampleDoc(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if r.Depth != 1 || r.ParentOffset != 1 || r.TextOffset != 1 {
		t.Errorf("got depth=%d parentOffset=%d textOffset=%d, want 1 1 1", r.Depth, r.ParentOffset, r.TextOffset)
	}
	if r.NodeAfter() != nil {
		t.Error("NodeAfter() inside text should be nil")
	}
}

func TestResolveOutOfRange(t *testing.T) {
	for _, pos := range []int{-1, 21} {
		if _, err := Resolve(sampleDoc(), pos); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("Resolve(%d) error = %v, want ErrInvalidPosition", pos, err)
		}
	}
}

func TestNodeAt(t *testing.T) {
	doc := sampleDoc()
	n, err := NodeAt(doc, 12)
	if err != nil {
		t.Fatal(err)
	}
	if n.Type != NodeTableCell || n.TextContent() != "y" {
		t.Errorf("NodeAt(12) = %s", n)
	}
	if _, err := NodeAt(doc, 2); err == nil {
		t.Error("NodeAt inside text should fail")
	}
}

func TestFindCursor(t *testing.T) {
	doc := sampleDoc()

	tests := []struct {
		name string
		from int
		dir  int
		want int
	}{
		{"forward from start", 0, 1, 1},
		{"forward into first cell", 5, 1, 9},
		{"forward into second cell", 10, 1, 14},
		{"backward from table end", 20, -1, 15},
		{"backward before table", 5, -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindCursor(doc, tt.from, tt.dir)
			if !ok || got != tt.want {
				t.Errorf("FindCursor(%d, %d) = %d, %v; want %d", tt.from, tt.dir, got, ok, tt.want)
			}
		})
	}

	if _, ok := FindCursor(doc, 16, 1); ok {
		t.Error("expected no textblock after the last cell")
	}
}

func TestReplaceContent(t *testing.T) {
	p := NewParagraph("hello")

	got, err := p.ReplaceContent(1, 4, []*Node{NewText("ipp")})
	if err != nil {
		t.Fatal(err)
	}
	if got.TextContent() != "hippo" {
		t.Errorf("TextContent() = %q, want %q", got.TextContent(), "hippo")
	}
	if len(got.Content) != 1 {
		t.Errorf("adjacent text nodes not joined: %s", got)
	}
	if p.TextContent() != "hello" {
		t.Error("ReplaceContent mutated its receiver")
	}

	row := NewRow(NewTextCell("a"), NewTextCell("b"))
	if _, err := row.ReplaceContent(1, 5, nil); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("cutting through a cell: error = %v, want ErrInvalidPosition", err)
	}

	deleted, err := row.ReplaceContent(0, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted.Content) != 1 || deleted.Content[0].TextContent() != "b" {
		t.Errorf("after delete: %s", deleted)
	}
}

func TestCut(t *testing.T) {
	p := NewParagraph("hello")
	cut := p.Cut(1, 3)
	if len(cut) != 1 || cut[0].Text != "el" {
		t.Errorf("Cut(1, 3) = %v, want [\"el\"]", cut)
	}
}

func TestSelection(t *testing.T) {
	s := Selection{Anchor: 9, Head: 3}
	if s.From() != 3 || s.To() != 9 || s.Empty() {
		t.Errorf("selection from=%d to=%d empty=%v", s.From(), s.To(), s.Empty())
	}
	if !Cursor(4).Empty() {
		t.Error("Cursor() should be empty")
	}
}

func TestTablesAndCellCursor(t *testing.T) {
	doc := sampleDoc()

	tables := Tables(doc)
	if len(tables) != 1 || tables[0].Pos != 4 {
		t.Fatalf("Tables() = %+v", tables)
	}
	rows := TableRows(tables[0])
	if len(rows) != 1 || rows[0].Pos != 6 {
		t.Fatalf("TableRows() = %+v", rows)
	}
	cells := RowCells(rows[0])
	if len(cells) != 2 || cells[1].Pos != 12 {
		t.Fatalf("RowCells() = %+v", cells)
	}

	pos, err := CellCursor(doc, 0, 0, 1)
	if err != nil || pos != 14 {
		t.Errorf("CellCursor() = %d, %v; want 14", pos, err)
	}
	if _, err := CellCursor(doc, 0, 3, 0); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("CellCursor(row 3) error = %v", err)
	}
}

// ============================================================================
// Validation Tests
// ============================================================================

func TestValidate(t *testing.T) {
	body := func(rows ...*Node) *Node { return NewSection(NodeTableBody, rows...) }

	tests := []struct {
		name    string
		table   *Node
		wantErr string
	}{
		{"valid", BuildTable(3, 3, true, true), ""},
		{"missing body", NewTable(NewSection(NodeTableHead, EmptyRow(2)), nil, nil), "0 body sections"},
		{"empty body", NewTable(nil, body(), nil), "no rows"},
		{"empty row", NewTable(nil, body(NewRow()), nil), "no cells"},
		{"foot before body", &Node{Type: NodeTable, Content: []*Node{NewSection(NodeTableFoot, EmptyRow(1)), body(EmptyRow(1))}}, "out of order"},
		{"bad span", NewTable(nil, body(NewRow(&Node{Type: NodeTableCell, Content: []*Node{NewParagraph("")}})), nil), "span 0x0"},
		{"bad align", NewTable(nil, body(NewRow(NewCell(Attrs{Align: "middle"}))), nil), "align"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(NewDoc(tt.table))
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

// ============================================================================
// Layout Tests
// ============================================================================

func TestLayoutTableRowSpan(t *testing.T) {
	// +---+---+
	// | A | B |
	// +   +---+
	// |   | C |
	// +---+---+
	table := NewTable(nil, NewSection(NodeTableBody,
		NewRow(NewCell(Attrs{RowSpan: 2}, NewParagraph("A")), NewTextCell("B")),
		NewRow(NewTextCell("C")),
	), nil)

	l := LayoutTable(table)
	if l.Rows != 2 || l.Cols != 2 {
		t.Fatalf("layout = %dx%d, want 2x2", l.Rows, l.Cols)
	}
	if got := l.At(1, 1).Cell.TextContent(); got != "C" {
		t.Errorf("At(1, 1) = %q, want C", got)
	}
	if l.At(1, 0) != l.At(0, 0) {
		t.Error("row-spanning cell should cover (1, 0)")
	}
	if l.At(2, 0) != nil {
		t.Error("At() out of range should be nil")
	}
}

func TestLayoutTableRaggedAndSections(t *testing.T) {
	table := NewTable(
		NewSection(NodeTableHead, EmptyRow(3)),
		NewSection(NodeTableBody, NewRow(NewCell(Attrs{RowSpan: 5}))),
		NewSection(NodeTableFoot, EmptyRow(2)),
	)

	l := LayoutTable(table)
	if l.Rows != 3 || l.Cols != 3 || l.HeadRows != 1 || l.FootRows != 1 {
		t.Fatalf("layout rows=%d cols=%d head=%d foot=%d", l.Rows, l.Cols, l.HeadRows, l.FootRows)
	}
	if p := l.At(1, 0); p.RowSpan != 1 {
		t.Errorf("row span crossing the body should be clamped, got %d", p.RowSpan)
	}
	filler := l.At(2, 2)
	if filler.Cell != nil || filler.Section != NodeTableFoot {
		t.Errorf("filler = %+v, want empty foot slot", filler)
	}
	if l.SectionOf(1) != NodeTableBody {
		t.Errorf("SectionOf(1) = %s", l.SectionOf(1))
	}
}

// ============================================================================
// JSON Tests
// ============================================================================

func TestNodeJSON(t *testing.T) {
	doc := NewDoc(NewTable(nil, NewSection(NodeTableBody,
		NewRow(NewCell(Attrs{ColSpan: 2, Align: AlignRight, VAlign: VAlignBottom}, NewParagraph("x"))),
	), nil))

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type":"tableCell"`) || !strings.Contains(string(data), `"colSpan":2`) {
		t.Errorf("unexpected JSON: %s", data)
	}

	var back Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(doc) {
		t.Errorf("decoded %s, want %s", &back, doc)
	}

	if err := json.Unmarshal([]byte(`{"type":"widget"}`), &back); err == nil {
		t.Error("expected error for unknown node type")
	}
}

func TestNewCellCapsSpans(t *testing.T) {
	cell := NewCell(Attrs{ColSpan: 5000, RowSpan: 1 << 20})
	if cell.Attrs.ColSpan != MaxColSpan || cell.Attrs.RowSpan != MaxRowSpan {
		t.Errorf("spans = %dx%d, want %dx%d", cell.Attrs.ColSpan, cell.Attrs.RowSpan, MaxColSpan, MaxRowSpan)
	}
}

func TestNodeJSONCellDefaults(t *testing.T) {
	data := `{"type":"doc","content":[{"type":"table","content":[{"type":"tableBody","content":[
		{"type":"tableRow","content":[
			{"type":"tableCell","content":[{"type":"paragraph"}]},
			{"type":"tableCell","attrs":{"align":"center"}}
		]}]}]}]}`

	var doc Node
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatal(err)
	}
	if err := Validate(&doc); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	for _, cell := range doc.Content[0].Body().Content[0].Content {
		if cell.Attrs.ColSpan != 1 || cell.Attrs.RowSpan != 1 || cell.ChildCount() != 1 {
			t.Errorf("cell %s has attrs %s, want 1x1 with one block", cell, cell.Attrs)
		}
	}

	want := NewDoc(NewTable(nil, NewSection(NodeTableBody, NewRow(
		NewCell(Attrs{}, NewParagraph("")),
		NewCell(Attrs{Align: AlignCenter}),
	)), nil))
	if !doc.Equal(want) {
		t.Errorf("decoded %s, want %s", &doc, want)
	}
}
