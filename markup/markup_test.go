package markup

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/tsawler/gridtable/model"
)

const canonical = `+-------------------+------+
| Table Headings    | Here |
+--------+----------+------+
| Sub    | Headings | Too  |
+========+=================+
| cell   | column spanning |
| spans  +---------:+------+
| rows   |   normal | cell |
+---v----+:---------------:+
|        | cells can be    |
|        | *formatted*     |
|        | **paragraphs**  |
|        | ` + "```" + `             |
| multi  | and contain     |
| line   | blocks          |
| cells  | ` + "```" + `             |
+========+=========:+======+
| footer |    cells |      |
+--------+----------+------+`

const malformed = `
----------------+--------+--------+
| Grid Tables    | Are    | Cool   |
+================+========+========+
| col 1 is       | left-  | $1600 |
| left-aligned   | align  |        |
+----------------+--------+--------+
| col 2 is       | cent-  | $12   |
| centered       | ered   |        |
+----------------+--------+--------+
`

func textRow(texts ...string) *model.Node {
	var cells []*model.Node
	for _, text := range texts {
		cells = append(cells, model.NewTextCell(text))
	}
	return model.NewRow(cells...)
}

func onlyTable(t *testing.T, doc *model.Node) *model.Node {
	t.Helper()
	if doc.ChildCount() != 1 || doc.FirstChild().Type != model.NodeTable {
		t.Fatalf("expected a single table, got %s", doc)
	}
	return doc.FirstChild()
}

func gridOptions() Options {
	opts := DefaultOptions()
	opts.Promote = false
	return opts
}

// ============================================================================
// Writer Tests
// ============================================================================

func TestSerializeRectangularTableAsPipe(t *testing.T) {
	doc := model.NewDoc(model.NewTable(
		model.NewSection(model.NodeTableHead, textRow("a", "b")),
		model.NewSection(model.NodeTableBody, textRow("1", "2")),
		nil,
	))

	got, diags := Serialize(doc, DefaultOptions())
	want := "| a   | b   |\n| --- | --- |\n| 1   | 2   |\n"
	if got != want {
		t.Errorf("Serialize() =\n%s\nwant\n%s", got, want)
	}
	if strings.Contains(got, "+") {
		t.Error("pipe output contains grid corners")
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}
}

func TestSerializeFooterTableAsGrid(t *testing.T) {
	doc := model.NewDoc(model.NewTable(
		model.NewSection(model.NodeTableHead, textRow("h1", "h2")),
		model.NewSection(model.NodeTableBody, textRow("b1", "b2")),
		model.NewSection(model.NodeTableFoot, textRow("f1", "f2")),
	))

	got, diags := Serialize(doc, DefaultOptions())
	want := strings.Join([]string{
		"+----+----+",
		"| h1 | h2 |",
		"+====+====+",
		"| b1 | b2 |",
		"+====+====+",
		"| f1 | f2 |",
		"+----+----+",
	}, "\n") + "\n"
	if got != want {
		t.Errorf("Serialize() =\n%s\nwant\n%s", got, want)
	}
	if len(diags) != 1 || diags[0].Pos != 0 || !strings.Contains(diags[0].Message, "has footer") {
		t.Errorf("diagnostics = %v, want one footer note for the table at 0", diags)
	}
}

func TestSerializeBlocks(t *testing.T) {
	doc := model.NewDoc(
		model.NewHeading(1, "Title"),
		model.NewParagraph("Text"),
		model.NewCodeBlock("go", "x := 1"),
		model.NewBlockquote(model.NewParagraph("quoted")),
	)
	got, _ := Serialize(doc, DefaultOptions())
	want := "# Title\n\nText\n\n```go\nx := 1\n```\n\n> quoted\n"
	if got != want {
		t.Errorf("Serialize() =\n%q\nwant\n%q", got, want)
	}

	back, diags := Parse(got)
	if len(diags) != 0 {
		t.Errorf("Parse() diagnostics = %v", diags)
	}
	if !back.Equal(doc) {
		t.Errorf("Parse(Serialize()) =\n%s\nwant\n%s", back, doc)
	}
}

func TestSerializeNormalizesCellEmphasis(t *testing.T) {
	doc := model.NewDoc(model.NewTable(
		model.NewSection(model.NodeTableHead, textRow("__h__")),
		model.NewSection(model.NodeTableBody, textRow("x")),
		nil,
	))
	got, _ := Serialize(doc, DefaultOptions())
	want := "| **h** |\n| ----- |\n| x     |\n"
	if got != want {
		t.Errorf("Serialize() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteGridWideCharacters(t *testing.T) {
	table := model.NewTable(
		model.NewSection(model.NodeTableHead, textRow("日本語", "x")),
		model.NewSection(model.NodeTableBody, textRow("y", "ü")),
		model.NewSection(model.NodeTableFoot, textRow("z", "w")),
	)
	out := Table(table, gridOptions())
	lines := strings.Split(out, "\n")
	width := runewidth.StringWidth(lines[0])
	for i, line := range lines {
		if w := runewidth.StringWidth(line); w != width {
			t.Errorf("line %d %q is %d cells wide, want %d", i, line, w, width)
		}
	}

	doc, diags := Parse(out)
	if len(diags) != 0 {
		t.Fatalf("Parse() diagnostics = %v", diags)
	}
	if got := onlyTable(t, doc); !got.Equal(table) {
		t.Errorf("round trip =\n%s\nwant\n%s", got, table)
	}
}

// ============================================================================
// Grid Reader Tests
// ============================================================================

func TestParseCanonicalGrid(t *testing.T) {
	doc, diags := Parse(canonical)
	if len(diags) != 0 {
		t.Fatalf("Parse() diagnostics = %v", diags)
	}
	table := onlyTable(t, doc)
	if err := model.ValidateTable(table); err != nil {
		t.Fatalf("ValidateTable() = %v", err)
	}

	head, body, foot := table.Head(), table.Body(), table.Foot()
	if head == nil || body == nil || foot == nil {
		t.Fatalf("sections = %v, %v, %v; want all three", head, body, foot)
	}
	if head.ChildCount() != 2 || body.ChildCount() != 3 || foot.ChildCount() != 1 {
		t.Fatalf("rows = %d/%d/%d, want 2/3/1", head.ChildCount(), body.ChildCount(), foot.ChildCount())
	}

	tests := []struct {
		name  string
		cell  *model.Node
		text  string
		attrs model.Attrs
	}{
		{"heading spans two columns", head.Content[0].Content[0], "Table Headings", model.Attrs{ColSpan: 2, RowSpan: 1}},
		{"row span", body.Content[0].Content[0], "cell\nspans\nrows", model.Attrs{ColSpan: 1, RowSpan: 2}},
		{"column span", body.Content[0].Content[1], "column spanning", model.Attrs{ColSpan: 2, RowSpan: 1}},
		{"right aligned", body.Content[1].Content[0], "normal", model.Attrs{ColSpan: 1, RowSpan: 1, Align: model.AlignRight}},
		{"bottom aligned", body.Content[2].Content[0], "multi\nline\ncells", model.Attrs{ColSpan: 1, RowSpan: 1, VAlign: model.VAlignBottom}},
		{"centered", body.Content[2].Content[1], "cells can be\n*formatted*\n**paragraphs**\nand contain\nblocks", model.Attrs{ColSpan: 2, RowSpan: 1, Align: model.AlignCenter}},
		{"footer", foot.Content[0].Content[1], "cells", model.Attrs{ColSpan: 1, RowSpan: 1, Align: model.AlignRight}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.TextContent(); got != tt.text {
				t.Errorf("text = %q, want %q", got, tt.text)
			}
			if tt.cell.Attrs != tt.attrs {
				t.Errorf("attrs = %+v, want %+v", tt.cell.Attrs, tt.attrs)
			}
		})
	}

	blocks := body.Content[2].Content[1].Content
	if len(blocks) != 2 || blocks[1].Type != model.NodeCodeBlock {
		t.Errorf("centered cell blocks = %v, want paragraph and code block", blocks)
	}
	if got := foot.Content[0].ChildCount(); got != 3 {
		t.Errorf("footer cells = %d, want 3", got)
	}
}

func TestCanonicalGridRoundTrip(t *testing.T) {
	first, _ := Parse(canonical)
	out, diags := Serialize(first, gridOptions())
	if len(diags) != 0 {
		t.Fatalf("Serialize() diagnostics = %v", diags)
	}
	second, diags := Parse(out)
	if len(diags) != 0 {
		t.Fatalf("Parse() diagnostics = %v\n%s", diags, out)
	}
	if !second.Equal(first) {
		t.Errorf("round trip changed the document:\n%s\nfirst  %s\nsecond %s", out, first, second)
	}
}

func TestMalformedGridStaysText(t *testing.T) {
	doc, _ := Parse(malformed)
	for _, block := range doc.Content {
		if block.Type == model.NodeTable {
			t.Fatalf("malformed input parsed as a table: %s", doc)
		}
	}
	if !strings.Contains(doc.TextContent(), "+===") {
		t.Errorf("text = %q, want the raw grid lines kept", doc.TextContent())
	}
}

func TestBrokenGridReportsDiagnostic(t *testing.T) {
	src := "+---+---+\n| a | b |\n+---+--+\n"
	doc, diags := Parse(src)

	if doc.ChildCount() != 1 || doc.FirstChild().Type != model.NodeParagraph {
		t.Fatalf("Parse() = %s, want one paragraph", doc)
	}
	if got := doc.FirstChild().TextContent(); got != "+---+---+\n| a | b |\n+---+--+" {
		t.Errorf("paragraph = %q", got)
	}
	if len(diags) != 1 || diags[0].Line != 1 || diags[0].Pos != -1 {
		t.Fatalf("diagnostics = %v, want one at line 1", diags)
	}
	if !strings.HasPrefix(diags[0].String(), "line 1: grid table kept as text") {
		t.Errorf("diagnostic = %q", diags[0].String())
	}
}

func TestGridAlignmentRoundTrip(t *testing.T) {
	cell := func(a model.Align, v model.VAlign, text string) *model.Node {
		return model.NewCell(model.Attrs{Align: a, VAlign: v}, model.NewParagraph(text))
	}
	table := model.NewTable(
		model.NewSection(model.NodeTableHead, model.NewRow(
			cell(model.AlignLeft, "", "l"),
			cell(model.AlignCenter, "", "c"),
			cell(model.AlignRight, "", "r"),
			cell(model.AlignJustify, "", "j"),
		)),
		model.NewSection(model.NodeTableBody, model.NewRow(
			cell(model.AlignRight, model.VAlignTop, "t"),
			cell("", model.VAlignMiddle, "m"),
			cell(model.AlignCenter, model.VAlignBottom, "b"),
			cell("", "", "n"),
		)),
		nil,
	)

	out := Table(table, gridOptions())
	if !strings.Contains(out, ">") || !strings.Contains(out, "<") {
		t.Errorf("justify markers missing:\n%s", out)
	}

	doc, diags := Parse(out)
	if len(diags) != 0 {
		t.Fatalf("Parse() diagnostics = %v\n%s", diags, out)
	}
	if got := onlyTable(t, doc); !got.Equal(table) {
		t.Errorf("round trip =\n%s\nwant\n%s\nmarkup:\n%s", got, table, out)
	}
}

func TestGridSpanRoundTrip(t *testing.T) {
	wide := model.NewCell(model.Attrs{ColSpan: 2}, model.NewParagraph("wide"))
	tall := model.NewCell(model.Attrs{RowSpan: 2}, model.NewParagraph("tall"))
	table := model.NewTable(
		model.NewSection(model.NodeTableHead, textRow("a", "b", "c")),
		model.NewSection(model.NodeTableBody,
			model.NewRow(tall, wide),
			textRow("d", "e"),
		),
		nil,
	)

	out := Table(table, gridOptions())
	doc, diags := Parse(out)
	if len(diags) != 0 {
		t.Fatalf("Parse() diagnostics = %v\n%s", diags, out)
	}
	if got := onlyTable(t, doc); !got.Equal(table) {
		t.Errorf("round trip =\n%s\nwant\n%s\nmarkup:\n%s", got, table, out)
	}
}

func TestGridEscapesColumnRule(t *testing.T) {
	table := model.NewTable(
		model.NewSection(model.NodeTableHead, textRow("h1", "h2")),
		model.NewSection(model.NodeTableBody, textRow("a | b", `c \| d`)),
		nil,
	)

	out := Table(table, gridOptions())
	if !strings.Contains(out, `a \| b`) || !strings.Contains(out, `c \\| d`) {
		t.Errorf("cell pipes not escaped:\n%s", out)
	}
	doc, diags := Parse(out)
	if len(diags) != 0 {
		t.Fatalf("Parse() diagnostics = %v\n%s", diags, out)
	}
	if got := onlyTable(t, doc); !got.Equal(table) {
		t.Errorf("round trip =\n%s\nwant\n%s\nmarkup:\n%s", got, table, out)
	}
}

func TestSerializeReportsUndrawnSpan(t *testing.T) {
	merged := model.NewDoc(model.NewTable(
		nil,
		model.NewSection(model.NodeTableBody, model.NewRow(
			model.NewCell(model.Attrs{ColSpan: 2}, model.NewParagraph("ab")),
		)),
		nil,
	))
	drawn := model.NewDoc(model.NewTable(
		model.NewSection(model.NodeTableHead, textRow("a", "b")),
		model.NewSection(model.NodeTableBody, model.NewRow(
			model.NewCell(model.Attrs{ColSpan: 2}, model.NewParagraph("ab")),
		)),
		nil,
	))

	tests := []struct {
		name string
		doc  *model.Node
		want int
	}{
		{"single merged row", merged, 1},
		{"border drawn by head", drawn, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := Serialize(tt.doc, gridOptions())
			got := 0
			for _, d := range diags {
				if strings.Contains(d.Message, "lost in grid form") {
					got++
					if d.Pos != 0 {
						t.Errorf("diagnostic position = %d, want 0", d.Pos)
					}
				}
			}
			if got != tt.want {
				t.Errorf("span diagnostics = %d, want %d (%v)", got, tt.want, diags)
			}
		})
	}
}

func TestNestedGridRoundTrip(t *testing.T) {
	inner := model.NewTable(
		model.NewSection(model.NodeTableHead, textRow("x")),
		model.NewSection(model.NodeTableBody, textRow("y")),
		model.NewSection(model.NodeTableFoot, textRow("z")),
	)
	outer := model.NewTable(
		nil,
		model.NewSection(model.NodeTableBody, model.NewRow(
			model.NewCell(model.DefaultCellAttrs(), model.NewParagraph("before"), inner),
			model.NewTextCell("next"),
		)),
		nil,
	)
	doc := model.NewDoc(outer)

	out, _ := Serialize(doc, gridOptions())
	back, diags := Parse(out)
	if len(diags) != 0 {
		t.Fatalf("Parse() diagnostics = %v\n%s", diags, out)
	}
	if !back.Equal(doc) {
		t.Errorf("round trip =\n%s\nwant\n%s\nmarkup:\n%s", back, doc, out)
	}
}

func TestGridScannerErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"too small", []string{"+-+", "+-+"}},
		{"open right side", []string{"+---+", "| a  ", "+---+"}},
		{"missing bottom", []string{"+---+---+", "| a | b |"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &parser{}
			if _, err := p.parseGrid(tt.lines, 1); !errors.Is(err, ErrGridIncomplete) {
				t.Errorf("parseGrid() error = %v, want ErrGridIncomplete", err)
			}
		})
	}
}

// ============================================================================
// Pipe Table Tests
// ============================================================================

func TestParsePipeTable(t *testing.T) {
	src := "| a | b |\n|:-:|--:|\n| 1 | 2 |\n| 3 |\n"
	doc, diags := Parse(src)
	if len(diags) != 0 {
		t.Fatalf("Parse() diagnostics = %v", diags)
	}
	table := onlyTable(t, doc)

	head := table.Head().Content[0]
	if head.Content[0].Attrs.Align != model.AlignCenter || head.Content[1].Attrs.Align != model.AlignRight {
		t.Errorf("header aligns = %q, %q", head.Content[0].Attrs.Align, head.Content[1].Attrs.Align)
	}
	if got := table.Body().ChildCount(); got != 2 {
		t.Fatalf("body rows = %d, want 2", got)
	}
	if got := table.Body().Content[1].ChildCount(); got != 2 {
		t.Errorf("short row padded to %d cells, want 2", got)
	}

	out, _ := Serialize(doc, DefaultOptions())
	want := "| a   | b   |\n| :-: | --: |\n| 1   | 2   |\n| 3   |     |\n"
	if out != want {
		t.Errorf("Serialize() =\n%s\nwant\n%s", out, want)
	}
}

func TestSplitPipeRow(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"| a | b |", []string{"a", "b"}},
		{"a | b", []string{"a", "b"}},
		{`| a \| b | c |`, []string{"a | b", "c"}},
		{"|  |", []string{""}},
	}
	for _, tt := range tests {
		got := splitPipeRow(tt.line)
		if strings.Join(got, "/") != strings.Join(tt.want, "/") || len(got) != len(tt.want) {
			t.Errorf("splitPipeRow(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

// ============================================================================
// Inline and Normalization Tests
// ============================================================================

func TestNormalizeInline(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"__a__", "**a**"},
		{"_a_", "*a*"},
		{"a _b_ and __c__", "a *b* and **c**"},
		{"_a_ _b_", "*a* *b*"},
		{"snake_case_name", "snake_case_name"},
		{"*kept* **too**", "*kept* **too**"},
	}
	for _, tt := range tests {
		if got := normalizeInline(tt.in); got != tt.want {
			t.Errorf("normalizeInline(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseNormalizesToNFC(t *testing.T) {
	doc, _ := Parse("e\u0301")
	if got := doc.TextContent(); got != "\u00e9" {
		t.Errorf("TextContent() = %q, want precomposed é", got)
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"abc", 3},
		{"日本", 4},
		{"e\u0301", 1},
		{"", 0},
	}
	for _, tt := range tests {
		if got := displayWidth(tt.s); got != tt.want {
			t.Errorf("displayWidth(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}
