package xlsx

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/promote"
)

func textRow(texts ...string) *model.Node {
	var cells []*model.Node
	for _, text := range texts {
		cells = append(cells, model.NewTextCell(text))
	}
	return model.NewRow(cells...)
}

// spanningDoc holds one table:
//
//	| name | q1 | q2 |
//	| tall | wide    |
//	|      | 3  | 4  |
func spanningDoc() *model.Node {
	return model.NewDoc(
		model.NewParagraph("intro"),
		model.NewTable(
			model.NewSection(model.NodeTableHead, textRow("name", "q1", "q2")),
			model.NewSection(model.NodeTableBody,
				model.NewRow(
					model.NewCell(model.Attrs{RowSpan: 2, VAlign: model.VAlignMiddle}, model.NewParagraph("tall")),
					model.NewCell(model.Attrs{ColSpan: 2, Align: model.AlignCenter}, model.NewParagraph("wide")),
				),
				textRow("3", "4"),
			),
			nil,
		),
	)
}

func openWorkbook(t *testing.T, doc *model.Node, opts Options) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, doc, opts); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// ============================================================================
// Plan Tests
// ============================================================================

func TestPlan_Spans(t *testing.T) {
	s := Plan(spanningDoc(), DefaultOptions())

	if s.RowCount() != 3 || s.ColCount() != 3 {
		t.Fatalf("sheet is %dx%d, want 3x3", s.RowCount(), s.ColCount())
	}
	want := []MergedRegion{
		{StartRow: 1, StartCol: 0, EndRow: 2, EndCol: 0},
		{StartRow: 1, StartCol: 1, EndRow: 1, EndCol: 2},
	}
	if len(s.MergedRegions) != len(want) {
		t.Fatalf("MergedRegions = %+v, want %+v", s.MergedRegions, want)
	}
	for i := range want {
		if s.MergedRegions[i] != want[i] {
			t.Errorf("region %d = %+v, want %+v", i, s.MergedRegions[i], want[i])
		}
	}

	tall := s.Cell(1, 0)
	if !tall.IsMergeRoot || tall.MergeRows != 2 || tall.VAlign != model.VAlignMiddle {
		t.Errorf("tall cell = %+v", tall)
	}
	if covered := s.Cell(2, 0); !covered.IsMerged || covered.IsMergeRoot || !covered.IsEmpty() {
		t.Errorf("covered cell = %+v", covered)
	}
	// the body row below is pushed right by the row span
	if c := s.Cell(2, 1); c.Value != "3" || c.Type != CellTypeNumber {
		t.Errorf("cell B3 = %+v, want number 3", c)
	}
	if !s.Cell(0, 0).Header || s.Cell(1, 1).Header {
		t.Error("only head cells should be marked as header")
	}
}

func TestPlan_StacksTables(t *testing.T) {
	simple, ok := promote.PromoteToSimple(model.NewTable(
		model.NewSection(model.NodeTableHead, textRow("a", "b")),
		model.NewSection(model.NodeTableBody, textRow("1", "2")),
		nil,
	))
	if !ok {
		t.Fatal("PromoteToSimple failed")
	}
	doc := model.NewDoc(
		model.BuildTable(2, 2, false, false),
		model.NewBlockquote(simple),
	)

	opts := DefaultOptions()
	opts.Gap = 2
	s := Plan(doc, opts)
	if len(s.Tables) != 2 || s.Tables[0] != 0 || s.Tables[1] != 4 {
		t.Fatalf("Tables = %v, want [0 4]", s.Tables)
	}
	head := s.Cell(4, 0)
	if head == nil || head.Value != "a" || !head.Header || head.Align != model.AlignLeft {
		t.Errorf("simple head cell = %+v", head)
	}
}

func TestPlan_NumbersOff(t *testing.T) {
	opts := DefaultOptions()
	opts.Numbers = false
	s := Plan(spanningDoc(), opts)
	if c := s.Cell(2, 1); c.Type != CellTypeString {
		t.Errorf("cell type = %v, want string", c.Type)
	}
}

func TestPlan_NestedTableText(t *testing.T) {
	inner := model.NewTable(nil, model.NewSection(model.NodeTableBody, textRow("in")), nil)
	doc := model.NewDoc(model.NewTable(nil, model.NewSection(model.NodeTableBody,
		model.NewRow(model.NewCell(model.DefaultCellAttrs(), model.NewParagraph("out"), inner)),
	), nil))

	s := Plan(doc, DefaultOptions())
	if len(s.Tables) != 1 {
		t.Fatalf("Tables = %v, want one table", s.Tables)
	}
	if got := s.Cell(0, 0).Value; got != "out\nin" {
		t.Errorf("value = %q, want %q", got, "out\nin")
	}
}

// ============================================================================
// Workbook Tests
// ============================================================================

func TestWrite_MergedRanges(t *testing.T) {
	f := openWorkbook(t, spanningDoc(), DefaultOptions())

	merged, err := f.GetMergeCells("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, m := range merged {
		got[m.GetStartAxis()+":"+m.GetEndAxis()] = m.GetCellValue()
	}
	want := map[string]string{"A2:A3": "tall", "B2:C2": "wide"}
	for ref, value := range want {
		if got[ref] != value {
			t.Errorf("merged %s = %q, want %q (all: %v)", ref, got[ref], value, got)
		}
	}
	if len(got) != len(want) {
		t.Errorf("got %d merged ranges, want %d", len(got), len(want))
	}

	for ref, want := range map[string]string{"A1": "name", "C1": "q2", "B3": "3", "C3": "4"} {
		v, err := f.GetCellValue("Sheet1", ref)
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Errorf("%s = %q, want %q", ref, v, want)
		}
	}
}

func TestWrite_AlignmentStyles(t *testing.T) {
	f := openWorkbook(t, spanningDoc(), DefaultOptions())

	style := func(ref string) *excelize.Style {
		t.Helper()
		id, err := f.GetCellStyle("Sheet1", ref)
		if err != nil {
			t.Fatal(err)
		}
		s, err := f.GetStyle(id)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	if s := style("B2"); s.Alignment == nil || s.Alignment.Horizontal != "center" {
		t.Errorf("B2 alignment = %+v, want center", s.Alignment)
	}
	if s := style("A2"); s.Alignment == nil || s.Alignment.Vertical != "center" {
		t.Errorf("A2 alignment = %+v, want vertical center", s.Alignment)
	}
	if s := style("A1"); s.Font == nil || !s.Font.Bold {
		t.Errorf("A1 font = %+v, want bold", s.Font)
	}
}

func TestWriteFile_SheetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.xlsx")
	opts := DefaultOptions()
	opts.Sheet = "Tables"
	if err := WriteFile(path, spanningDoc(), opts); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if list := f.GetSheetList(); len(list) != 1 || list[0] != "Tables" {
		t.Errorf("GetSheetList() = %v, want [Tables]", list)
	}
	if v, _ := f.GetCellValue("Tables", "B2"); v != "wide" {
		t.Errorf("B2 = %q, want wide", v)
	}
}

func TestWrite_NoTables(t *testing.T) {
	f := openWorkbook(t, model.NewDoc(model.NewParagraph("text only")), DefaultOptions())
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("GetRows() = %v, want none", rows)
	}
}
