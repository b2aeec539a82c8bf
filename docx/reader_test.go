package docx

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/gridtable/model"
)

// buildDOCX creates a minimal DOCX archive in memory. styles may be empty.
func buildDOCX(t *testing.T, body, styles string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>` + body + `</w:body>
</w:document>`,
	}
	if styles != "" {
		files["word/styles.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + styles + `</w:styles>`
	}

	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func readDOCX(t *testing.T, body, styles string) *model.Node {
	t.Helper()
	data := buildDOCX(t, body, styles)
	doc, err := Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if err := model.Validate(doc); err != nil {
		t.Fatalf("Validate() error = %v\n%s", err, doc)
	}
	return doc
}

func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func TestRead_Paragraphs(t *testing.T) {
	body := `
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Report</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Sub"/></w:pPr><w:r><w:t>Details</w:t></w:r></w:p>
<w:p/>
<w:p>
  <w:r><w:t xml:space="preserve">plain </w:t></w:r>
  <w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">bold </w:t></w:r>
  <w:r><w:rPr><w:i/></w:rPr><w:t>italic</w:t></w:r>
  <w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t xml:space="preserve"> off</w:t></w:r>
</w:p>
<w:p><w:r><w:t>one</w:t><w:br/><w:t>two</w:t></w:r></w:p>
<w:p><w:hyperlink w:id="rId5"><w:r><w:t>linked</w:t></w:r></w:hyperlink></w:p>
<w:p><w:pPr><w:pStyle w:val="Quote"/></w:pPr><w:r><w:t>quoted</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Code"/></w:pPr><w:r><w:t>x := 1</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Code"/></w:pPr><w:r><w:t>y := 2</w:t></w:r></w:p>`

	styles := `
<w:style w:type="paragraph" w:styleId="Sub">
  <w:name w:val="Sub Title"/>
  <w:basedOn w:val="Base"/>
</w:style>
<w:style w:type="paragraph" w:styleId="Base">
  <w:name w:val="Base"/>
  <w:pPr><w:outlineLvl w:val="1"/></w:pPr>
</w:style>`

	doc := readDOCX(t, body, styles)

	want := []*model.Node{
		model.NewHeading(1, "Report"),
		model.NewHeading(2, "Details"),
		model.NewParagraph("plain **bold** *italic* off"),
		model.NewParagraph("one\ntwo"),
		model.NewParagraph("linked"),
		model.NewBlockquote(model.NewParagraph("quoted")),
		model.NewCodeBlock("", "x := 1\ny := 2"),
	}
	if len(doc.Content) != len(want) {
		t.Fatalf("got %d blocks, want %d: %s", len(doc.Content), len(want), doc)
	}
	for i, w := range want {
		if !doc.Content[i].Equal(w) {
			t.Errorf("block %d = %s, want %s", i, doc.Content[i], w)
		}
	}
}

func TestRead_SpanningTable(t *testing.T) {
	// +----+----+----+
	// | h1 | h2      |   head
	// +====+====+====+
	// | a  | b  | c  |
	// |    +----+----+
	// |    | d  | e  |
	// +----+----+----+
	body := `
<w:tbl>
  <w:tblGrid><w:gridCol/><w:gridCol/><w:gridCol/></w:tblGrid>
  <w:tr>
    <w:trPr><w:tblHeader/></w:trPr>
    <w:tc>` + para("h1") + `</w:tc>
    <w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr>
      <w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>h2</w:t></w:r></w:p>
    </w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge w:val="restart"/><w:vAlign w:val="bottom"/></w:tcPr>` + para("a") + `</w:tc>
    <w:tc>` + para("b") + `</w:tc>
    <w:tc><w:p><w:pPr><w:jc w:val="end"/></w:pPr><w:r><w:t>c</w:t></w:r></w:p></w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>
    <w:tc>` + para("d") + `</w:tc>
    <w:tc>` + para("e") + `</w:tc>
  </w:tr>
</w:tbl>`

	doc := readDOCX(t, body, "")
	if doc.ChildCount() != 1 || doc.FirstChild().Type != model.NodeTable {
		t.Fatalf("expected one grid table, got %s", doc)
	}
	table := doc.FirstChild()

	head := table.Head()
	if head == nil || head.ChildCount() != 1 {
		t.Fatalf("head = %v, want one row", head)
	}
	if table.Foot() != nil {
		t.Error("unexpected footer")
	}

	tests := []struct {
		name  string
		cell  *model.Node
		text  string
		attrs model.Attrs
	}{
		{"h1", head.Content[0].Content[0], "h1", model.Attrs{ColSpan: 1, RowSpan: 1}},
		{"h2", head.Content[0].Content[1], "h2", model.Attrs{ColSpan: 2, RowSpan: 1, Align: model.AlignCenter}},
		{"a", table.Body().Content[0].Content[0], "a", model.Attrs{ColSpan: 1, RowSpan: 2, VAlign: model.VAlignBottom}},
		{"c", table.Body().Content[0].Content[2], "c", model.Attrs{ColSpan: 1, RowSpan: 1, Align: model.AlignRight}},
		{"d", table.Body().Content[1].Content[0], "d", model.Attrs{ColSpan: 1, RowSpan: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.TextContent(); got != tt.text {
				t.Errorf("text = %q, want %q", got, tt.text)
			}
			if tt.cell.Attrs != tt.attrs {
				t.Errorf("attrs = %v, want %v", tt.cell.Attrs, tt.attrs)
			}
		})
	}
	if got := table.Body().Content[1].ChildCount(); got != 2 {
		t.Errorf("second body row has %d cells, want 2", got)
	}
}

func TestRead_MergeStopsAtHead(t *testing.T) {
	body := `
<w:tbl>
  <w:tr><w:trPr><w:tblHeader/></w:trPr>
    <w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr>` + para("h") + `</w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge/></w:tcPr>` + para("b") + `</w:tc>
  </w:tr>
</w:tbl>`

	table := readDOCX(t, body, "").FirstChild()
	if got := table.Head().Content[0].Content[0].Attrs.RowSpan; got != 1 {
		t.Errorf("head cell row span = %d, want 1", got)
	}
	if got := table.Body().Content[0].Content[0].TextContent(); got != "b" {
		t.Errorf("body cell = %q, want b", got)
	}
}

func TestRead_ContinuationOnlyRowDropped(t *testing.T) {
	body := `
<w:tbl>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr>` + para("a") + `</w:tc>
    <w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr>` + para("b") + `</w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>
    <w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>
  </w:tr>
  <w:tr>
    <w:tc>` + para("c") + `</w:tc>
    <w:tc>` + para("d") + `</w:tc>
  </w:tr>
</w:tbl>`

	table := readDOCX(t, body, "").FirstChild()
	rows := table.Body().Content
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %s", len(rows), table)
	}
	for _, cell := range rows[0].Content {
		if cell.Attrs.RowSpan != 1 {
			t.Errorf("cell %q row span = %d, want 1", cell.TextContent(), cell.Attrs.RowSpan)
		}
	}
}

func TestRead_GridBeforeAndNested(t *testing.T) {
	body := `
<w:tbl>
  <w:tr>
    <w:tc>` + para("a") + `</w:tc>
    <w:tc>` + para("b") + `</w:tc>
  </w:tr>
  <w:tr>
    <w:trPr><w:gridBefore w:val="1"/></w:trPr>
    <w:tc>
      <w:tbl><w:tr><w:tc>` + para("inner") + `</w:tc></w:tr></w:tbl>
      <w:p/>
    </w:tc>
  </w:tr>
</w:tbl>`

	table := readDOCX(t, body, "").FirstChild()
	row := table.Body().Content[1]
	if row.ChildCount() != 2 {
		t.Fatalf("row has %d cells, want filler plus nested", row.ChildCount())
	}
	if got := row.Content[0].TextContent(); got != "" {
		t.Errorf("filler cell text = %q", got)
	}
	nested := row.Content[1].FirstChild()
	if nested.Type != model.NodeTable {
		t.Fatalf("expected a nested table, got %s", nested)
	}
	if got := nested.TextContent(); got != "inner" {
		t.Errorf("nested text = %q", got)
	}
	if len(model.Tables(readDOCX(t, body, ""))) != 2 {
		t.Error("expected outer and nested table")
	}
}

func TestRead_EmptyBody(t *testing.T) {
	doc := readDOCX(t, "<w:p/>", "")
	if doc.ChildCount() != 1 || doc.FirstChild().Type != model.NodeParagraph {
		t.Errorf("Read() = %s, want one empty paragraph", doc)
	}
}

func TestRead_Errors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		data := []byte("plain text")
		if _, err := Read(bytes.NewReader(data), int64(len(data))); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("missing document", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create("xl/workbook.xml")
		w.Write([]byte("<workbook/>"))
		zw.Close()
		if _, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len())); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("malformed document", func(t *testing.T) {
		data := buildDOCX(t, "<w:p>", "")
		if _, err := Read(bytes.NewReader(data), int64(len(data))); err == nil {
			t.Error("expected error")
		}
	})
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.docx")
	if err := os.WriteFile(path, buildDOCX(t, para("hello"), ""), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := doc.TextContent(); got != "hello" {
		t.Errorf("text = %q", got)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.docx")); err == nil {
		t.Error("expected error for missing file")
	}
}
