package odt

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// documentXML represents content.xml or styles.xml. Both carry style
// definitions; only content.xml has a body.
type documentXML struct {
	Automatic []styleXML `xml:"automatic-styles>style"`
	Common    []styleXML `xml:"styles>style"`
	Body      *bodyXML   `xml:"body"`
}

// bodyXML represents <office:body>
type bodyXML struct {
	Text *contentXML `xml:"text"`
}

// styleXML represents a style definition (<style:style>)
type styleXML struct {
	Name         string `xml:"name,attr"`
	Family       string `xml:"family,attr"` // paragraph, text, table-cell, ...
	Parent       string `xml:"parent-style-name,attr"`
	DisplayName  string `xml:"display-name,attr"`
	OutlineLevel string `xml:"default-outline-level,attr"`
	Paragraph    struct {
		TextAlign string `xml:"text-align,attr"`
	} `xml:"paragraph-properties"`
	Cell struct {
		VerticalAlign string `xml:"vertical-align,attr"`
	} `xml:"table-cell-properties"`
	Text struct {
		FontWeight string `xml:"font-weight,attr"`
		FontStyle  string `xml:"font-style,attr"`
	} `xml:"text-properties"`
}

// contentXML holds the blocks of the text body, a section, a list or a
// table cell in document order. Sections and lists are flattened.
type contentXML struct {
	Blocks []blockXML
}

// blockXML is a paragraph, a heading or a table
type blockXML struct {
	Paragraph *paragraphXML
	Heading   bool
	Table     *tableXML
}

func (c *contentXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p", "h":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return err
				}
				c.Blocks = append(c.Blocks, blockXML{Paragraph: &p, Heading: t.Name.Local == "h"})
			case "table":
				var tbl tableXML
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return err
				}
				c.Blocks = append(c.Blocks, blockXML{Table: &tbl})
			case "section", "list", "list-item", "list-header":
				var inner contentXML
				if err := d.DecodeElement(&inner, &t); err != nil {
					return err
				}
				c.Blocks = append(c.Blocks, inner.Blocks...)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// paragraphXML represents <text:p> or <text:h> as a sequence of runs
type paragraphXML struct {
	StyleName    string
	OutlineLevel string
	Runs         []runXML
}

// runXML is text sharing one text style
type runXML struct {
	StyleName string
	Text      string
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.StyleName = attr(start, "style-name")
	p.OutlineLevel = attr(start, "outline-level")
	return collectRuns(d, "", &p.Runs)
}

// collectRuns reads mixed content up to the end of the current element.
// Spans switch the text style; whitespace elements expand to their text.
func collectRuns(d *xml.Decoder, style string, runs *[]runXML) error {
	add := func(text string) {
		if n := len(*runs); n > 0 && (*runs)[n-1].StyleName == style {
			(*runs)[n-1].Text += text
			return
		}
		*runs = append(*runs, runXML{StyleName: style, Text: text})
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			// Source line breaks are whitespace; only <text:line-break> ends a line
			add(strings.Map(func(r rune) rune {
				switch r {
				case '\n', '\r', '\t':
					return ' '
				}
				return r
			}, string(t)))
		case xml.StartElement:
			switch t.Name.Local {
			case "span":
				if err := collectRuns(d, attr(t, "style-name"), runs); err != nil {
					return err
				}
				continue
			case "s":
				n, err := strconv.Atoi(attr(t, "c"))
				if err != nil || n < 1 {
					n = 1
				}
				add(strings.Repeat(" ", n))
			case "tab":
				add("\t")
			case "line-break":
				add("\n")
			case "note", "annotation", "bookmark", "bookmark-start", "bookmark-end", "soft-page-break":
			default:
				// Links and other wrappers keep their text
				if err := collectRuns(d, style, runs); err != nil {
					return err
				}
				continue
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// tableXML represents <table:table>
type tableXML struct {
	Columns int // grid columns declared by table-column, 0 when unknown
	Header  []rowXML
	Rows    []rowXML
}

func (tbl *tableXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "table-column":
				tbl.Columns += repeat(t, "number-columns-repeated")
				if err := d.Skip(); err != nil {
					return err
				}
			case "table-columns", "table-header-columns", "table-column-group":
				var inner tableXML
				if err := d.DecodeElement(&inner, &t); err != nil {
					return err
				}
				tbl.Columns += inner.Columns
			case "table-header-rows":
				var rows rowsXML
				if err := d.DecodeElement(&rows, &t); err != nil {
					return err
				}
				tbl.Header = append(tbl.Header, rows.Rows...)
			case "table-rows", "table-row-group":
				var rows rowsXML
				if err := d.DecodeElement(&rows, &t); err != nil {
					return err
				}
				tbl.Rows = append(tbl.Rows, rows.Rows...)
			case "table-row":
				var row rowXML
				if err := d.DecodeElement(&row, &t); err != nil {
					return err
				}
				tbl.Rows = append(tbl.Rows, row)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// rowsXML collects the rows of a row wrapper
type rowsXML struct {
	Rows []rowXML
}

func (rs *rowsXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "table-row":
				var row rowXML
				if err := d.DecodeElement(&row, &t); err != nil {
					return err
				}
				rs.Rows = append(rs.Rows, row)
			case "table-rows", "table-row-group":
				var inner rowsXML
				if err := d.DecodeElement(&inner, &t); err != nil {
					return err
				}
				rs.Rows = append(rs.Rows, inner.Rows...)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// rowXML represents <table:table-row>
type rowXML struct {
	Repeated int
	Cells    []cellXML
}

func (row *rowXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	row.Repeated = repeat(start, "number-rows-repeated")
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "table-cell", "covered-table-cell":
				var cell cellXML
				if err := d.DecodeElement(&cell, &t); err != nil {
					return err
				}
				cell.Covered = t.Name.Local == "covered-table-cell"
				row.Cells = append(row.Cells, cell)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// cellXML represents <table:table-cell> or <table:covered-table-cell>
type cellXML struct {
	StyleName string
	ColSpan   int
	RowSpan   int
	Repeated  int
	Covered   bool
	Content   contentXML
}

func (c *cellXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	c.StyleName = attr(start, "style-name")
	c.ColSpan = repeat(start, "number-columns-spanned")
	c.RowSpan = repeat(start, "number-rows-spanned")
	c.Repeated = repeat(start, "number-columns-repeated")
	return c.Content.UnmarshalXML(d, start)
}

// attr returns the value of the attribute with the given local name
func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// repeat reads a count attribute, defaulting to 1
func repeat(start xml.StartElement, name string) int {
	n, err := strconv.Atoi(attr(start, name))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
