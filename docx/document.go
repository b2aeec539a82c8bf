package docx

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// documentXML represents the structure of word/document.xml
type documentXML struct {
	XMLName xml.Name    `xml:"document"`
	Body    *contentXML `xml:"body"`
}

// contentXML holds the paragraphs and tables of a body or table cell in
// document order. Properties is only set for cells.
type contentXML struct {
	Properties cellPropsXML
	Blocks     []blockXML
}

// blockXML is either a paragraph or a table
type blockXML struct {
	Paragraph *paragraphXML
	Table     *tableXML
}

// UnmarshalXML decodes child paragraphs and tables in order. Content
// controls (<w:sdt>) are unwrapped; other children are skipped.
func (c *contentXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return err
				}
				c.Blocks = append(c.Blocks, blockXML{Paragraph: &p})
			case "tbl":
				var tbl tableXML
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return err
				}
				c.Blocks = append(c.Blocks, blockXML{Table: &tbl})
			case "tcPr":
				if err := d.DecodeElement(&c.Properties, &t); err != nil {
					return err
				}
			case "sdt":
				var sdt sdtXML
				if err := d.DecodeElement(&sdt, &t); err != nil {
					return err
				}
				c.Blocks = append(c.Blocks, sdt.Content.Blocks...)
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

// sdtXML represents a content control (<w:sdt>)
type sdtXML struct {
	Content contentXML `xml:"sdtContent"`
}

// paragraphXML represents a paragraph element (<w:p>). Runs are collected
// in order, including those inside hyperlinks and tracked insertions.
type paragraphXML struct {
	Properties paragraphPropsXML
	Runs       []runXML
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if err := d.DecodeElement(&p.Properties, &t); err != nil {
					return err
				}
			case "r":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case "hyperlink", "ins", "smartTag", "fldSimple", "sdt", "sdtContent":
				// Wrappers whose runs belong to the paragraph
				var inner paragraphXML
				if err := d.DecodeElement(&inner, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, inner.Runs...)
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

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style         valXML `xml:"pStyle"`
	Justification valXML `xml:"jc"`
	OutlineLvl    valXML `xml:"outlineLvl"`
}

// valXML is an element whose only content is a w:val attribute
type valXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
}

// Present reports whether the element appeared
func (v valXML) Present() bool { return v.XMLName.Local != "" }

// On reports whether a toggle property such as <w:b/> is switched on. The
// element alone means on; w:val can switch it off.
func (v valXML) On() bool {
	if !v.Present() {
		return false
	}
	switch strings.ToLower(v.Val) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// Int parses the value, returning def when it is missing or malformed
func (v valXML) Int(def int) int {
	n, err := strconv.Atoi(v.Val)
	if err != nil {
		return def
	}
	return n
}

// runXML represents a text run (<w:r>). Text holds the run's text, tabs and
// breaks in order.
type runXML struct {
	Properties runPropsXML
	Text       string
}

func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				if err := d.DecodeElement(&r.Properties, &t); err != nil {
					return err
				}
			case "t":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				sb.WriteString(s)
			case "tab":
				sb.WriteString("\t")
				if err := d.Skip(); err != nil {
					return err
				}
			case "br", "cr":
				sb.WriteString("\n")
				if err := d.Skip(); err != nil {
					return err
				}
			case "noBreakHyphen":
				sb.WriteString("-")
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			r.Text = sb.String()
			return nil
		}
	}
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Bold   valXML `xml:"b"`
	Italic valXML `xml:"i"`
}

// tableXML represents a table (<w:tbl>).
type tableXML struct {
	Grid tableGridXML  `xml:"tblGrid"`
	Rows []tableRowXML `xml:"tr"`
}

// tableGridXML represents table grid definition.
type tableGridXML struct {
	Cols []struct{} `xml:"gridCol"`
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	Properties rowPropsXML  `xml:"trPr"`
	Cells      []contentXML `xml:"tc"`
}

// rowPropsXML represents row properties.
type rowPropsXML struct {
	Header     valXML `xml:"tblHeader"` // repeated header row
	GridBefore valXML `xml:"gridBefore"`
	GridAfter  valXML `xml:"gridAfter"`
}

// cellPropsXML represents cell properties.
type cellPropsXML struct {
	GridSpan valXML `xml:"gridSpan"`
	VMerge   valXML `xml:"vMerge"` // "restart" starts a merge, anything else continues it
	VAlign   valXML `xml:"vAlign"`
}
