package pptx

import "encoding/xml"

// slideXML represents a ppt/slides/slide*.xml file structure.
type slideXML struct {
	XMLName xml.Name  `xml:"sld"`
	Tree    shapesXML `xml:"cSld>spTree"`
}

// shapesXML holds the shapes of a shape tree or group in drawing order.
// Groups are flattened.
type shapesXML struct {
	Shapes []shapeXML
}

// shapeXML is a text shape or a table frame
type shapeXML struct {
	Text  *spXML
	Table *tblXML
}

func (s *shapesXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				var sp spXML
				if err := d.DecodeElement(&sp, &t); err != nil {
					return err
				}
				s.Shapes = append(s.Shapes, shapeXML{Text: &sp})
			case "graphicFrame":
				var gf graphicFrameXML
				if err := d.DecodeElement(&gf, &t); err != nil {
					return err
				}
				if gf.Table != nil {
					s.Shapes = append(s.Shapes, shapeXML{Table: gf.Table})
				}
			case "grpSp":
				var inner shapesXML
				if err := d.DecodeElement(&inner, &t); err != nil {
					return err
				}
				s.Shapes = append(s.Shapes, inner.Shapes...)
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

// spXML represents a shape element.
type spXML struct {
	Placeholder *phXML     `xml:"nvSpPr>nvPr>ph"`
	TxBody      *txBodyXML `xml:"txBody"`
}

type phXML struct {
	Type string `xml:"type,attr"` // title, body, subTitle, ctrTitle, etc.
}

// graphicFrameXML represents a graphic frame. Only tables are read.
type graphicFrameXML struct {
	Table *tblXML `xml:"graphic>graphicData>tbl"`
}

// txBodyXML represents text body content.
type txBodyXML struct {
	P []pXML `xml:"p"`
}

// pXML represents a paragraph as an ordered sequence of runs
type pXML struct {
	Align string // l, ctr, r, just
	Runs  []rXML
}

// rXML represents a text run. Breaks and fields become runs of their own.
type rXML struct {
	Bold   bool
	Italic bool
	Text   string
}

func (p *pXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				p.Align = attr(t, "algn")
				if err := d.Skip(); err != nil {
					return err
				}
			case "r", "fld":
				var run runXML
				if err := d.DecodeElement(&run, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, rXML{
					Bold:   run.Props.Bold.on(),
					Italic: run.Props.Italic.on(),
					Text:   run.T,
				})
			case "br":
				p.Runs = append(p.Runs, rXML{Text: "\n"})
				if err := d.Skip(); err != nil {
					return err
				}
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

type runXML struct {
	Props rPrXML `xml:"rPr"`
	T     string `xml:"t"`
}

type rPrXML struct {
	Bold   flagXML `xml:"b,attr"`
	Italic flagXML `xml:"i,attr"`
}

// flagXML is an xsd:boolean attribute
type flagXML string

func (f flagXML) on() bool {
	return f == "1" || f == "true"
}

// tblXML represents a table.
type tblXML struct {
	Props tblPrXML `xml:"tblPr"`
	Tr    []trXML  `xml:"tr"`
}

type tblPrXML struct {
	FirstRow flagXML `xml:"firstRow,attr"`
	LastRow  flagXML `xml:"lastRow,attr"`
}

type trXML struct {
	Tc []tcXML `xml:"tc"`
}

type tcXML struct {
	TxBody   *txBodyXML `xml:"txBody"`
	Props    tcPrXML    `xml:"tcPr"`
	RowSpan  int        `xml:"rowSpan,attr"`
	GridSpan int        `xml:"gridSpan,attr"`
	VMerge   flagXML    `xml:"vMerge,attr"`
	HMerge   flagXML    `xml:"hMerge,attr"`
}

type tcPrXML struct {
	Anchor string `xml:"anchor,attr"` // t, ctr, b
}

// coreXML represents docProps/core.xml.
type coreXML struct {
	XMLName xml.Name `xml:"coreProperties"`
	Title   string   `xml:"title"`
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

// span returns a span attribute value, treating absent and invalid values
// as 1
func span(n int) int {
	return max(n, 1)
}
