// Package docx reads Word (.docx) documents into document trees.
//
// Word tables become grid tables: merged cells (gridSpan and vMerge) turn
// into column and row spans, repeated header rows into the table head, cell
// paragraph justification into horizontal alignment and vAlign into
// vertical alignment. Headings are recognized from paragraph styles; bold
// and italic runs are kept as inline markdown markup.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/gridtable/model"
)

// Open reads a DOCX file
func Open(filename string) (*model.Node, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read reads a DOCX document from r
func Read(r io.ReaderAt, size int64) (*model.Node, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	data, err := fileContent(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("missing required file: %w", err)
	}
	var doc documentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling document.xml: %w", err)
	}

	// Styles are optional
	var styles *stylesXML
	if data, err := fileContent(zr, "word/styles.xml"); err == nil {
		styles = &stylesXML{}
		if err := xml.Unmarshal(data, styles); err != nil {
			styles = nil
		}
	}

	c := &converter{styles: newStyleResolver(styles)}
	var blocks []*model.Node
	if doc.Body != nil {
		blocks = c.blocks(doc.Body.Blocks)
	}
	if len(blocks) == 0 {
		blocks = []*model.Node{model.NewParagraph("")}
	}
	return model.NewDoc(blocks...), nil
}

// fileContent reads a file from the ZIP archive
func fileContent(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

type converter struct {
	styles *styleResolver
}

// blocks converts body or cell content. Consecutive quote paragraphs share
// one blockquote and consecutive code paragraphs one code block.
func (c *converter) blocks(in []blockXML) []*model.Node {
	var out []*model.Node
	var quote []*model.Node
	var code []string

	flush := func() {
		if len(quote) > 0 {
			out = append(out, model.NewBlockquote(quote...))
			quote = nil
		}
		if len(code) > 0 {
			out = append(out, model.NewCodeBlock("", strings.Join(code, "\n")))
			code = nil
		}
	}

	for _, b := range in {
		if b.Table != nil {
			flush()
			if t := c.table(b.Table); t != nil {
				out = append(out, t)
			}
			continue
		}

		p := b.Paragraph
		style := p.Properties.Style.Val
		switch {
		case c.styles.isCode(style):
			if len(quote) > 0 {
				flush()
			}
			code = append(code, plainText(p))
		case c.styles.isQuote(style):
			if len(code) > 0 {
				flush()
			}
			if text := c.text(p); text != "" {
				quote = append(quote, model.NewParagraph(text))
			}
		default:
			flush()
			if n := c.paragraph(p); n != nil {
				out = append(out, n)
			}
		}
	}
	flush()
	return out
}

// paragraph converts a body paragraph. Empty paragraphs, which Word uses
// for spacing, are dropped.
func (c *converter) paragraph(p *paragraphXML) *model.Node {
	text := c.text(p)
	if text == "" {
		return nil
	}
	if level := c.headingLevel(p); level > 0 {
		return model.NewHeading(level, text)
	}
	return model.NewParagraph(text)
}

func (c *converter) headingLevel(p *paragraphXML) int {
	if lvl := p.Properties.OutlineLvl; lvl.Present() {
		if n := lvl.Int(-1); n >= 0 && n < 9 {
			return min(n+1, 6)
		}
	}
	return c.styles.headingLevel(p.Properties.Style.Val)
}

// text joins the runs of a paragraph, marking bold and italic runs
func (c *converter) text(p *paragraphXML) string {
	var sb strings.Builder
	for _, r := range p.Runs {
		text := r.Text
		if strings.TrimSpace(text) == "" {
			sb.WriteString(text)
			continue
		}
		// Markers go around the trimmed text so that "**word** " stays valid
		lead := text[:len(text)-len(strings.TrimLeft(text, " \t"))]
		trail := text[len(strings.TrimRight(text, " \t")):]
		core := strings.TrimSpace(text)
		if r.Properties.Italic.On() {
			core = "*" + core + "*"
		}
		if r.Properties.Bold.On() {
			core = "**" + core + "**"
		}
		sb.WriteString(lead + core + trail)
	}
	return cleanText(sb.String())
}

// plainText joins the runs without markup or whitespace cleanup
func plainText(p *paragraphXML) string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return norm.NFC.String(sb.String())
}

// cleanText collapses runs of whitespace within each line, trims the
// result and normalizes it to NFC
func cleanText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return norm.NFC.String(strings.TrimSpace(strings.Join(lines, "\n")))
}
