// Package odt reads OpenDocument text (.odt) documents into document
// trees.
//
// Tables become grid tables with their column and row spans; covered cells
// are dropped and header rows form the table head. Cell alignment comes
// from the paragraph and cell styles. Headings, quotations and
// preformatted paragraphs are recognized; bold and italic spans are kept as
// inline markdown markup.
package odt

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

// Open reads an ODT file
func Open(filename string) (*model.Node, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read reads an ODT document from r
func Read(r io.ReaderAt, size int64) (*model.Node, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	data, err := fileContent(zr, "content.xml")
	if err != nil {
		return nil, fmt.Errorf("missing required file: %w", err)
	}
	var content documentXML
	if err := xml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("parsing content: %w", err)
	}

	// styles.xml is optional
	var styles *documentXML
	if data, err := fileContent(zr, "styles.xml"); err == nil {
		styles = &documentXML{}
		if err := xml.Unmarshal(data, styles); err != nil {
			styles = nil
		}
	}

	c := &converter{styles: newStyleResolver(styles, &content)}
	var blocks []*model.Node
	if content.Body != nil && content.Body.Text != nil {
		blocks = c.blocks(content.Body.Text.Blocks)
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

// blocks converts body, section or cell content. Consecutive quotation
// paragraphs share one blockquote and consecutive preformatted paragraphs
// one code block.
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
		switch {
		case !b.Heading && c.styles.isCode(p.StyleName):
			if len(quote) > 0 {
				flush()
			}
			code = append(code, plainText(p))
		case !b.Heading && c.styles.isQuote(p.StyleName):
			if len(code) > 0 {
				flush()
			}
			if text := c.text(p); text != "" {
				quote = append(quote, model.NewParagraph(text))
			}
		default:
			flush()
			if n := c.paragraph(p, b.Heading); n != nil {
				out = append(out, n)
			}
		}
	}
	flush()
	return out
}

// paragraph converts <text:p> and <text:h>. Empty paragraphs are dropped.
func (c *converter) paragraph(p *paragraphXML, heading bool) *model.Node {
	text := c.text(p)
	if text == "" {
		return nil
	}
	level := c.styles.headingLevel(p.StyleName)
	if heading {
		if n := repeatValue(p.OutlineLevel); n > 0 {
			level = n
		} else if level == 0 {
			level = 1
		}
	}
	if level > 0 {
		return model.NewHeading(min(level, 6), text)
	}
	return model.NewParagraph(text)
}

// repeatValue parses a positive count, returning 0 when absent
func repeatValue(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// text joins the runs of a paragraph, marking bold and italic spans
func (c *converter) text(p *paragraphXML) string {
	var sb strings.Builder
	for _, r := range p.Runs {
		text := r.Text
		if strings.TrimSpace(text) == "" || r.StyleName == "" {
			sb.WriteString(text)
			continue
		}
		lead := text[:len(text)-len(strings.TrimLeft(text, " \t"))]
		trail := text[len(strings.TrimRight(text, " \t")):]
		core := strings.TrimSpace(text)
		if c.styles.italic(r.StyleName) {
			core = "*" + core + "*"
		}
		if c.styles.bold(r.StyleName) {
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
