package gridtable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/gridtable/docx"
	"github.com/tsawler/gridtable/epubdoc"
	"github.com/tsawler/gridtable/format"
	"github.com/tsawler/gridtable/htmldoc"
	"github.com/tsawler/gridtable/markup"
	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/odt"
	"github.com/tsawler/gridtable/pptx"
	"github.com/tsawler/gridtable/promote"
	"github.com/tsawler/gridtable/xlsx"
)

// Converter provides a fluent interface for reading a document and writing
// it in another format. Each configuration method returns a new Converter
// instance, making it safe for concurrent use and allowing method chaining.
type Converter struct {
	// Source, exactly one of filename, src and doc is set
	filename string
	src      []byte
	doc      *model.Node
	format   format.Format // Unknown means detect from content

	// Configuration
	options ConvertOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Converter with a copy of options.
// This ensures immutability - each chain method returns a new instance.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		src:      c.src,
		doc:      c.doc,
		format:   c.format,
		options:  c.options.clone(),
		err:      c.err,
	}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// As sets the input format instead of detecting it.
//
// Example:
//
//	doc, _, err := gridtable.FromString(src).As(format.HTML).Document()
func (c *Converter) As(f format.Format) *Converter {
	n := c.clone()
	if !f.Readable() && n.err == nil {
		n.err = fmt.Errorf("cannot read %s documents", f)
	}
	n.format = f
	return n
}

// NoPromotion keeps every grid table in grid form on output. HTML input is
// then read into grid tables as well.
func (c *Converter) NoPromotion() *Converter {
	n := c.clone()
	n.options.promote = false
	return n
}

// MinColumnWidth sets the smallest interior width of grid table columns in
// markdown output.
func (c *Converter) MinColumnWidth(width int) *Converter {
	n := c.clone()
	if width < 1 && n.err == nil {
		n.err = fmt.Errorf("invalid column width %d", width)
	}
	n.options.minColumnWidth = width
	return n
}

// Pretty indents HTML output.
func (c *Converter) Pretty() *Converter {
	n := c.clone()
	n.options.pretty = true
	return n
}

// Sheet sets the worksheet name of XLSX output.
func (c *Converter) Sheet(name string) *Converter {
	n := c.clone()
	n.options.sheet = name
	return n
}

// Navigation sets how page navigation and boilerplate are skipped when
// reading HTML.
func (c *Converter) Navigation(mode htmldoc.NavigationExclusionMode) *Converter {
	n := c.clone()
	n.options.navigation = mode
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Document reads the input into a document tree. Warnings report grid
// blocks that could not be parsed.
func (c *Converter) Document() (*model.Node, []Warning, error) {
	if c.err != nil {
		return nil, nil, c.err
	}
	if c.doc != nil {
		return c.doc, nil, nil
	}

	data := c.src
	if data == nil {
		if c.filename == "" {
			return nil, nil, fmt.Errorf("no input specified")
		}
		b, err := os.ReadFile(c.filename)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", c.filename, err)
		}
		data = b
	}

	f := c.format
	if f == format.Unknown {
		detected, err := format.DetectFromReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to detect format: %w", err)
		}
		f = detected
	}

	switch f {
	case format.Markdown:
		doc, diags := markup.Parse(string(data))
		return doc, fromDiagnostics(diags), nil

	case format.HTML:
		doc, err := htmldoc.Read(bytes.NewReader(data), c.options.html())
		if err != nil {
			return nil, nil, err
		}
		return doc, nil, nil

	case format.DOCX:
		doc, err := docx.Read(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read DOCX: %w", err)
		}
		return doc, nil, nil

	case format.ODT:
		doc, err := odt.Read(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read ODT: %w", err)
		}
		return doc, nil, nil

	case format.PPTX:
		doc, err := pptx.Read(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read PPTX: %w", err)
		}
		return doc, nil, nil

	case format.EPUB:
		doc, err := epubdoc.Read(bytes.NewReader(data), int64(len(data)), c.options.html())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read EPUB: %w", err)
		}
		return doc, nil, nil

	case format.JSON:
		var doc model.Node
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, fmt.Errorf("failed to decode document: %w", err)
		}
		if doc.Type != model.NodeDoc {
			return nil, nil, fmt.Errorf("document root is %s, want doc", doc.Type)
		}
		if err := model.Validate(&doc); err != nil {
			return nil, nil, fmt.Errorf("invalid document: %w", err)
		}
		return &doc, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported input format: %s", f)
	}
}

// Markdown converts the document to markdown. Qualifying tables are written
// as pipe tables unless NoPromotion was set; warnings name the tables kept
// in grid form and why.
//
// Example:
//
//	md, warnings, err := gridtable.Open("page.html").Markdown()
func (c *Converter) Markdown() (string, []Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return "", nil, err
	}
	out, diags := markup.Serialize(doc, c.options.markup())
	return out, append(warnings, fromDiagnostics(diags)...), nil
}

// HTML converts the document to an HTML fragment. Qualifying tables are
// written as plain tables unless NoPromotion was set.
func (c *Converter) HTML() (string, []Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return "", nil, err
	}
	if c.options.promote {
		var skipped []promote.Skipped
		doc, skipped = promote.PromoteDocument(doc)
		warnings = append(warnings, fromSkipped(skipped)...)
	}
	out, err := htmldoc.RenderString(doc, c.options.html())
	if err != nil {
		return "", nil, err
	}
	return out, warnings, nil
}

// JSON encodes the document tree as indented JSON. The tree is written as
// read, without promotion.
func (c *Converter) JSON() (string, []Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return "", nil, err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return string(b) + "\n", warnings, nil
}

// XLSX writes the tables of the document to w as a workbook.
func (c *Converter) XLSX(w io.Writer) ([]Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return nil, err
	}
	if err := xlsx.Write(w, doc, c.options.xlsx()); err != nil {
		return nil, err
	}
	return warnings, nil
}

// WriteXLSX saves the tables of the document as a workbook at path.
func (c *Converter) WriteXLSX(path string) ([]Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return nil, err
	}
	if err := xlsx.WriteFile(path, doc, c.options.xlsx()); err != nil {
		return nil, err
	}
	return warnings, nil
}

// Convert writes the document to w in the given format.
func (c *Converter) Convert(w io.Writer, to format.Format) ([]Warning, error) {
	var out string
	var warnings []Warning
	var err error
	switch to {
	case format.Markdown:
		out, warnings, err = c.Markdown()
	case format.HTML:
		out, warnings, err = c.HTML()
		out += "\n"
	case format.JSON:
		out, warnings, err = c.JSON()
	case format.XLSX:
		return c.XLSX(w)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", to)
	}
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, out); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	return warnings, nil
}

// Editor reads the document into an Editor with the cursor at the start.
func (c *Converter) Editor() (*Editor, error) {
	doc, _, err := c.Document()
	if err != nil {
		return nil, err
	}
	return New(doc), nil
}
