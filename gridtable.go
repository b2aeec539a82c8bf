// Package gridtable provides editing and conversion of documents holding
// spanning grid tables.
//
// Converting a document:
//
//	out, warnings, err := gridtable.Open("report.md").HTML()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", gridtable.FormatWarnings(warnings))
//	}
//
// With options:
//
//	md, _, err := gridtable.Open("page.html").
//	    NoPromotion().
//	    MinColumnWidth(5).
//	    Markdown()
//
// Editing a document:
//
//	ed, _ := gridtable.FromMarkdown(src)
//	if err := ed.MoveToCell(0, 1, 0); err != nil {
//	    // handle error
//	}
//	ed.Exec("addColumnAfter")
//	md, warnings := ed.Markdown(markup.DefaultOptions())
//
// The model, commands, promote and markup packages are available for lower
// level use.
package gridtable

import (
	"github.com/tsawler/gridtable/format"
	"github.com/tsawler/gridtable/model"
)

// Open opens a document file and returns a Converter for fluent
// configuration. The format is taken from the file extension, or from the
// content when the extension is not recognized.
//
// Example:
//
//	md, warnings, err := gridtable.Open("page.html").Markdown()
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		format:   format.Detect(filename),
		options:  defaultOptions(),
	}
}

// FromString creates a Converter for an in-memory document. The format is
// detected from the content: HTML, office documents (Word, PowerPoint,
// OpenDocument text), EPUB books and document JSON are recognized, any
// other text is read as markdown.
//
// Example:
//
//	html, _, err := gridtable.FromString(md).HTML()
func FromString(src string) *Converter {
	return &Converter{
		src:     []byte(src),
		options: defaultOptions(),
	}
}

// FromDocument creates a Converter for a document tree
func FromDocument(doc *model.Node) *Converter {
	return &Converter{
		doc:     doc,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	ed := gridtable.Must(gridtable.Open("doc.md").Editor())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustConvert is a helper that wraps a call to a conversion such as
// Markdown() and panics if the error is non-nil. It discards warnings and
// returns just the value.
//
// Example:
//
//	html := gridtable.MustConvert(gridtable.Open("doc.md").HTML())
func MustConvert[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
