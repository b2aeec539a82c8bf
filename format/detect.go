// Package format provides file format detection for documents holding grid
// tables.
package format

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// Markdown indicates markdown with grid and pipe tables.
	Markdown
	// HTML indicates an HTML document.
	HTML
	// JSON indicates a document tree encoded as JSON.
	JSON
	// XLSX indicates a Microsoft Excel (.xlsx) workbook. It is written,
	// never read.
	XLSX
	// DOCX indicates a Microsoft Word (.docx) document. It is read, never
	// written.
	DOCX
	// ODT indicates an OpenDocument text (.odt) document. It is read,
	// never written.
	ODT
	// PPTX indicates a Microsoft PowerPoint (.pptx) presentation. It is
	// read, never written.
	PPTX
	// EPUB indicates an EPUB book. It is read, never written.
	EPUB
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case Markdown:
		return "Markdown"
	case HTML:
		return "HTML"
	case JSON:
		return "JSON"
	case XLSX:
		return "XLSX"
	case DOCX:
		return "DOCX"
	case ODT:
		return "ODT"
	case PPTX:
		return "PPTX"
	case EPUB:
		return "EPUB"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case HTML:
		return ".html"
	case JSON:
		return ".json"
	case XLSX:
		return ".xlsx"
	case DOCX:
		return ".docx"
	case ODT:
		return ".odt"
	case PPTX:
		return ".pptx"
	case EPUB:
		return ".epub"
	default:
		return ""
	}
}

// Readable reports whether documents can be read from the format
func (f Format) Readable() bool {
	return f == Markdown || f == HTML || f == JSON || f == DOCX || f == ODT || f == PPTX || f == EPUB
}

// Parse maps a format name such as "markdown", "md" or "html" to a Format
func Parse(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "markdown", "md":
		return Markdown, nil
	case "html", "htm":
		return HTML, nil
	case "json":
		return JSON, nil
	case "xlsx":
		return XLSX, nil
	case "docx":
		return DOCX, nil
	case "odt":
		return ODT, nil
	case "pptx":
		return PPTX, nil
	case "epub":
		return EPUB, nil
	}
	return Unknown, fmt.Errorf("unknown format %q", name)
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".txt":
		return Markdown
	case ".html", ".htm":
		return HTML
	case ".json":
		return JSON
	case ".xlsx":
		return XLSX
	case ".docx":
		return DOCX
	case ".odt":
		return ODT
	case ".pptx":
		return PPTX
	case ".epub":
		return EPUB
	default:
		return Unknown
	}
}

// DetectFromMagic checks the first bytes of a document to determine format.
// Returns Unknown if the format cannot be determined from magic bytes alone.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	// ZIP magic: PK\x03\x04. Could be XLSX or any other ZIP-based format;
	// the caller should use DetectFromReader for ZIP files.
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return Unknown
	}

	if detectHTMLMagic(data) {
		return HTML
	}
	if detectJSONMagic(data) {
		return JSON
	}

	return Unknown
}

func trimLeadingSpace(data []byte) []byte {
	return bytes.TrimLeft(data, " \t\r\n")
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	data = trimLeadingSpace(data)
	if len(data) == 0 {
		return false
	}

	// Check for common HTML signatures (case-insensitive for DOCTYPE)
	upper := strings.ToUpper(string(data))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper[:min(500, len(upper))], "<HTML") {
		return true
	}

	return false
}

// detectJSONMagic checks for a document tree: an object whose first key
// is "type"
func detectJSONMagic(data []byte) bool {
	data = trimLeadingSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return false
	}
	return bytes.HasPrefix(trimLeadingSpace(data[1:]), []byte(`"type"`))
}

// DetectFromReader inspects the content to determine format. ZIP archives
// are told apart by their entries. Any other content that is neither HTML
// nor JSON is read as Markdown, which accepts any text.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if len(magic) >= 4 && magic[0] == 0x50 && magic[1] == 0x4B && magic[2] == 0x03 && magic[3] == 0x04 {
		return detectZIPFormat(r, size)
	}
	if f := DetectFromMagic(magic); f != Unknown {
		return f, nil
	}
	if bytes.IndexByte(magic, 0) >= 0 {
		return Unknown, nil
	}
	return Markdown, nil
}

// zipMimetypes maps the content of a mimetype entry to its format
var zipMimetypes = map[string]Format{
	"application/vnd.oasis.opendocument.text": ODT,
	"application/epub+zip":                    EPUB,
}

// detectZIPFormat tells the office formats apart by their archive entries
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX, nil
		case f.Name == "mimetype":
			if kind, ok := zipMimetypes[mimetype(f)]; ok {
				return kind, nil
			}
		}
	}

	return Unknown, nil
}

func mimetype(f *zip.File) string {
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, 128))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
