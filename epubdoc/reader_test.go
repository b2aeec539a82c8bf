package epubdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/gridtable/htmldoc"
	"github.com/tsawler/gridtable/model"
)

const containerXMLSource = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const opfSource = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="cover" href="cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="chapter1" href="text/chapter%201.xhtml" media-type="application/xhtml+xml"/>
    <item id="chapter2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
    <item id="style" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="nav"/>
    <itemref idref="cover" linear="no"/>
    <itemref idref="chapter2"/>
    <itemref idref="chapter1"/>
    <itemref idref="style"/>
    <itemref idref="missing"/>
  </spine>
</package>`

func chapter(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>t</title></head><body>` + body + `</body></html>`
}

// buildEPUB creates an EPUB archive in memory. The mimetype entry comes
// first and is stored uncompressed.
func buildEPUB(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	mimeWriter, err := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatal(err)
	}
	mimeWriter.Write([]byte("application/epub+zip"))

	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testBook() map[string]string {
	return map[string]string{
		"META-INF/container.xml":     containerXMLSource,
		"OEBPS/content.opf":          opfSource,
		"OEBPS/nav.xhtml":            chapter(`<nav><ol><li>Contents</li></ol></nav>`),
		"OEBPS/cover.xhtml":          chapter(`<p>Cover</p>`),
		"OEBPS/text/chapter 1.xhtml": chapter(`<h1>Conclusion</h1><p>The end.</p>`),
		"OEBPS/chapter2.xhtml": chapter(`<h1>Introduction</h1>
<table>
  <thead><tr><th>a</th><th>b</th></tr></thead>
  <tbody><tr><td colspan="2">wide</td></tr></tbody>
</table>`),
	}
}

func TestRead(t *testing.T) {
	data := buildEPUB(t, testBook())
	doc, err := Read(bytes.NewReader(data), int64(len(data)), htmldoc.DefaultOptions())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if err := model.Validate(doc); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if doc.ChildCount() != 4 {
		t.Fatalf("got %d blocks, want 4: %s", doc.ChildCount(), doc)
	}
	if want := model.NewHeading(1, "Introduction"); !doc.Content[0].Equal(want) {
		t.Errorf("first block = %s, want %s", doc.Content[0], want)
	}
	if want := model.NewHeading(1, "Conclusion"); !doc.Content[2].Equal(want) {
		t.Errorf("third block = %s, want %s", doc.Content[2], want)
	}

	tables := model.Tables(doc)
	if len(tables) != 1 {
		t.Fatalf("found %d grid tables, want 1", len(tables))
	}
	wide := tables[0].Node.Body().Content[0].Content[0]
	if wide.Attrs.ColSpan != 2 || wide.TextContent() != "wide" {
		t.Errorf("spanning cell = %s", wide)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(path, buildEPUB(t, testBook()), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path, htmldoc.DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if doc.ChildCount() == 0 {
		t.Error("expected content")
	}

	if _, err := Open("/nonexistent/file.epub", htmldoc.DefaultOptions()); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestRead_Errors(t *testing.T) {
	encryption := `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="%s"/>
    <CipherData><CipherReference URI="%s"/></CipherData>
  </EncryptedData>
</encryption>`
	with := func(extra map[string]string, drop ...string) map[string]string {
		files := testBook()
		for _, name := range drop {
			delete(files, name)
		}
		for name, content := range extra {
			files[name] = content
		}
		return files
	}

	tests := []struct {
		name  string
		files map[string]string
		want  error
	}{
		{"rights", with(map[string]string{"META-INF/rights.xml": "<rights/>"}), ErrDRMProtected},
		{"encrypted chapter", with(map[string]string{
			"META-INF/encryption.xml": fmt.Sprintf(encryption, "http://www.w3.org/2001/04/xmlenc#aes256-cbc", "OEBPS/chapter2.xhtml"),
		}), ErrDRMProtected},
		{"no container", with(nil, "META-INF/container.xml"), ErrNoContainer},
		{"broken container", with(map[string]string{"META-INF/container.xml": "<container"}), ErrInvalidContainer},
		{"no rootfile", with(map[string]string{"META-INF/container.xml": "<container><rootfiles/></container>"}), ErrNoRootfile},
		{"no package", with(nil, "OEBPS/content.opf"), ErrNoOPF},
		{"broken package", with(map[string]string{"OEBPS/content.opf": "<package"}), ErrInvalidOPF},
		{"empty spine", with(map[string]string{"OEBPS/content.opf": `<package><manifest/><spine/></package>`}), ErrEmptySpine},
		{"chapters missing", with(nil, "OEBPS/chapter2.xhtml", "OEBPS/text/chapter 1.xhtml"), ErrMissingContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildEPUB(t, tt.files)
			_, err := Read(bytes.NewReader(data), int64(len(data)), htmldoc.DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Errorf("Read() error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("font obfuscation", func(t *testing.T) {
		data := buildEPUB(t, with(map[string]string{
			"META-INF/encryption.xml": fmt.Sprintf(encryption, "http://www.idpf.org/2008/embedding#obfuscation", "OEBPS/fonts/a.otf"),
		}))
		if _, err := Read(bytes.NewReader(data), int64(len(data)), htmldoc.DefaultOptions()); err != nil {
			t.Errorf("Read() error = %v", err)
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		data := []byte("not a zip file")
		if _, err := Read(bytes.NewReader(data), int64(len(data)), htmldoc.DefaultOptions()); err != ErrInvalidArchive {
			t.Errorf("Read() error = %v, want ErrInvalidArchive", err)
		}
	})
}

func TestIsContentFile(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"OEBPS/chapter1.xhtml", true},
		{"OEBPS/STYLE.CSS", true},
		{"OEBPS/fonts/a.otf", false},
		{"OEBPS/images/cover.jpg", false},
	}
	for _, tt := range tests {
		if got := isContentFile(tt.uri); got != tt.want {
			t.Errorf("isContentFile(%q) = %v, want %v", tt.uri, got, tt.want)
		}
	}
}
