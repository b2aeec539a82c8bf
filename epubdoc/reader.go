// Package epubdoc reads EPUB books into document trees.
//
// The content documents of the spine are read in order with the HTML
// reader, so their tables keep spans and alignment. Books with encrypted
// content are rejected.
package epubdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/gridtable/htmldoc"
	"github.com/tsawler/gridtable/model"
)

// Reader-related errors.
var (
	ErrInvalidArchive = errors.New("epub: invalid or corrupted archive")
	ErrMissingContent = errors.New("epub: referenced content file not found")
)

// Open reads an EPUB file
func Open(filename string, opts htmldoc.Options) (*model.Node, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), int64(len(data)), opts)
}

// Read reads an EPUB book from r. Chapters missing from the archive are
// skipped; it is an error when none can be read.
func Read(r io.ReaderAt, size int64, opts htmldoc.Options) (*model.Node, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, ErrInvalidArchive
	}
	if err := checkForDRM(zr); err != nil {
		return nil, err
	}
	opfPath, err := packagePath(zr)
	if err != nil {
		return nil, err
	}
	b, err := parseOPF(zr, opfPath)
	if err != nil {
		return nil, err
	}

	var blocks []*model.Node
	read := 0
	for _, name := range b.chapters {
		data, err := fileContent(zr, name)
		if err != nil {
			continue
		}
		chapter, err := htmldoc.Read(bytes.NewReader(data), opts)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		read++
		blocks = append(blocks, chapter.Content...)
	}
	if read == 0 {
		return nil, ErrMissingContent
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
	return nil, ErrMissingContent
}
