// Package pptx reads PowerPoint (.pptx) presentations into document trees.
//
// Each slide contributes its title as a heading, the paragraphs of its
// text shapes and its tables. Table cells merged with gridSpan and rowSpan
// become column and row spans; the first and last row options mark the
// table head and foot.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/gridtable/model"
)

// Open reads a PPTX file
func Open(filename string) (*model.Node, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read reads a PPTX presentation from r. Slides that fail to parse are
// skipped; it is an error when none can be read.
func Read(r io.ReaderAt, size int64) (*model.Node, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	slidePaths, err := validate(zr)
	if err != nil {
		return nil, err
	}

	var blocks []*model.Node
	if data, err := fileContent(zr, "docProps/core.xml"); err == nil {
		var core coreXML
		if xml.Unmarshal(data, &core) == nil {
			if title := cleanText(core.Title); title != "" {
				blocks = append(blocks, model.NewHeading(1, title))
			}
		}
	}

	parsed := 0
	for _, name := range slidePaths {
		data, err := fileContent(zr, name)
		if err != nil {
			continue
		}
		var slide slideXML
		if err := xml.Unmarshal(data, &slide); err != nil {
			continue
		}
		parsed++
		blocks = append(blocks, slideBlocks(&slide)...)
	}
	if parsed == 0 {
		return nil, fmt.Errorf("no slides could be parsed")
	}

	if len(blocks) == 0 {
		blocks = []*model.Node{model.NewParagraph("")}
	}
	return model.NewDoc(blocks...), nil
}

// validate checks that the presentation part exists and returns the slide
// parts in slide number order.
func validate(zr *zip.Reader) ([]string, error) {
	var slides []string
	hasPresentation := false
	for _, f := range zr.File {
		switch {
		case f.Name == "ppt/presentation.xml":
			hasPresentation = true
		case strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml"):
			slides = append(slides, f.Name)
		}
	}
	if !hasPresentation {
		return nil, fmt.Errorf("missing required file: ppt/presentation.xml")
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides found in presentation")
	}

	sort.Slice(slides, func(i, j int) bool {
		return extractSlideNumber(slides[i]) < extractSlideNumber(slides[j])
	})
	return slides, nil
}

// extractSlideNumber extracts the slide number from a path like "ppt/slides/slide1.xml"
func extractSlideNumber(path string) int {
	name := strings.TrimPrefix(path, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	var num int
	fmt.Sscanf(name, "%d", &num)
	return num
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

// slideBlocks converts the shapes of a slide in drawing order. The title
// placeholder becomes a heading; header and footer placeholders are
// skipped.
func slideBlocks(slide *slideXML) []*model.Node {
	var out []*model.Node
	for _, shape := range slide.Tree.Shapes {
		if shape.Table != nil {
			if t := table(shape.Table); t != nil {
				out = append(out, t)
			}
			continue
		}

		sp := shape.Text
		if sp.TxBody == nil {
			continue
		}
		var phType string
		if sp.Placeholder != nil {
			phType = sp.Placeholder.Type
		}
		switch phType {
		case "ftr", "dt", "sldNum", "hdr":
			continue
		case "title", "ctrTitle":
			var parts []string
			for i := range sp.TxBody.P {
				if text := paragraphText(&sp.TxBody.P[i]); text != "" {
					parts = append(parts, text)
				}
			}
			if len(parts) > 0 {
				out = append(out, model.NewHeading(2, strings.Join(parts, " ")))
			}
			continue
		}
		for i := range sp.TxBody.P {
			if text := paragraphText(&sp.TxBody.P[i]); text != "" {
				out = append(out, model.NewParagraph(text))
			}
		}
	}
	return out
}

// paragraphText joins the runs of a paragraph, marking bold and italic runs
func paragraphText(p *pXML) string {
	var sb strings.Builder
	for _, r := range p.Runs {
		text := r.Text
		if strings.TrimSpace(text) == "" || !(r.Bold || r.Italic) {
			sb.WriteString(text)
			continue
		}
		lead := text[:len(text)-len(strings.TrimLeft(text, " \t"))]
		trail := text[len(strings.TrimRight(text, " \t")):]
		core := strings.TrimSpace(text)
		if r.Italic {
			core = "*" + core + "*"
		}
		if r.Bold {
			core = "**" + core + "**"
		}
		sb.WriteString(lead + core + trail)
	}
	return cleanText(sb.String())
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
