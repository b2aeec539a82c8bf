package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"net/url"
	"path"
	"slices"
	"strings"
)

// OPF-related errors.
var (
	ErrNoOPF      = errors.New("epub: missing package document (OPF)")
	ErrInvalidOPF = errors.New("epub: invalid package document")
	ErrEmptySpine = errors.New("epub: no content in spine")
)

// opfPackage represents the OPF package document.
type opfPackage struct {
	XMLName  xml.Name  `xml:"package"`
	Items    []opfItem `xml:"manifest>item"`
	ItemRefs []struct {
		IDRef  string `xml:"idref,attr"`
		Linear string `xml:"linear,attr"`
	} `xml:"spine>itemref"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// book lists the archive paths of the content documents in reading order
type book struct {
	chapters []string
}

// parseOPF reads the package document. Spine items marked non-linear, the
// navigation document and items that are not (X)HTML are left out.
func parseOPF(zr *zip.Reader, opfPath string) (*book, error) {
	data, err := fileContent(zr, opfPath)
	if err != nil {
		return nil, ErrNoOPF
	}
	var opf opfPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, ErrInvalidOPF
	}

	// Hrefs are relative to the package document
	baseDir := path.Dir(opfPath)
	if baseDir == "." {
		baseDir = ""
	}

	b := &book{}
	for _, ref := range opf.ItemRefs {
		if ref.Linear == "no" {
			continue
		}
		i := slices.IndexFunc(opf.Items, func(item opfItem) bool { return item.ID == ref.IDRef })
		if i < 0 {
			continue
		}
		item := opf.Items[i]
		if slices.Contains(strings.Fields(item.Properties), "nav") {
			continue
		}
		if item.MediaType != "" && item.MediaType != "application/xhtml+xml" && item.MediaType != "text/html" {
			continue
		}
		href := item.Href
		if decoded, err := url.PathUnescape(href); err == nil {
			href = decoded
		}
		b.chapters = append(b.chapters, path.Join(baseDir, href))
	}

	if len(b.chapters) == 0 {
		return nil, ErrEmptySpine
	}
	return b, nil
}
