package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
)

// Container-related errors.
var (
	ErrNoContainer      = errors.New("epub: missing META-INF/container.xml")
	ErrInvalidContainer = errors.New("epub: invalid container.xml")
	ErrNoRootfile       = errors.New("epub: no rootfile found in container.xml")
)

// containerXML represents the structure of META-INF/container.xml.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// packagePath reads META-INF/container.xml and returns the path of the
// package document. A rootfile of the OPF media type wins; otherwise the
// first rootfile is used.
func packagePath(zr *zip.Reader) (string, error) {
	data, err := fileContent(zr, "META-INF/container.xml")
	if err != nil {
		return "", ErrNoContainer
	}

	var container containerXML
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", ErrInvalidContainer
	}

	for _, rf := range container.Rootfiles {
		if rf.FullPath != "" && (rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "") {
			return rf.FullPath, nil
		}
	}
	if len(container.Rootfiles) > 0 && container.Rootfiles[0].FullPath != "" {
		return container.Rootfiles[0].FullPath, nil
	}
	return "", ErrNoRootfile
}
