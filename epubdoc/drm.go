package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"strings"
)

// ErrDRMProtected is returned for books whose content is encrypted.
var ErrDRMProtected = errors.New("epub: DRM-protected content cannot be processed")

// encryptionXML represents the structure of META-INF/encryption.xml.
type encryptionXML struct {
	XMLName       xml.Name `xml:"encryption"`
	EncryptedData []struct {
		Algorithm string `xml:"EncryptionMethod>Algorithm,attr"`
		URI       string `xml:"CipherData>CipherReference>URI,attr"`
	} `xml:"EncryptedData"`
}

// checkForDRM rejects books carrying Adobe rights or encrypted content
// documents. Font obfuscation is not DRM and passes.
func checkForDRM(zr *zip.Reader) error {
	if _, err := fileContent(zr, "META-INF/rights.xml"); err == nil {
		return ErrDRMProtected
	}
	data, err := fileContent(zr, "META-INF/encryption.xml")
	if err != nil {
		return nil
	}

	var enc encryptionXML
	if err := xml.Unmarshal(data, &enc); err != nil {
		// unreadable encryption data counts as DRM
		return ErrDRMProtected
	}
	for _, ed := range enc.EncryptedData {
		if isFontObfuscation(ed.Algorithm) {
			continue
		}
		if isContentFile(ed.URI) {
			return ErrDRMProtected
		}
	}
	return nil
}

// isFontObfuscation reports whether the algorithm is the Adobe or IDPF font
// obfuscation method
func isFontObfuscation(algorithm string) bool {
	return (strings.Contains(algorithm, "adobe.com") || strings.Contains(algorithm, "idpf.org")) &&
		strings.Contains(algorithm, "obfuscation")
}

// isContentFile reports whether the URI names a document or style sheet
func isContentFile(uri string) bool {
	uri = strings.ToLower(uri)
	for _, ext := range []string{".xhtml", ".html", ".htm", ".xml", ".css"} {
		if strings.HasSuffix(uri, ext) {
			return true
		}
	}
	return false
}
