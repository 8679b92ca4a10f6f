package extract

import (
	"archive/zip"
	"fmt"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// wtTag matches <w:t>text</w:t> with any attributes.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// The main part's Override element may list PartName and ContentType in
// either order.
var (
	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// findDocxMainDocumentPath returns the main document path declared in
// [Content_Types].xml without its leading slash, or "".
func findDocxMainDocumentPath(zr *zip.Reader) string {
	f := findZipFile(zr, contentTypesPath)
	if f == nil {
		return ""
	}
	data, err := readZipFile(f)
	if err != nil {
		return ""
	}
	content := string(data)
	if m := partNameRe.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	if m := partNameRe2.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	return ""
}

// extractDOCX returns the document as a single page built from its <w:t>
// runs. Matching runs directly keeps paragraphs with attributes
// (<w:p w:rsidR="...">) searchable.
func extractDOCX(content []byte) ([]string, error) {
	zr, err := openZip(content, "DOCX")
	if err != nil {
		return nil, err
	}

	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	f := findZipFile(zr, docPath)
	if f == nil {
		return nil, fmt.Errorf("extract DOCX: %s not found", docPath)
	}
	docXML, err := readZipFile(f)
	if err != nil {
		return nil, fmt.Errorf("extract DOCX: %w", err)
	}
	return []string{joinMatches(wtTag, string(docXML))}, nil
}
