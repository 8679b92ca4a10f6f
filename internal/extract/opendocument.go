package extract

import (
	"fmt"
	"regexp"
)

// odfContentPath is the main content part of OpenDocument packages.
const odfContentPath = "content.xml"

var (
	odfText       = regexp.MustCompile(`<text:(?:p|h|span)[^>]*>([^<]*)</text:(?:p|h|span)>`)
	odpPageSplit  = regexp.MustCompile(`<draw:page[\s>]`)
	odsSheetSplit = regexp.MustCompile(`<table:table[\s>]`)
)

// extractODP returns one page per <draw:page> of an OpenDocument
// presentation.
func extractODP(content []byte) ([]string, error) {
	return extractODF(content, "ODP", odpPageSplit)
}

// extractODS returns one page per <table:table> of an OpenDocument
// spreadsheet.
func extractODS(content []byte) ([]string, error) {
	return extractODF(content, "ODS", odsSheetSplit)
}

func extractODF(content []byte, format string, split *regexp.Regexp) ([]string, error) {
	zr, err := openZip(content, format)
	if err != nil {
		return nil, err
	}
	f := findZipFile(zr, odfContentPath)
	if f == nil {
		return nil, fmt.Errorf("extract %s: %s not found", format, odfContentPath)
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", format, err)
	}

	// The text before the first page or sheet holds styles and settings.
	parts := split.Split(string(data), -1)
	if len(parts) > 1 {
		parts = parts[1:]
	}
	pages := make([]string, len(parts))
	for i, part := range parts {
		pages[i] = joinMatches(odfText, part)
	}
	return pages, nil
}
