package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns the plain text of every PDF page. Null pages keep their
// slot so page indexes match the document. A page whose content stream cannot
// be flattened is read row by row instead.
func extractPDF(content []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	pages := make([]string, r.NumPage())
	for i := range pages {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			if text, err = pageRows(page); err != nil {
				return nil, fmt.Errorf("extract page %d: %w", i+1, err)
			}
		}
		pages[i] = text
	}
	return pages, nil
}

func pageRows(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var line strings.Builder
		for _, t := range row.Content {
			line.WriteString(t.S)
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n"), nil
}
