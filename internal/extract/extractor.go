// Package extract provides per-page text extraction from document files.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/baheth/internal/models"
)

// ErrUnsupportedFormat is returned for file extensions with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported format")

// formFeed separates pages in plain text files.
const formFeed = "\f"

// Extractor extracts page text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether ext (with its leading dot) has an extractor.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".xlsx", ".pptx", ".odp", ".ods", ".txt", ".md":
		return true
	}
	return false
}

// ExtractPages reads the file at path and returns its pages. Page indexes
// start at 1. Pages without text are dropped.
func (e *Extractor) ExtractPages(path string) ([]models.Page, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return e.ExtractPagesBytes(content, ext)
}

// ExtractPagesBytes extracts pages from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractPagesBytes(content []byte, ext string) ([]models.Page, error) {
	var (
		texts []string
		err   error
	)
	switch strings.ToLower(ext) {
	case ".pdf":
		texts, err = extractPDF(content)
	case ".docx":
		texts, err = extractDOCX(content)
	case ".xlsx":
		texts, err = extractExcel(content)
	case ".pptx":
		texts, err = extractPPTX(content)
	case ".odp":
		texts, err = extractODP(content)
	case ".ods":
		texts, err = extractODS(content)
	case ".txt", ".md":
		texts, err = extractPlain(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return toPages(texts), nil
}

func toPages(texts []string) []models.Page {
	pages := make([]models.Page, 0, len(texts))
	for i, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, models.Page{Index: i + 1, Text: text})
	}
	return pages
}
