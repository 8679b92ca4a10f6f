// Package models defines core data structures for snippets, queries, and search results.
package models

import "time"

// Snippet is a stored fragment of a source document, usually a page or part
// of one.
type Snippet struct {
	ID            int64     `json:"id" db:"id"`
	FileID        string    `json:"file_id" db:"file_id"`
	PageIndex     int       `json:"page_index" db:"page_index"`
	TextSnippet   string    `json:"text_snippet" db:"text_snippet"`
	ProcessedText string    `json:"processed_text,omitempty" db:"processed_text"`
	CreatedAt     time.Time `json:"created_at,omitempty" db:"created_at"`
}

// File is an indexed source file.
type File struct {
	ID        string    `json:"file_id" db:"file_id"`
	Path      string    `json:"path" db:"path"`
	Title     string    `json:"title" db:"title"`
	Size      int64     `json:"size" db:"size"`
	ModTime   time.Time `json:"mod_time" db:"mod_time"`
	IndexedAt time.Time `json:"indexed_at" db:"indexed_at"`
}

// Page is the extracted text of one page of a source.
type Page struct {
	Index int    `json:"page_index"`
	Text  string `json:"text"`
}

// SnippetInput is the request body for ingesting raw pages without a file.
type SnippetInput struct {
	FileID string `json:"file_id,omitempty"`
	Title  string `json:"title,omitempty"`
	Pages  []Page `json:"pages"`
}
