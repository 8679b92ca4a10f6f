// Package keyword provides the full-text candidate source behind the ranking
// pipeline.
package keyword

import (
	"context"

	"github.com/hyperjump/baheth/internal/models"
)

// Field names stored in the index.
const (
	FieldProcessedText = "processed_text"
	FieldTextSnippet   = "text_snippet"
)

// MaxFuzzyHits bounds how many fuzzy hits are collected before they are
// ordered by id and cut to the caller's limit.
const MaxFuzzyHits = 1000

// CandidateQuery selects snippets matching all Required terms or any of the
// Enhanced terms.
type CandidateQuery struct {
	Required []string
	Enhanced []string
	Limit    int
}

// Hit is a single candidate returned by the index.
type Hit struct {
	ID    int64
	Score float64
}

// CandidateSource retrieves candidate snippet ids for a query.
type CandidateSource interface {
	Search(ctx context.Context, q CandidateQuery) ([]Hit, error)
	// FuzzySearch matches any of terms approximately in field. Hits are
	// ordered by descending id.
	FuzzySearch(ctx context.Context, field string, terms []string, limit int) ([]Hit, error)
}

// Index is a CandidateSource that can be written to.
type Index interface {
	CandidateSource
	Index(ctx context.Context, snippet *models.Snippet) error
	IndexBatch(ctx context.Context, snippets []*models.Snippet) error
	Delete(ctx context.Context, ids ...int64) error
	DocCount() (uint64, error)
	Close() error
}
