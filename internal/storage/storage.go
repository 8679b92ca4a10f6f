// Package storage defines the persistence interface for snippets, files and
// term statistics.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/baheth/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// MetadataTotalDocuments is the search_metadata key holding the corpus size.
const MetadataTotalDocuments = "total_documents"

// Storage defines snippet, file, term statistic and metadata persistence.
type Storage interface {
	// Snippet operations
	InsertSnippet(ctx context.Context, snippet *models.Snippet) error
	BatchInsertSnippets(ctx context.Context, snippets []*models.Snippet) error
	GetSnippet(ctx context.Context, id int64) (*models.Snippet, error)
	// GetSnippets returns the snippets with the given ids in the order given.
	// Unknown ids are skipped.
	GetSnippets(ctx context.Context, ids []int64) ([]*models.Snippet, error)
	SnippetsByFile(ctx context.Context, fileID string) ([]*models.Snippet, error)
	// ListSnippets pages through all snippets by id.
	ListSnippets(ctx context.Context, offset, limit int) ([]*models.Snippet, error)
	// CountSnippets counts snippets that carry processed text.
	CountSnippets(ctx context.Context) (int64, error)

	// File operations
	UpsertFile(ctx context.Context, file *models.File) error
	GetFile(ctx context.Context, id string) (*models.File, error)
	ListFiles(ctx context.Context) ([]*models.File, error)
	CountFiles(ctx context.Context) (int64, error)
	// DeleteFile removes a file and its snippets and returns the deleted
	// snippet ids.
	DeleteFile(ctx context.Context, fileID string) ([]int64, error)

	// Term statistics
	IncrementTermFrequencies(ctx context.Context, terms []string, delta int64) error
	DocumentFrequencies(ctx context.Context, terms []string) (map[string]int64, error)
	CountTerms(ctx context.Context) (int64, error)

	// Search metadata
	GetMetadata(ctx context.Context, key string) (string, error)
	SetMetadata(ctx context.Context, key, value string) error

	Close() error
}
