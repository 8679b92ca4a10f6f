package keyword

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/arabic"
	"github.com/hyperjump/baheth/internal/models"
)

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index  bleve.Index
	logger *zap.Logger
}

// snippetDoc is the indexed form of a snippet.
type snippetDoc struct {
	ProcessedText string `json:"processed_text"`
	TextSnippet   string `json:"text_snippet"`
	FileID        string `json:"file_id"`
}

// NewBleveIndex creates or opens a Bleve index at path.
// If the path already exists the index is reused, so incremental indexing
// keeps earlier snippets. Remove the directory after a mapping change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index, logger: zap.NewNop()}, nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index, logger: zap.NewNop()}, nil
}

// NewMemoryIndex creates an index that lives only in memory.
func NewMemoryIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index, logger: zap.NewNop()}, nil
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// The standard analyzer tokenizes on unicode word boundaries and only
	// lowercases, so folded Arabic tokens are indexed as written.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(FieldProcessedText, textFieldMapping)
	docMapping.AddFieldMappingsAt(FieldTextSnippet, textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("file_id", keywordFieldMapping)
	im.AddDocumentMapping("snippet", docMapping)
	im.DefaultType = "snippet"
	im.DefaultMapping = docMapping
	return im
}

// WithLogger sets the logger.
func (b *BleveIndex) WithLogger(logger *zap.Logger) *BleveIndex {
	if logger != nil {
		b.logger = logger
	}
	return b
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func toDoc(s *models.Snippet) snippetDoc {
	processed := s.ProcessedText
	if processed == "" {
		processed = arabic.Fold(s.TextSnippet)
	}
	return snippetDoc{
		ProcessedText: processed,
		TextSnippet:   s.TextSnippet,
		FileID:        s.FileID,
	}
}

// Index indexes a snippet under its decimal id.
func (b *BleveIndex) Index(ctx context.Context, snippet *models.Snippet) error {
	if snippet.ID <= 0 {
		return fmt.Errorf("index snippet: invalid id %d", snippet.ID)
	}
	return b.index.Index(docID(snippet.ID), toDoc(snippet))
}

// IndexBatch indexes several snippets in one batch.
func (b *BleveIndex) IndexBatch(ctx context.Context, snippets []*models.Snippet) error {
	if len(snippets) == 0 {
		return nil
	}
	batch := b.index.NewBatch()
	for _, s := range snippets {
		if s.ID <= 0 {
			return fmt.Errorf("index snippet: invalid id %d", s.ID)
		}
		if err := batch.Index(docID(s.ID), toDoc(s)); err != nil {
			return fmt.Errorf("batch snippet %d: %w", s.ID, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.index.Batch(batch)
}

// Search runs the primary candidate query: snippets containing every
// Required term, or any Enhanced term. Hits come back by relevance.
func (b *BleveIndex) Search(ctx context.Context, q CandidateQuery) ([]Hit, error) {
	query := buildCandidateQuery(q)
	if query == nil || q.Limit <= 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(query)
	req.Size = q.Limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	return toHits(results.Hits), nil
}

// buildCandidateQuery returns (AND required) OR (OR enhanced), or nil when
// there is nothing to match.
func buildCandidateQuery(q CandidateQuery) blevequery.Query {
	var branches []blevequery.Query

	required := matchQueries(q.Required)
	switch len(required) {
	case 0:
	case 1:
		branches = append(branches, required[0])
	default:
		branches = append(branches, bleve.NewConjunctionQuery(required...))
	}
	if enhanced := matchQueries(q.Enhanced); len(enhanced) > 0 {
		branches = append(branches, bleve.NewDisjunctionQuery(enhanced...))
	}

	switch len(branches) {
	case 0:
		return nil
	case 1:
		return branches[0]
	default:
		return bleve.NewDisjunctionQuery(branches...)
	}
}

func matchQueries(terms []string) []blevequery.Query {
	out := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		mq := bleve.NewMatchQuery(term)
		mq.SetField(FieldProcessedText)
		out = append(out, mq)
	}
	return out
}

// FuzzySearch matches any of terms within a small edit distance in field:
// one edit, or two for terms of six or more runes. Up to MaxFuzzyHits hits
// are collected, ordered by descending id and cut to limit.
func (b *BleveIndex) FuzzySearch(ctx context.Context, field string, terms []string, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzzinessFor(term))
		fq.SetField(field)
		queries = append(queries, fq)
	}
	if len(queries) == 0 {
		return nil, nil
	}

	var q blevequery.Query = queries[0]
	if len(queries) > 1 {
		q = bleve.NewDisjunctionQuery(queries...)
	}
	req := bleve.NewSearchRequest(q)
	req.Size = MaxFuzzyHits
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve fuzzy search failed: %w", err)
	}

	hits := toHits(results.Hits)
	sort.Slice(hits, func(i, j int) bool { return hits[i].ID > hits[j].ID })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	b.logger.Debug("fuzzy candidate search",
		zap.String("field", field),
		zap.Strings("terms", terms),
		zap.Int("hits", len(hits)))
	return hits, nil
}

func fuzzinessFor(term string) int {
	if arabic.Len(term) >= 6 {
		return 2
	}
	return 1
}

func toHits(matches search.DocumentMatchCollection) []Hit {
	out := make([]Hit, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, Hit{ID: id, Score: m.Score})
	}
	return out
}

// Delete removes snippets from the index.
func (b *BleveIndex) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) == 1 {
		return b.index.Delete(docID(ids[0]))
	}
	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(docID(id))
	}
	return b.index.Batch(batch)
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of snippets in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Terms lists the processed-text dictionary with document frequencies.
func (b *BleveIndex) Terms() ([]TermCount, error) {
	dict, err := b.index.FieldDict(FieldProcessedText)
	if err != nil {
		return nil, fmt.Errorf("failed to read term dictionary: %w", err)
	}
	defer dict.Close()

	var terms []TermCount
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read term dictionary: %w", err)
		}
		if entry == nil {
			break
		}
		terms = append(terms, TermCount{Term: entry.Term, Count: entry.Count})
	}
	return terms, nil
}
