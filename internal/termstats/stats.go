// Package termstats serves corpus statistics to the ranking pipeline: the
// cached total document count and batched inverse document frequencies.
package termstats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/storage"
)

// DefaultRefreshInterval is how long a cached document count stays valid.
const DefaultRefreshInterval = 5 * time.Minute

// idfBatchSize bounds the number of terms looked up per query.
const idfBatchSize = 500

// Source is the subset of storage.Storage the statistics are read from.
type Source interface {
	GetMetadata(ctx context.Context, key string) (string, error)
	SetMetadata(ctx context.Context, key, value string) error
	CountSnippets(ctx context.Context) (int64, error)
	DocumentFrequencies(ctx context.Context, terms []string) (map[string]int64, error)
}

// Stats caches the total document count and computes IDF values.
type Stats struct {
	src     Source
	refresh time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu        sync.Mutex
	total     int64
	updatedAt time.Time
}

// NewStats creates a Stats reading from src. A non-positive refresh uses
// DefaultRefreshInterval.
func NewStats(src Source, refresh time.Duration) *Stats {
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	return &Stats{
		src:     src,
		refresh: refresh,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
}

// WithLogger sets the logger.
func (s *Stats) WithLogger(logger *zap.Logger) *Stats {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock replaces the time source.
func (s *Stats) WithClock(now func() time.Time) *Stats {
	if now != nil {
		s.now = now
	}
	return s
}

// TotalDocuments returns the number of indexed documents. A positive cached
// value younger than the refresh interval is returned as is. Otherwise the
// stored total_documents value is read; when absent, snippets are counted and
// the count is stored. On failure the last cached value (or 1) is returned.
func (s *Stats) TotalDocuments(ctx context.Context) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.total > 0 && !s.updatedAt.IsZero() && now.Sub(s.updatedAt) < s.refresh {
		return s.total
	}

	total, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("failed to load total document count", zap.Error(err))
		if s.total > 0 {
			return s.total
		}
		return 1
	}
	s.total = total
	s.updatedAt = now
	return total
}

func (s *Stats) load(ctx context.Context) (int64, error) {
	value, err := s.src.GetMetadata(ctx, storage.MetadataTotalDocuments)
	if err == nil {
		total, perr := strconv.ParseInt(value, 10, 64)
		if perr != nil {
			return 0, fmt.Errorf("parse %s %q: %w", storage.MetadataTotalDocuments, value, perr)
		}
		return total, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}
	return s.count(ctx)
}

func (s *Stats) count(ctx context.Context) (int64, error) {
	total, err := s.src.CountSnippets(ctx)
	if err != nil {
		return 0, fmt.Errorf("count snippets: %w", err)
	}
	if err := s.src.SetMetadata(ctx, storage.MetadataTotalDocuments, strconv.FormatInt(total, 10)); err != nil {
		return 0, fmt.Errorf("store %s: %w", storage.MetadataTotalDocuments, err)
	}
	return total, nil
}

// Recount counts the snippets, stores the result and refreshes the cache.
// The indexer calls it after every change to the corpus.
func (s *Stats) Recount(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.count(ctx)
	if err != nil {
		return 0, err
	}
	s.total = total
	s.updatedAt = s.now()
	return total, nil
}

// Invalidate drops the cached document count.
func (s *Stats) Invalidate() {
	s.mu.Lock()
	s.total = 0
	s.updatedAt = time.Time{}
	s.mu.Unlock()
}

// BatchIDF returns ln(totalDocs/df) for every term, looked up in batches.
// Terms without statistics get ln(totalDocs). A non-positive totalDocs is
// resolved through TotalDocuments; a corpus of zero documents yields an
// empty map. A batch whose lookup fails contributes nothing and callers fall
// back per term.
func (s *Stats) BatchIDF(ctx context.Context, terms []string, totalDocs int64) map[string]float64 {
	if totalDocs <= 0 {
		totalDocs = s.TotalDocuments(ctx)
	}
	idf := make(map[string]float64, len(terms))
	if totalDocs <= 0 || len(terms) == 0 {
		return idf
	}
	total := float64(totalDocs)

	for start := 0; start < len(terms); start += idfBatchSize {
		batch := terms[start:min(start+idfBatchSize, len(terms))]
		df, err := s.src.DocumentFrequencies(ctx, batch)
		if err != nil {
			s.logger.Warn("failed to load document frequencies",
				zap.Int("terms", len(batch)), zap.Error(err))
			continue
		}
		for _, term := range batch {
			if n, ok := df[term]; ok && n > 0 {
				idf[term] = math.Log(total / float64(n))
			} else {
				idf[term] = math.Log(total)
			}
		}
	}
	return idf
}
