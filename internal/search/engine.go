// Package search provides the ranking service: candidate retrieval, scoring,
// re-ranking and deduplication of Arabic snippets.
package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/baheth/internal/config"
	"github.com/hyperjump/baheth/internal/keyword"
	"github.com/hyperjump/baheth/internal/models"
	"github.com/hyperjump/baheth/internal/ranking"
	"github.com/hyperjump/baheth/internal/storage"
	"github.com/hyperjump/baheth/internal/termstats"
	"github.com/hyperjump/baheth/internal/vector"
)

// ErrSearchFailed wraps unexpected failures of the ranking pipeline.
var ErrSearchFailed = errors.New("search failed")

// excerptRunes bounds the excerpt attached to each result.
const excerptRunes = 300

// Engine ranks snippets for a query.
type Engine struct {
	storage   storage.Storage
	source    keyword.CandidateSource
	stats     *termstats.Stats
	ranker    *ranking.Ranker
	terms     *ranking.TermRanker
	dedup     *Deduplicator
	suggester *keyword.Suggester
	config    *config.SearchConfig
	logger    *zap.Logger
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(
	storage storage.Storage,
	source keyword.CandidateSource,
	stats *termstats.Stats,
	ranker *ranking.Ranker,
	terms *ranking.TermRanker,
	cfg *config.SearchConfig,
) *Engine {
	return &Engine{
		storage: storage,
		source:  source,
		stats:   stats,
		ranker:  ranker,
		terms:   terms,
		dedup:   NewDeduplicator(config.DedupConfig{}),
		config:  cfg,
		logger:  zap.NewNop(),
	}
}

// WithLogger sets the logger.
func (e *Engine) WithLogger(logger *zap.Logger) *Engine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// WithDeduplicator replaces the default key-only deduplicator.
func (e *Engine) WithDeduplicator(d *Deduplicator) *Engine {
	if d != nil {
		e.dedup = d
	}
	return e
}

// WithSuggester enables spelling suggestions for queries without matches.
func (e *Engine) WithSuggester(s *keyword.Suggester) *Engine {
	e.suggester = s
	return e
}

// Rank runs the full pipeline for query. Queries without meaningful words
// and queries without candidates return empty responses flagged
// NoMeaningfulTerms or NoMatches; neither is an error.
func (e *Engine) Rank(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	if err := prepareQuery(query); err != nil {
		return nil, err
	}

	searchID := uuid.NewString()
	trace := ranking.NewTrace(searchID)
	ctx = ranking.WithTrace(ctx, trace)
	log := e.logger.With(zap.String("search_id", searchID))

	resp := &models.SearchResponse{
		Results:  []*models.SearchResult{},
		Query:    query.Query,
		SearchID: searchID,
	}
	done := func() (*models.SearchResponse, error) {
		resp.FuzzyUsed = trace.FuzzyUsed()
		resp.QueryTime = time.Since(start).Milliseconds()
		log.Debug("search finished",
			zap.Int("candidates", resp.Candidates),
			zap.Int("results", len(resp.Results)),
			zap.Int64("fuzzy_documents", trace.FuzzyDocuments()),
			zap.Int64("query_time_ms", resp.QueryTime))
		return resp, nil
	}

	pq := e.ranker.ProcessQuery(query.Query)
	if len(pq.Words) == 0 {
		resp.NoMeaningfulTerms = true
		return done()
	}

	ranked := e.terms.Rank(ranking.BuildTermSet(pq.Analysis.Concepts, pq.Words))
	if len(ranking.OriginalTerms(ranked)) == 0 {
		resp.NoMeaningfulTerms = true
		return done()
	}
	enhanced := enhancedTerms(ranked, pq)
	if query.Explain {
		resp.Explain = explain(pq, ranked, enhanced, e.ranker.Analyzer().ExpandTerms(pq.Analysis.Concepts))
	}

	snippets, err := e.candidates(ctx, log, query.Query, pq, ranked, enhanced)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	resp.Candidates = len(snippets)
	if len(snippets) == 0 {
		resp.NoMatches = true
		if e.suggester != nil {
			if corrected, ok := e.suggester.Correct(pq.Words); ok {
				resp.DidYouMean = corrected
			}
		}
		return done()
	}

	expanded := ranking.Terms(ranked)
	scored, err := e.score(ctx, pq, snippets, expanded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	rc := e.ranker.Config()
	if rc.MinKeywordFilter {
		scored = ranking.FilterByKeywordScore(scored, rc.MinKeywordScore)
	}
	ranking.SortByCombined(scored)
	reranked := e.ranker.ReRank(ranking.TopN(scored, rc.ReRankTopK), pq, expanded)
	deduped, removed := e.dedup.Deduplicate(reranked)
	resp.DuplicatesRemoved = removed

	limit := e.config.MaxFinalResults
	if query.Limit > 0 {
		limit = query.Limit
	}
	final := ranking.TopN(ranking.FilterByReRankScore(deduped, e.config.MinReRankScore), limit)

	for i := range final {
		d := &final[i]
		r := &models.SearchResult{
			Snippet:       d.Snippet,
			Rank:          i + 1,
			Score:         d.ReRankScore,
			CombinedScore: d.CombinedScore,
			HasQuotes:     d.HasQuotes,
			Excerpt:       Excerpt(d.TextSnippet, pq.KeyTerms, excerptRunes),
		}
		r.ProcessedText = ""
		if query.Explain {
			r.Signals = signals(d)
		}
		resp.Results = append(resp.Results, r)
	}
	return done()
}

// candidates fetches and hydrates candidate snippets in three tiers. The
// primary query failing is fatal; the fuzzy tiers only log.
func (e *Engine) candidates(ctx context.Context, log *zap.Logger, raw string, pq *ranking.ProcessedQuery, ranked []ranking.RankedTerm, enhanced []string) ([]*models.Snippet, error) {
	important := ranking.Terms(ranking.TopN(ranked, e.config.ImportantTerms))

	hits, err := e.source.Search(ctx, keyword.CandidateQuery{
		Required: important,
		Enhanced: enhanced,
		Limit:    e.config.MaxInitialCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("candidate search: %w", err)
	}

	if rawWordCount(raw) <= 2 && len(hits) < e.config.ShortQueryThreshold {
		variants, err := e.source.FuzzySearch(ctx, keyword.FieldProcessedText, enhanced, e.config.VariantLimit)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			log.Warn("variant candidate search failed", zap.Error(err))
		default:
			hits = mergeHits(hits, variants)
		}
	}

	if len(hits) == 0 {
		words := pq.Words[:min(3, len(pq.Words))]
		fallback, err := e.source.FuzzySearch(ctx, keyword.FieldTextSnippet, words, e.config.VariantLimit)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			log.Warn("fallback candidate search failed", zap.Error(err))
		default:
			hits = fallback
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	snippets, err := e.storage.GetSnippets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return snippets, nil
}

// mergeHits appends extra hits whose ids are not in base.
func mergeHits(base, extra []keyword.Hit) []keyword.Hit {
	seen := make(map[int64]struct{}, len(base))
	for _, h := range base {
		seen[h.ID] = struct{}{}
	}
	for _, h := range extra {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		base = append(base, h)
	}
	return base
}

// score builds the batch vocabulary and IDF table and scores every snippet
// in parallel. Each goroutine writes only its own slot.
func (e *Engine) score(ctx context.Context, pq *ranking.ProcessedQuery, snippets []*models.Snippet, expanded []string) ([]ranking.ScoredDocument, error) {
	texts := make([]string, len(snippets))
	for i, s := range snippets {
		texts[i] = s.TextSnippet
	}
	vocab := vector.BuildVocabulary(texts)
	total := e.stats.TotalDocuments(ctx)
	idf := e.stats.BatchIDF(ctx, vocab.Terms(), total)
	queryVec := vector.Vectorize(pq.Normalized, vocab, idf, total)

	scored := make([]ranking.ScoredDocument, len(snippets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range snippets {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("candidate %d: missing snippet", i)
			}
			docVec := vector.Vectorize(s.TextSnippet, vocab, idf, total)
			tfidf := vector.CosineSimilarity(queryVec, docVec)
			scored[i] = e.ranker.ScoreDocument(gctx, pq, *s, tfidf, expanded)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}
