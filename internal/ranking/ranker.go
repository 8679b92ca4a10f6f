package ranking

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/models"
)

// Ranker scores candidate snippets against a processed query and re-ranks
// the best of them.
type Ranker struct {
	config   *RankingConfig
	analyzer *QueryAnalyzer
	logger   *zap.Logger
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:   config,
		analyzer: NewQueryAnalyzer(),
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger.
func (r *Ranker) WithLogger(logger *zap.Logger) *Ranker {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Config returns the ranking configuration.
func (r *Ranker) Config() *RankingConfig {
	return r.config
}

// Analyzer returns the query analyzer.
func (r *Ranker) Analyzer() *QueryAnalyzer {
	return r.analyzer
}

// ProcessQuery parses and analyzes a raw query.
func (r *Ranker) ProcessQuery(query string) *ProcessedQuery {
	return r.analyzer.Process(query)
}

// ScoreDocument computes every per-document signal and the combined score.
// tfidf is the cosine similarity between the query and document vectors;
// expandedTerms are all ranked query terms. It only reads its inputs and may
// run concurrently for different documents.
func (r *Ranker) ScoreDocument(ctx context.Context, pq *ProcessedQuery, doc models.Snippet, tfidf float64, expandedTerms []string) ScoredDocument {
	text := doc.TextSnippet
	qa := pq.Analysis

	d := ScoredDocument{Snippet: doc, TFIDFSimilarity: tfidf}
	d.ProximityScore = PhraseProximity(text, pq.KeyTerms)

	quotes := DetectQuotesAndImpressions(text)
	d.QuoteScore = quotes.QuoteScore
	d.ImpressionScore = quotes.ImpressionScore
	d.HasQuotes = quotes.HasQuotes

	d.KeywordScore = r.KeywordScore(ctx, pq, text)

	d.CausalityScore = DetectCausality(text, qa)
	d.MethodScore = DetectMethod(text, qa)
	d.DefinitionScore = DetectDefinition(text, qa)
	d.ConceptBonus = ConceptBonus(text, qa, d.DefinitionScore, d.CausalityScore, d.MethodScore)

	d.PhraseScore = PhraseMatches(text, pq.Normalized)
	d.ContextScore = ContextualRelevance(text, expandedTerms)
	d.AnswerTypeScore = ValidateAnswerType(text, qa)

	d.CombinedScore = r.Combine(&d, pq)
	return d
}

// ReRank recomputes the contextual, phrase, answer-type and negation signals
// for the top candidates and derives the final score. Results are sorted by
// descending ReRankScore.
func (r *Ranker) ReRank(top []ScoredDocument, pq *ProcessedQuery, expandedTerms []string) []RankedDocument {
	c := r.config
	out := make([]RankedDocument, len(top))
	for i, d := range top {
		text := d.TextSnippet
		d.ContextScore = ContextualRelevance(text, expandedTerms)
		d.PhraseScore = PhraseMatches(text, pq.Normalized)
		d.AnswerTypeScore = ValidateAnswerType(text, pq.Analysis)
		negation := DetectNegationContext(text, pq.KeyTerms)

		score := d.CombinedScore*c.ReRankCombined +
			d.ContextScore*c.ReRankContext +
			d.PhraseScore*c.ReRankPhrase +
			d.AnswerTypeScore*c.ReRankAnswerType -
			negation*c.ReRankNegation

		out[i] = RankedDocument{
			ScoredDocument:  d,
			ReRankScore:     r.stretch(score),
			NegationPenalty: negation,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReRankScore > out[j].ReRankScore
	})
	return out
}

// SortByCombined stably sorts documents by descending combined score.
func SortByCombined(docs []ScoredDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CombinedScore > docs[j].CombinedScore
	})
}

// FilterByKeywordScore returns documents whose keyword score is at least min.
func FilterByKeywordScore(docs []ScoredDocument, min float64) []ScoredDocument {
	out := make([]ScoredDocument, 0, len(docs))
	for _, d := range docs {
		if d.KeywordScore >= min {
			out = append(out, d)
		}
	}
	return out
}

// FilterByReRankScore returns documents whose re-rank score is at least min.
func FilterByReRankScore(docs []RankedDocument, min float64) []RankedDocument {
	out := make([]RankedDocument, 0, len(docs))
	for _, d := range docs {
		if d.ReRankScore >= min {
			out = append(out, d)
		}
	}
	return out
}

// TopN returns the first n elements.
func TopN[T any](docs []T, n int) []T {
	if n <= 0 || n >= len(docs) {
		return docs
	}
	return docs[:n]
}
