package ranking

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/arabic"
)

// KeywordScore measures query word and concept overlap with the document.
// Exact substring hits count 1, root hits 0.7. When the exact ratio stays
// below the fuzzy threshold, long query words get fractional credit from
// their fuzzy variants. The result is in [0,1].
func (r *Ranker) KeywordScore(ctx context.Context, pq *ProcessedQuery, text string) float64 {
	if text == "" || pq == nil || len(pq.Words) == 0 {
		return 0
	}
	doc := arabic.Fold(text)
	qa := pq.Analysis
	if qa == nil {
		qa = &QueryAnalysis{}
	}

	var exact, rootHits, conceptHits, fuzzyHits float64
	frequency := 0

	for _, word := range pq.Words {
		w := arabic.Fold(word)
		if strings.Contains(doc, w) {
			exact++
			if len(pq.Words) == 1 {
				frequency = strings.Count(doc, w)
			}
			if pq.HasKeyTerm(w) {
				conceptHits += 0.5
			}
			continue
		}
		if root := arabic.WordRoot(w); root != "" && strings.Contains(doc, root) {
			rootHits += 0.7
		}
	}

	initial := exact + rootHits*0.7
	exactRatio := initial / float64(len(pq.Words))

	fuzzy := r.config.Fuzzy
	if fuzzy.EnabledOrDefault() && exactRatio < fuzzy.MinExactScore {
		fuzzyHits = r.fuzzyCredit(ctx, pq.Words, doc, text)
	}

	found := 0
	for _, c := range qa.Concepts {
		n := arabic.Fold(c)
		if strings.Contains(doc, n) {
			found++
			conceptHits++
			continue
		}
		if root := arabic.WordRoot(n); root != "" && strings.Contains(doc, root) {
			conceptHits += 0.5
		}
	}

	total := exact + fuzzyHits + rootHits + conceptHits
	score := total / float64(len(pq.Words)+len(qa.Concepts))

	if len(pq.Words) == 1 && exact >= 1 {
		score = math.Max(score, 0.95)
		if frequency > 1 {
			score = math.Min(1.0, score+math.Min(0.05, float64(frequency)*0.005))
		}
	}
	if found >= 2 {
		score *= 1.3
	}
	if fuzzyHits > 0 {
		score *= 1.1
	}
	return math.Min(1.0, score)
}

// fuzzyCredit runs the bounded fuzzy pass: at most MaxTerms words of at least
// MinWordLength runes, skipping words that already hit exactly or by root.
func (r *Ranker) fuzzyCredit(ctx context.Context, words []string, doc, text string) float64 {
	fuzzy := r.config.Fuzzy

	var eligible []string
	for _, w := range words {
		if arabic.Len(w) >= fuzzy.MinWordLength {
			eligible = append(eligible, w)
			if len(eligible) == fuzzy.MaxTerms {
				break
			}
		}
	}
	if len(eligible) == 0 {
		return 0
	}

	if tr := TraceFrom(ctx); tr.markFuzzy() {
		r.logger.Debug("fuzzy keyword matching engaged",
			zap.String("search_id", tr.ID),
			zap.Strings("words", eligible))
	}

	credit := 0.0
	for _, word := range eligible {
		w := arabic.Fold(word)
		if strings.Contains(doc, w) {
			continue
		}
		if root := arabic.WordRoot(w); root != "" && strings.Contains(doc, root) {
			continue
		}

		variantFound := false
		for _, v := range arabic.FuzzyVariants(w) {
			if strings.Contains(doc, v) {
				credit += 0.85
				variantFound = true
				break
			}
		}
		if variantFound {
			continue
		}
		if matches := arabic.FuzzyMatch(w, text, fuzzy.MatchThreshold); len(matches) > 0 {
			credit += matches[0].Score * 0.9
		}
	}
	return credit
}
