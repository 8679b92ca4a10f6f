package search

import (
	"strings"

	"github.com/hyperjump/baheth/internal/arabic"
	"github.com/hyperjump/baheth/internal/models"
	"github.com/hyperjump/baheth/internal/ranking"
)

// prepareQuery validates the request and applies limits.
func prepareQuery(query *models.SearchQuery) error {
	return query.Validate()
}

// enhancedTerms are the original ranked terms plus every folded concept and
// query word longer than one rune, without repeats.
func enhancedTerms(ranked []ranking.RankedTerm, pq *ranking.ProcessedQuery) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		if arabic.Len(t) <= 1 {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range ranking.OriginalTerms(ranked) {
		add(t)
	}
	if pq.Analysis != nil {
		for _, c := range pq.Analysis.Concepts {
			add(arabic.Fold(c))
		}
	}
	for _, w := range pq.Words {
		add(arabic.Fold(w))
	}
	return out
}

// rawWordCount counts whitespace-separated words of the raw query, stop
// words included.
func rawWordCount(query string) int {
	return len(strings.Fields(query))
}

func explain(pq *ranking.ProcessedQuery, ranked []ranking.RankedTerm, searchTerms, expanded []string) *models.Explanation {
	qa := pq.Analysis
	if qa == nil {
		qa = &ranking.QueryAnalysis{}
	}
	return &models.Explanation{
		QuestionType:    qa.QuestionType.String(),
		Words:           pq.Words,
		KeyTerms:        pq.KeyTerms,
		Concepts:        qa.Concepts,
		RankedTerms:     ranking.Terms(ranked),
		SearchTerms:     searchTerms,
		ExpandedTerms:   expanded,
		NeedsDefinition: qa.NeedsDefinition,
		NeedsMethod:     qa.NeedsMethod,
		NeedsCausality:  qa.NeedsCausality,
		WantsQuotes:     pq.Intent.WantsQuotes,
		WantsSummary:    pq.Intent.WantsSummary,
		WantsComparison: pq.Intent.WantsComparison,
		WantsList:       pq.Intent.WantsList,
		DefinitionTerm:  qa.DefinitionTerm,
		MainSubject:     qa.MainSubject,
		MainVerb:        qa.MainVerb,
	}
}

func signals(d *ranking.RankedDocument) *models.Signals {
	return &models.Signals{
		TFIDF:           d.TFIDFSimilarity,
		Keyword:         d.KeywordScore,
		Proximity:       d.ProximityScore,
		Phrase:          d.PhraseScore,
		Context:         d.ContextScore,
		AnswerType:      d.AnswerTypeScore,
		Causality:       d.CausalityScore,
		Method:          d.MethodScore,
		Definition:      d.DefinitionScore,
		Concept:         d.ConceptBonus,
		Quote:           d.QuoteScore,
		Impression:      d.ImpressionScore,
		Negation:        d.NegationPenalty,
		TFIDFMultiplier: d.TFIDFMultiplier,
	}
}
