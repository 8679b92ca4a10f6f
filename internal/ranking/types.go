// Package ranking provides Arabic-aware query analysis and multi-signal
// ranking of candidate snippets.
package ranking

import (
	"github.com/hyperjump/baheth/internal/models"
)

// QuestionType is the interrogative class of a query.
type QuestionType int

const (
	// QuestionNone means no question trigger was found.
	QuestionNone QuestionType = iota
	// QuestionWho asks for a person.
	QuestionWho
	// QuestionWhat asks for a thing or a definition.
	QuestionWhat
	// QuestionWhen asks for a time.
	QuestionWhen
	// QuestionWhere asks for a place.
	QuestionWhere
	// QuestionHow asks for a method.
	QuestionHow
	// QuestionWhy asks for a cause.
	QuestionWhy
	// QuestionWhich asks for a choice.
	QuestionWhich
)

// String returns a string representation of the question type.
func (q QuestionType) String() string {
	switch q {
	case QuestionNone:
		return "none"
	case QuestionWho:
		return "who"
	case QuestionWhat:
		return "what"
	case QuestionWhen:
		return "when"
	case QuestionWhere:
		return "where"
	case QuestionHow:
		return "how"
	case QuestionWhy:
		return "why"
	case QuestionWhich:
		return "which"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (q QuestionType) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// QueryAnalysis is the semantic reading of a query. It is built once per
// request and never mutated afterwards.
type QueryAnalysis struct {
	QuestionType    QuestionType `json:"question_type"`
	Concepts        []string     `json:"concepts"`
	IsQuestion      bool         `json:"is_question"`
	NeedsCausality  bool         `json:"needs_causality"`
	NeedsMethod     bool         `json:"needs_method"`
	NeedsDefinition bool         `json:"needs_definition"`
	DefinitionTerm  string       `json:"definition_term,omitempty"`
	MainSubject     string       `json:"main_subject,omitempty"`
	MainVerb        string       `json:"main_verb,omitempty"`
}

// QueryIntent captures presentation hints found in the query. The hints are
// reported with the query analysis and never change scores.
type QueryIntent struct {
	WantsQuotes     bool `json:"wants_quotes"`
	WantsSummary    bool `json:"wants_summary"`
	WantsComparison bool `json:"wants_comparison"`
	WantsList       bool `json:"wants_list"`
}

// ProcessedQuery is the deterministic, stop-word filtered form of a raw query.
type ProcessedQuery struct {
	Original string `json:"original"`
	// Words excludes stop words; the definite article is stripped when the
	// remaining stem has at least three runes.
	Words []string `json:"words"`
	// Normalized is the punctuation-free, whitespace-collapsed query.
	Normalized string         `json:"normalized"`
	KeyTerms   []string       `json:"key_terms"`
	Analysis   *QueryAnalysis `json:"analysis"`
	Intent     QueryIntent    `json:"intent"`
}

// HasKeyTerm reports whether term is one of the query's key terms.
func (pq *ProcessedQuery) HasKeyTerm(term string) bool {
	for _, k := range pq.KeyTerms {
		if k == term {
			return true
		}
	}
	return false
}

// ScoredDocument is a candidate snippet with every per-document signal. All
// fields exist from the start and default to zero.
type ScoredDocument struct {
	models.Snippet

	TFIDFSimilarity float64 `json:"tfidf_similarity"`
	KeywordScore    float64 `json:"keyword_score"`
	ProximityScore  float64 `json:"proximity_score"`
	CausalityScore  float64 `json:"causality_score"`
	MethodScore     float64 `json:"method_score"`
	DefinitionScore float64 `json:"definition_score"`
	PhraseScore     float64 `json:"phrase_score"`
	ContextScore    float64 `json:"context_score"`
	AnswerTypeScore float64 `json:"answer_type_score"`
	ConceptBonus    float64 `json:"concept_bonus"`
	QuoteScore      float64 `json:"quote_score"`
	ImpressionScore float64 `json:"impression_score"`
	HasQuotes       bool    `json:"has_quotes"`
	TFIDFMultiplier float64 `json:"tfidf_multiplier"`
	// CombinedScore is in [0, 1.5].
	CombinedScore float64 `json:"combined_score"`
}

// RankedDocument is a scored document after the re-rank pass.
type RankedDocument struct {
	ScoredDocument

	// ReRankScore is in [0, 1] and is the final sort key.
	ReRankScore     float64 `json:"rerank_score"`
	NegationPenalty float64 `json:"negation_penalty"`
}

// QuoteAnalysis is the result of DetectQuotesAndImpressions.
type QuoteAnalysis struct {
	HasQuotes        bool
	QuoteScore       float64
	ImpressionScore  float64
	StrongQuoteCount int
}
