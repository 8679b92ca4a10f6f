package ranking

// WeightSet holds the base weights of the combined score.
type WeightSet struct {
	TFIDF     float64 `yaml:"tfidf"`
	Keyword   float64 `yaml:"keyword"`
	Proximity float64 `yaml:"proximity"`
	Phrase    float64 `yaml:"phrase"`
}

func (w WeightSet) isZero() bool {
	return w == WeightSet{}
}

// FuzzyConfig controls the fuzzy pass of the keyword scorer.
type FuzzyConfig struct {
	Enabled        *bool   `yaml:"enabled"`          // default: true
	MinWordLength  int     `yaml:"min_word_length"`  // default: 5
	MinExactScore  float64 `yaml:"min_exact_score"`  // default: 0.3
	MaxTerms       int     `yaml:"max_terms"`        // default: 3
	MatchThreshold float64 `yaml:"match_threshold"`  // default: 0.80
}

// EnabledOrDefault returns whether fuzzy matching is on; defaults to true when unset.
func (f *FuzzyConfig) EnabledOrDefault() bool {
	if f.Enabled != nil {
		return *f.Enabled
	}
	return true
}

// RankingConfig holds all configuration for the ranking system.
type RankingConfig struct {
	// Base weights, chosen by query shape
	DefaultWeights    WeightSet `yaml:"default_weights"`     // default: .55/.25/.12/.08
	ShortQueryWeights WeightSet `yaml:"short_query_weights"` // default: .20/.60/.10/.10
	QuestionWeights   WeightSet `yaml:"question_weights"`    // default: .52/.28/.12/.08
	ShortQueryWords   int       `yaml:"short_query_words"`   // default: 2

	// Pattern bonuses, scaled by the tfidf confidence multiplier
	DefinitionBonus      float64 `yaml:"definition_bonus"`        // default: 0.25
	MethodBonus          float64 `yaml:"method_bonus"`            // default: 0.20
	CausalityBonus       float64 `yaml:"causality_bonus"`         // default: 0.20
	MinTFIDFForFullBonus float64 `yaml:"min_tfidf_for_full_bonus"` // default: 0.10

	// Flat bonuses
	ContextBonus    float64 `yaml:"context_bonus"`     // default: 0.10
	AnswerTypeBonus float64 `yaml:"answer_type_bonus"` // default: 0.06
	ConceptWeight   float64 `yaml:"concept_weight"`    // default: 0.08

	MaxCombinedScore float64 `yaml:"max_combined_score"` // default: 1.5

	// Re-rank pass
	ReRankTopK         int     `yaml:"rerank_top_k"`          // default: 20
	ReRankCombined     float64 `yaml:"rerank_combined"`       // default: 0.75
	ReRankContext      float64 `yaml:"rerank_context"`        // default: 0.25
	ReRankPhrase       float64 `yaml:"rerank_phrase"`         // default: 0.25
	ReRankAnswerType   float64 `yaml:"rerank_answer_type"`    // default: 0.20
	ReRankNegation     float64 `yaml:"rerank_negation"`       // default: 0.15
	StretchPivot       float64 `yaml:"stretch_pivot"`         // default: 0.35
	StretchSlope       float64 `yaml:"stretch_slope"`         // default: 1.2
	StretchLift        float64 `yaml:"stretch_lift"`          // default: 0.30
	MarginalFloor      float64 `yaml:"marginal_floor"`        // default: 0.20
	MarginalMultiplier float64 `yaml:"marginal_multiplier"`   // default: 1.6

	// Optional keyword pre-filter, off by default
	MinKeywordScore  float64 `yaml:"min_keyword_score"`  // default: 0.08
	MinKeywordFilter bool    `yaml:"min_keyword_filter"` // default: false

	Fuzzy FuzzyConfig `yaml:"fuzzy"`
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	enabled := true
	return &RankingConfig{
		DefaultWeights:    WeightSet{TFIDF: 0.55, Keyword: 0.25, Proximity: 0.12, Phrase: 0.08},
		ShortQueryWeights: WeightSet{TFIDF: 0.20, Keyword: 0.60, Proximity: 0.10, Phrase: 0.10},
		QuestionWeights:   WeightSet{TFIDF: 0.52, Keyword: 0.28, Proximity: 0.12, Phrase: 0.08},
		ShortQueryWords:   2,

		DefinitionBonus:      0.25,
		MethodBonus:          0.20,
		CausalityBonus:       0.20,
		MinTFIDFForFullBonus: 0.10,

		ContextBonus:    0.10,
		AnswerTypeBonus: 0.06,
		ConceptWeight:   0.08,

		MaxCombinedScore: 1.5,

		ReRankTopK:         20,
		ReRankCombined:     0.75,
		ReRankContext:      0.25,
		ReRankPhrase:       0.25,
		ReRankAnswerType:   0.20,
		ReRankNegation:     0.15,
		StretchPivot:       0.35,
		StretchSlope:       1.2,
		StretchLift:        0.30,
		MarginalFloor:      0.20,
		MarginalMultiplier: 1.6,

		MinKeywordScore: 0.08,

		Fuzzy: FuzzyConfig{
			Enabled:        &enabled,
			MinWordLength:  5,
			MinExactScore:  0.3,
			MaxTerms:       3,
			MatchThreshold: 0.80,
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	d := DefaultRankingConfig()

	if c.DefaultWeights.isZero() {
		c.DefaultWeights = d.DefaultWeights
	}
	if c.ShortQueryWeights.isZero() {
		c.ShortQueryWeights = d.ShortQueryWeights
	}
	if c.QuestionWeights.isZero() {
		c.QuestionWeights = d.QuestionWeights
	}
	if c.ShortQueryWords == 0 {
		c.ShortQueryWords = d.ShortQueryWords
	}
	if c.DefinitionBonus == 0 {
		c.DefinitionBonus = d.DefinitionBonus
	}
	if c.MethodBonus == 0 {
		c.MethodBonus = d.MethodBonus
	}
	if c.CausalityBonus == 0 {
		c.CausalityBonus = d.CausalityBonus
	}
	if c.MinTFIDFForFullBonus == 0 {
		c.MinTFIDFForFullBonus = d.MinTFIDFForFullBonus
	}
	if c.ContextBonus == 0 {
		c.ContextBonus = d.ContextBonus
	}
	if c.AnswerTypeBonus == 0 {
		c.AnswerTypeBonus = d.AnswerTypeBonus
	}
	if c.ConceptWeight == 0 {
		c.ConceptWeight = d.ConceptWeight
	}
	if c.MaxCombinedScore == 0 {
		c.MaxCombinedScore = d.MaxCombinedScore
	}
	if c.ReRankTopK == 0 {
		c.ReRankTopK = d.ReRankTopK
	}
	if c.ReRankCombined == 0 {
		c.ReRankCombined = d.ReRankCombined
	}
	if c.ReRankContext == 0 {
		c.ReRankContext = d.ReRankContext
	}
	if c.ReRankPhrase == 0 {
		c.ReRankPhrase = d.ReRankPhrase
	}
	if c.ReRankAnswerType == 0 {
		c.ReRankAnswerType = d.ReRankAnswerType
	}
	if c.ReRankNegation == 0 {
		c.ReRankNegation = d.ReRankNegation
	}
	if c.StretchPivot == 0 {
		c.StretchPivot = d.StretchPivot
	}
	if c.StretchSlope == 0 {
		c.StretchSlope = d.StretchSlope
	}
	if c.StretchLift == 0 {
		c.StretchLift = d.StretchLift
	}
	if c.MarginalFloor == 0 {
		c.MarginalFloor = d.MarginalFloor
	}
	if c.MarginalMultiplier == 0 {
		c.MarginalMultiplier = d.MarginalMultiplier
	}
	if c.MinKeywordScore == 0 {
		c.MinKeywordScore = d.MinKeywordScore
	}
	if c.Fuzzy.MinWordLength == 0 {
		c.Fuzzy.MinWordLength = d.Fuzzy.MinWordLength
	}
	if c.Fuzzy.MinExactScore == 0 {
		c.Fuzzy.MinExactScore = d.Fuzzy.MinExactScore
	}
	if c.Fuzzy.MaxTerms == 0 {
		c.Fuzzy.MaxTerms = d.Fuzzy.MaxTerms
	}
	if c.Fuzzy.MatchThreshold == 0 {
		c.Fuzzy.MatchThreshold = d.Fuzzy.MatchThreshold
	}
}

// WeightsFor picks the base weights for a query: short queries favor keyword
// overlap, questions lean on tfidf.
func (c *RankingConfig) WeightsFor(pq *ProcessedQuery) WeightSet {
	if len(pq.Words) <= c.ShortQueryWords {
		return c.ShortQueryWeights
	}
	if pq.Analysis != nil && pq.Analysis.IsQuestion {
		return c.QuestionWeights
	}
	return c.DefaultWeights
}
