package models

// Signals is the per-document score breakdown.
type Signals struct {
	TFIDF           float64 `json:"tfidf"`
	Keyword         float64 `json:"keyword"`
	Proximity       float64 `json:"proximity"`
	Phrase          float64 `json:"phrase"`
	Context         float64 `json:"context"`
	AnswerType      float64 `json:"answer_type"`
	Causality       float64 `json:"causality"`
	Method          float64 `json:"method"`
	Definition      float64 `json:"definition"`
	Concept         float64 `json:"concept"`
	Quote           float64 `json:"quote"`
	Impression      float64 `json:"impression"`
	Negation        float64 `json:"negation"`
	TFIDFMultiplier float64 `json:"tfidf_multiplier"`
}

// SearchResult is a single ranked snippet.
type SearchResult struct {
	Snippet
	Rank int `json:"rank"`
	// Score is the final re-rank score in [0,1].
	Score         float64  `json:"score"`
	CombinedScore float64  `json:"combined_score"`
	HasQuotes     bool     `json:"has_quotes,omitempty"`
	Excerpt       string   `json:"excerpt,omitempty"`
	Signals       *Signals `json:"signals,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results []*SearchResult `json:"results"`
	Query   string          `json:"query"`
	// NoMeaningfulTerms is set when the query reduced to nothing searchable.
	NoMeaningfulTerms bool `json:"no_meaningful_terms,omitempty"`
	// NoMatches is set when every candidate tier came back empty.
	NoMatches bool `json:"no_matches,omitempty"`
	// DidYouMean is a spelling correction offered with NoMatches.
	DidYouMean        string `json:"did_you_mean,omitempty"`
	Candidates        int    `json:"candidates"`
	DuplicatesRemoved int    `json:"duplicates_removed"`
	FuzzyUsed         bool   `json:"fuzzy_used,omitempty"`
	QueryTime         int64  `json:"query_time_ms"`
	SearchID          string `json:"search_id"`
	// Explain carries the query analysis and ranked terms when requested.
	Explain *Explanation `json:"explain,omitempty"`
}

// Explanation describes how a query was interpreted.
type Explanation struct {
	QuestionType    string   `json:"question_type"`
	Words           []string `json:"words"`
	KeyTerms        []string `json:"key_terms"`
	Concepts        []string `json:"concepts"`
	RankedTerms     []string `json:"ranked_terms"`
	SearchTerms     []string `json:"search_terms"`
	// ExpandedTerms widens the concepts with roots, article toggles and
	// spelling variants.
	ExpandedTerms   []string `json:"expanded_terms,omitempty"`
	NeedsDefinition bool     `json:"needs_definition"`
	NeedsMethod     bool     `json:"needs_method"`
	NeedsCausality  bool     `json:"needs_causality"`
	WantsQuotes     bool     `json:"wants_quotes,omitempty"`
	WantsSummary    bool     `json:"wants_summary,omitempty"`
	WantsComparison bool     `json:"wants_comparison,omitempty"`
	WantsList       bool     `json:"wants_list,omitempty"`
	DefinitionTerm  string   `json:"definition_term,omitempty"`
	MainSubject     string   `json:"main_subject,omitempty"`
	MainVerb        string   `json:"main_verb,omitempty"`
}

// StatusResponse reports index statistics.
type StatusResponse struct {
	Snippets       int64  `json:"snippets"`
	Files          int64  `json:"files"`
	Terms          int64  `json:"terms"`
	TotalDocuments int64  `json:"total_documents"`
	IndexedDocs    uint64 `json:"indexed_docs"`
	DiskUsageBytes int64  `json:"disk_usage_bytes"`
}
