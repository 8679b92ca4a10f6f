package ranking

import (
	"strings"

	"github.com/hyperjump/baheth/internal/arabic"
)

const (
	maxSubjectWords        = 3
	maxDefinitionTermWords = 2
)

// QueryAnalyzer turns raw queries into ProcessedQuery values. It holds no
// state and is safe for concurrent use.
type QueryAnalyzer struct{}

// NewQueryAnalyzer creates a new QueryAnalyzer.
func NewQueryAnalyzer() *QueryAnalyzer {
	return &QueryAnalyzer{}
}

// Analyze classifies the query, derives the need flags and extracts the
// subject, verb, definition term and concepts.
func (qa *QueryAnalyzer) Analyze(query string) *QueryAnalysis {
	normalized := arabic.Fold(strings.TrimSpace(punctuation.Replace(query)))

	result := &QueryAnalysis{
		QuestionType: classifyQuestion(normalized),
		Concepts:     extractConcepts(normalized),
	}
	result.IsQuestion = result.QuestionType != QuestionNone
	result.NeedsCausality = containsAny(normalized, causalityTriggers) || result.QuestionType == QuestionWhy
	result.NeedsMethod = containsAny(normalized, methodTriggers) || result.QuestionType == QuestionHow
	result.NeedsDefinition = containsAny(normalized, definitionTriggers) ||
		(result.QuestionType == QuestionWhat && !result.NeedsCausality)

	if result.NeedsCausality {
		if after, ok := segmentAfter(normalized, subjectCausalityMarker); ok {
			result.MainSubject = leadingWords(after, maxSubjectWords)
		}
	}
	// A method subject overrides a causal one.
	if result.NeedsMethod {
		if after, ok := segmentAfter(normalized, subjectMethodMarker); ok {
			result.MainSubject = leadingWords(after, maxSubjectWords)
		}
	}

	if result.NeedsDefinition && containsAny(normalized, definitionLeads) {
		if after, ok := segmentAfter(normalized, definitionLeads...); ok {
			result.DefinitionTerm = leadingWords(after, maxDefinitionTermWords)
		}
	}

	if result.NeedsMethod {
		result.MainVerb = extractMainVerb(normalized)
	}

	return result
}

// Process builds the ProcessedQuery for a raw query string.
func (qa *QueryAnalyzer) Process(query string) *ProcessedQuery {
	if query == "" {
		return &ProcessedQuery{Analysis: &QueryAnalysis{}}
	}

	cleanedQuery := punctuation.Replace(query)
	tokens := arabic.Words(arabic.Normalize(cleanedQuery))

	words := make([]string, 0, len(tokens))
	for _, w := range tokens {
		if _, stop := queryStopWords[w]; stop {
			continue
		}
		words = append(words, arabic.StripArticle(w, 3))
	}

	analysis := qa.Analyze(cleanedQuery)
	return &ProcessedQuery{
		Original:   query,
		Words:      words,
		Normalized: strings.Join(tokens, " "),
		KeyTerms:   uniqueStrings(words, analysis.Concepts),
		Analysis:   analysis,
		Intent:     qa.DetectIntent(cleanedQuery),
	}
}

// DetectIntent reports presentation hints: quotations, summaries,
// comparisons and lists.
func (qa *QueryAnalyzer) DetectIntent(query string) QueryIntent {
	normalized := arabic.Fold(query)
	return QueryIntent{
		WantsQuotes:     containsAny(normalized, quoteIntent),
		WantsSummary:    containsAny(normalized, summaryIntent),
		WantsComparison: containsAny(normalized, comparisonIntent),
		WantsList:       containsAny(normalized, listIntent),
	}
}

// ExpandTerms widens concepts with their roots, definite-article toggles and
// fuzzy variants.
func (qa *QueryAnalyzer) ExpandTerms(concepts []string) []string {
	expanded := uniqueStrings(concepts)
	seen := make(map[string]struct{}, len(expanded))
	for _, c := range expanded {
		seen[c] = struct{}{}
	}
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		expanded = append(expanded, s)
	}

	for _, c := range concepts {
		n := arabic.Fold(c)
		if root := arabic.WordRoot(n); arabic.Len(root) >= 3 {
			add(root)
		}
		if arabic.HasArticle(n) {
			add(n[len(arabic.Article):])
		} else {
			add(arabic.Article + n)
		}
		for _, v := range arabic.FuzzyVariants(n) {
			add(v)
		}
	}
	return expanded
}

func classifyQuestion(normalized string) QuestionType {
	for _, p := range questionPatterns {
		if containsAny(normalized, p.triggers) {
			return p.qtype
		}
	}
	return QuestionNone
}

func extractConcepts(normalized string) []string {
	var concepts []string
	for _, w := range arabic.Words(normalized) {
		w = stripChars(w, conceptTrim)
		if arabic.Len(w) < 2 {
			continue
		}
		if _, stop := analysisStopWords[w]; stop {
			continue
		}
		concepts = append(concepts, w)
		if arabic.HasArticle(w) && arabic.Len(w) > 3 {
			concepts = append(concepts, w[len(arabic.Article):])
		}
	}
	return uniqueStrings(concepts)
}

// extractMainVerb returns the last method verb present in the query, or the
// verb-like word that follows "كيف".
func extractMainVerb(normalized string) string {
	verb := ""
	for _, v := range methodVerbs {
		if strings.Contains(normalized, v) {
			verb = v
		}
	}
	if verb != "" || !strings.Contains(normalized, howMarker) {
		return verb
	}
	after, ok := segmentAfter(normalized, howMarker)
	if !ok {
		return ""
	}
	fields := arabic.Words(after)
	if len(fields) > 0 && strings.HasPrefix(fields[0], verbPrefix) {
		return fields[0]
	}
	return ""
}

// segmentAfter returns the text between the first occurrence of any marker
// and the next occurrence of any marker (or the end of s).
func segmentAfter(s string, markers ...string) (string, bool) {
	idx, width := indexAny(s, markers)
	if idx < 0 {
		return "", false
	}
	rest := s[idx+width:]
	if next, _ := indexAny(rest, markers); next >= 0 {
		rest = rest[:next]
	}
	return rest, rest != ""
}

// indexAny returns the leftmost match of any marker and its byte width.
func indexAny(s string, markers []string) (int, int) {
	best, width := -1, 0
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && (best < 0 || i < best) {
			best, width = i, len(m)
		}
	}
	return best, width
}

func leadingWords(s string, n int) string {
	fields := arabic.Words(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.TrimSpace(stripChars(strings.Join(fields, " "), "؟?،,"))
}

func stripChars(s, chars string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, s)
}

// uniqueStrings concatenates lists, keeping the first occurrence of each
// value.
func uniqueStrings(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
