package ranking

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/baheth/internal/arabic"
)

// DetectQuotesAndImpressions counts reported-speech verbs, quotation marks
// and impression words.
func DetectQuotesAndImpressions(text string) QuoteAnalysis {
	if text == "" {
		return QuoteAnalysis{}
	}
	doc := arabic.Fold(text)

	strong := 0
	for _, ind := range strongQuoteIndicators {
		strong += strings.Count(doc, ind)
	}
	impressions := countContained(doc, impressionIndicators)
	markers := 0
	for _, m := range quoteMarkers {
		markers += strings.Count(doc, m)
	}

	return QuoteAnalysis{
		HasQuotes:        strong > 0 || markers >= 2,
		QuoteScore:       math.Min(1.0, float64(strong)*0.3+float64(markers)*0.1),
		ImpressionScore:  math.Min(1.0, float64(impressions)*0.25),
		StrongQuoteCount: strong,
	}
}

// DetectCausality scores causal connectives, with a bonus when one appears
// within ten words of the query's main subject. Capped at 0.7.
func DetectCausality(text string, qa *QueryAnalysis) float64 {
	if text == "" || qa == nil || !qa.NeedsCausality {
		return 0
	}
	doc := arabic.Fold(text)

	count, strong := 0, 0
	for _, ind := range causalityIndicators {
		if strings.Contains(doc, ind.text) {
			count++
			if ind.strong {
				strong++
			}
		}
	}

	proximity := 0.0
	if qa.MainSubject != "" && count > 0 {
		subject := arabic.Fold(qa.MainSubject)
		words := arabic.Words(doc)
		for idx, w := range words {
			if !strings.Contains(w, subject) {
				continue
			}
			if indicatorInWindow(words, idx, 10, causalityIndicators) {
				proximity = 0.3
				break
			}
		}
	}

	return math.Min(0.7, float64(strong)*0.3+float64(count)*0.15+proximity)
}

// DetectMethod scores methodological vocabulary, sequencing words and
// conclusive phrasing, with bonuses when the query's verb or subject sits
// near them. Capped at 0.8.
func DetectMethod(text string, qa *QueryAnalysis) float64 {
	if text == "" || qa == nil || !qa.NeedsMethod {
		return 0
	}
	doc := arabic.Fold(text)

	count, strong := 0, 0
	for _, ind := range methodIndicators {
		if strings.Contains(doc, ind.text) {
			count++
			if ind.strong {
				strong++
			}
		}
	}
	sequential := countContained(doc, sequentialIndicators)
	definitive := countContained(doc, definitiveMethodIndicators)

	words := arabic.Words(doc)
	verbBonus, contextual := methodVerbBonus(doc, words, qa)

	proximity := 0.0
	if qa.MainSubject != "" && count > 0 {
		subject := arabic.Fold(qa.MainSubject)
		for idx, w := range words {
			if !mutuallyContains(w, subject) {
				continue
			}
			if indicatorInWindow(words, idx, 15, methodIndicators) {
				proximity = 0.25
				break
			}
		}
	}

	score := float64(strong)*0.15 +
		float64(count)*0.08 +
		float64(sequential)*0.15 +
		float64(definitive)*0.2 +
		verbBonus +
		proximity
	if definitive > 0 && sequential > 0 {
		score += 0.2
	}
	if contextual && sequential > 0 {
		score += 0.15
	}
	return math.Min(0.8, score)
}

// methodVerbBonus checks whether the query's main verb (or a testimony form,
// or the verb's root) occurs within twenty words of a query concept.
func methodVerbBonus(doc string, words []string, qa *QueryAnalysis) (float64, bool) {
	if qa.MainVerb == "" || len(qa.Concepts) == 0 {
		return 0, false
	}
	verb := arabic.Fold(qa.MainVerb)
	root := arabic.WordRoot(verb)

	var verbPositions []int
	for idx, w := range words {
		if strings.Contains(w, verb) || containsAny(w, testimonyForms) || (root != "" && strings.Contains(w, root)) {
			verbPositions = append(verbPositions, idx)
		}
	}

	contextual := false
	if len(verbPositions) > 0 {
	concepts:
		for _, c := range qa.Concepts {
			concept := arabic.Fold(c)
			for idx, w := range words {
				if !mutuallyContains(w, concept) {
					continue
				}
				for _, vp := range verbPositions {
					if absInt(idx-vp) <= 20 {
						contextual = true
						break concepts
					}
				}
			}
		}
	}

	switch {
	case contextual && strings.Contains(doc, verb):
		return 0.5, true
	case contextual && containsAny(doc, testimonyForms):
		return 0.45, true
	case contextual:
		return 0.3, true
	case strings.Contains(doc, verb) || (root != "" && strings.Contains(doc, root)):
		return 0.1, false
	default:
		return 0, false
	}
}

// DetectDefinition scores definitional phrasing, with bonuses when a pattern
// appears close to the query's definition term. Capped at 0.9.
func DetectDefinition(text string, qa *QueryAnalysis) float64 {
	if text == "" || qa == nil || !qa.NeedsDefinition {
		return 0
	}
	doc := arabic.Fold(text)

	definitions := countContained(doc, definitionPatterns)
	strong := countContained(doc, strongDefinitionPatterns)
	explanatory := countContained(doc, explanatoryConnectors)

	proximity, direct := 0.0, 0.0
	if qa.DefinitionTerm != "" {
		term := arabic.Fold(qa.DefinitionTerm)
		proximity = definitionProximity(doc, term)
		direct = directDefinitionBonus(doc, term)
	}

	score := float64(strong)*0.2 +
		float64(definitions)*0.1 +
		float64(explanatory)*0.05 +
		proximity +
		direct
	if strong > 0 && proximity > 0.3 {
		score += 0.2
	}
	return math.Min(0.9, score)
}

// definitionProximity finds the closest definitional pattern within eight
// words of the term. A pattern is located either inside a word or inside an
// approximate character window around it (five runes per word).
func definitionProximity(doc, term string) float64 {
	words := arabic.Words(doc)
	var termPositions []int
	for idx, w := range words {
		if mutuallyContains(w, term) {
			termPositions = append(termPositions, idx)
		}
	}
	if len(termPositions) == 0 {
		return 0
	}

	docRunes := []rune(doc)
	windows := make([]string, len(words))
	for idx := range words {
		from := max(0, idx*5-20)
		if to := min(len(docRunes), (idx+3)*5); from < to {
			windows[idx] = string(docRunes[from:to])
		}
	}

	best := 0.0
	for _, pattern := range definitionPatterns {
		base := 0.4
		if containsAny(pattern, strongDefinitionPatterns) {
			base = 0.6
		}
		for idx, w := range words {
			if !strings.Contains(w, pattern) && !strings.Contains(windows[idx], pattern) {
				continue
			}
			for _, tp := range termPositions {
				if d := absInt(idx - tp); d <= 8 {
					best = math.Max(best, base-float64(d)*0.05)
				}
			}
		}
	}
	return best
}

// directDefinitionBonus is 0.4 when a strong pattern starts within fifty
// runes of the term's first occurrence.
func directDefinitionBonus(doc, term string) float64 {
	termIdx := strings.Index(doc, term)
	if termIdx < 0 {
		return 0
	}
	termPos := utf8.RuneCountInString(doc[:termIdx])
	for _, pattern := range strongDefinitionPatterns {
		i := strings.Index(doc, pattern)
		if i < 0 {
			continue
		}
		if absInt(utf8.RuneCountInString(doc[:i])-termPos) <= 50 {
			return 0.4
		}
	}
	return 0
}

// indicatorInWindow reports whether any word in [idx-radius, idx+radius)
// contains one of the indicators.
func indicatorInWindow(words []string, idx, radius int, inds []indicator) bool {
	for i := max(0, idx-radius); i < min(len(words), idx+radius); i++ {
		for _, ind := range inds {
			if strings.Contains(words[i], ind.text) {
				return true
			}
		}
	}
	return false
}
