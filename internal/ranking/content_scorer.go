package ranking

import (
	"math"
	"strings"

	"github.com/hyperjump/baheth/internal/arabic"
)

// PhraseProximity rewards documents where two distinct key terms occur close
// together. Gap is measured in words; at least two terms must be present.
func PhraseProximity(text string, keyTerms []string) float64 {
	if text == "" || len(keyTerms) < 2 {
		return 0
	}
	words := arabic.Words(arabic.Fold(text))

	var positions [][]int
	for _, term := range keyTerms {
		t := arabic.Fold(term)
		var pos []int
		for i, w := range words {
			if mutuallyContains(w, t) {
				pos = append(pos, i)
			}
		}
		if len(pos) > 0 {
			positions = append(positions, pos)
		}
	}
	if len(positions) < 2 {
		return 0
	}

	minGap := math.MaxInt
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			for _, a := range positions[i] {
				for _, b := range positions[j] {
					minGap = min(minGap, absInt(a-b))
				}
			}
		}
	}

	switch {
	case minGap <= 5:
		return 0.25
	case minGap <= 10:
		return 0.15
	case minGap <= 20:
		return 0.08
	case minGap <= 40:
		return 0.03
	default:
		return 0
	}
}

// PhraseMatches rewards contiguous query n-grams (n = 2..5) found in the
// document. Capped at 0.4.
func PhraseMatches(text, query string) float64 {
	if text == "" || query == "" {
		return 0
	}
	doc := arabic.Fold(text)

	var qwords []string
	for _, w := range arabic.Words(arabic.Fold(query)) {
		if arabic.Len(w) > 1 {
			qwords = append(qwords, w)
		}
	}

	score := 0.0
	for n := 2; n <= min(5, len(qwords)); n++ {
		for i := 0; i+n <= len(qwords); i++ {
			phrase := strings.Join(qwords[i:i+n], " ")
			if arabic.Len(phrase) > 5 && strings.Contains(doc, phrase) {
				score += math.Min(0.15, float64(n)*0.08)
			}
		}
	}
	return math.Min(0.4, score)
}

// ContextualRelevance measures how many key terms (or their roots) share a
// sentence. Capped at 0.35.
func ContextualRelevance(text string, keyTerms []string) float64 {
	if text == "" || len(keyTerms) == 0 {
		return 0
	}
	doc := arabic.Fold(text)

	type rooted struct{ term, root string }
	keyRoots := make([]rooted, len(keyTerms))
	for i, term := range keyTerms {
		t := arabic.Fold(term)
		keyRoots[i] = rooted{term: t, root: arabic.WordRoot(t)}
	}

	best := 0.0
	multi := 0
	sentences := strings.FieldsFunc(doc, func(r rune) bool {
		return strings.ContainsRune(sentenceBreaks, r)
	})
	for _, sentence := range sentences {
		if arabic.Len(strings.TrimSpace(sentence)) < 10 {
			continue
		}
		found := 0
		for _, p := range keyRoots {
			if strings.Contains(sentence, p.term) || (p.root != "" && strings.Contains(sentence, p.root)) {
				found++
			}
		}
		if found >= 2 {
			multi++
		}
		best = math.Max(best, float64(found)/float64(len(keyTerms)))
	}

	bonus := 0.0
	if multi >= 2 {
		bonus = 0.10
	}
	return math.Min(0.35, best*0.20+bonus)
}

// ValidateAnswerType looks for words typical of an answer to the query's
// question type: persons, times, places, methods or causes.
func ValidateAnswerType(text string, qa *QueryAnalysis) float64 {
	if text == "" || qa == nil {
		return 0
	}
	rule, ok := answerTypeRules[qa.QuestionType]
	if !ok {
		return 0
	}
	matches := countContained(arabic.Fold(text), rule.indicators)
	return math.Min(rule.cap, float64(matches)*rule.step)
}

// DetectNegationContext penalizes key terms preceded, within three words, by
// a negation marker. Capped at 0.4.
func DetectNegationContext(text string, keyTerms []string) float64 {
	if text == "" || len(keyTerms) == 0 {
		return 0
	}
	words := arabic.Words(arabic.Fold(text))

	penalty := 0.0
	for _, term := range keyTerms {
		t := arabic.Fold(term)
		for idx, w := range words {
			if !mutuallyContains(w, t) {
				continue
			}
			for i := max(0, idx-3); i < idx; i++ {
				if _, neg := negationMarkers[words[i]]; neg {
					penalty += 0.15
				}
			}
		}
	}
	return math.Min(0.4, penalty)
}

// ConceptBonus rewards question concepts present in the document, plus a
// share of the domain detector scores. Only questions earn it.
func ConceptBonus(text string, qa *QueryAnalysis, definition, causality, method float64) float64 {
	if text == "" || qa == nil || !qa.IsQuestion {
		return 0
	}
	doc := arabic.Fold(text)

	bonus := 0.0
	found := 0
	for _, c := range qa.Concepts {
		if strings.Contains(doc, arabic.Fold(c)) {
			found++
			bonus += 0.05
		}
	}
	if found >= 2 {
		bonus += 0.05
	}
	if qa.NeedsDefinition {
		bonus += definition * 0.20
	}
	if qa.NeedsCausality {
		bonus += causality * 0.15
	}
	if qa.NeedsMethod {
		bonus += method * 0.15
	}
	return math.Min(0.35, bonus)
}

func mutuallyContains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
