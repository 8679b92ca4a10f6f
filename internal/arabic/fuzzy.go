package arabic

import (
	"sort"
	"strings"
)

// MatchType classifies a fuzzy match.
type MatchType int

const (
	// MatchExact is the token itself or one of its generated variants.
	MatchExact MatchType = iota
	// MatchFuzzy is a token within the edit/phonetic tolerance.
	MatchFuzzy
)

// String returns a string representation of the match type.
func (m MatchType) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// Match is a token of a text that approximately matches a word.
type Match struct {
	Match            string
	Score            float64
	Position         int
	Type             MatchType
	LevDistance      int
	PhoneticDistance float64
}

// DefaultMatchThreshold is the FuzzyMatch acceptance score used when callers
// have no configured value.
const DefaultMatchThreshold = 0.7

const (
	minVariantWordLen = 3
	maxTranspositions = 5
	maxSubstitutions  = 3
	maxVariants       = 15
	maxFuzzyLenDiff   = 2
	maxFuzzyEdits     = 3
	minEditSimilarity = 0.6
)

// variantPrefixes are toggled on and off by FuzzyVariants.
var variantPrefixes = []string{Article, "و", "ف", "ب"}

// variantSet is an insertion-ordered string set.
type variantSet struct {
	order []string
	seen  map[string]struct{}
}

func newVariantSet() *variantSet {
	return &variantSet{seen: make(map[string]struct{})}
}

func (s *variantSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
}

// FuzzyVariants generates approximate alternative spellings of word: its
// normalized form, adjacent transpositions, single phonetic substitutions
// (first neighbor only) and prefix toggles. Words shorter than three runes
// yield only themselves.
func FuzzyVariants(word string) []string {
	rs := []rune(word)
	if len(rs) < minVariantWordLen {
		return []string{word}
	}

	set := newVariantSet()
	set.add(word)
	set.add(Normalize(word))

	for i := 0; i < min(maxTranspositions, len(rs)-1); i++ {
		swapped := make([]rune, len(rs))
		copy(swapped, rs)
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
		t := string(swapped)
		set.add(t)
		set.add(Normalize(t))
	}

	for i := 0; i < min(maxSubstitutions, len(rs)); i++ {
		neighbors := phoneticNeighbors[rs[i]]
		if len(neighbors) == 0 {
			continue
		}
		sub := make([]rune, len(rs))
		copy(sub, rs)
		sub[i] = neighbors[0]
		set.add(string(sub))
	}

	for _, p := range variantPrefixes {
		if strings.HasPrefix(word, p) {
			set.add(word[len(p):])
		} else if len(set.order) < maxVariants {
			set.add(p + word)
		}
	}
	return set.order
}

// FuzzyMatch scans the whitespace tokens of text for approximate matches of
// word. Tokens equal to the word or one of its variants score 1. Tokens whose
// length differs by at most two runes score 0.6*editSimilarity +
// 0.4*phoneticSimilarity and are kept when the score reaches threshold.
// Results are sorted by descending score.
func FuzzyMatch(word, text string, threshold float64) []Match {
	if word == "" || text == "" {
		return nil
	}
	w := Fold(word)
	wLen := Len(w)

	variants := make(map[string]struct{})
	for _, v := range FuzzyVariants(w) {
		variants[v] = struct{}{}
	}

	var matches []Match
	for pos, tok := range Words(Fold(text)) {
		tLen := Len(tok)
		if tLen < 2 {
			continue
		}
		if _, ok := variants[tok]; ok || tok == w {
			matches = append(matches, Match{Match: tok, Score: 1, Position: pos, Type: MatchExact})
			continue
		}

		diff := tLen - wLen
		if diff < 0 {
			diff = -diff
		}
		if diff > maxFuzzyLenDiff {
			continue
		}

		lev := EditDistance(w, tok)
		if lev > maxFuzzyEdits {
			continue
		}
		levSim := 1 - float64(lev)/float64(max(wLen, tLen))
		if levSim < minEditSimilarity {
			continue
		}
		phon := PhoneticDistance(w, tok)
		score := levSim*0.6 + (1/(1+phon/10))*0.4
		if score >= threshold {
			matches = append(matches, Match{
				Match:            tok,
				Score:            score,
				Position:         pos,
				Type:             MatchFuzzy,
				LevDistance:      lev,
				PhoneticDistance: phon,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
