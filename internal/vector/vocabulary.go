// Package vector builds per-request TF-IDF vectors over a batch vocabulary and
// compares them.
package vector

import "github.com/hyperjump/baheth/internal/arabic"

// Vocabulary maps the distinct tokens of a candidate batch to dense indexes.
type Vocabulary struct {
	index map[string]int
	terms []string
}

// BuildVocabulary assigns indexes in first-seen order to the tokens of texts.
func BuildVocabulary(texts []string) *Vocabulary {
	v := &Vocabulary{index: make(map[string]int)}
	for _, text := range texts {
		for _, tok := range Tokens(text) {
			if _, ok := v.index[tok]; ok {
				continue
			}
			v.index[tok] = len(v.terms)
			v.terms = append(v.terms, tok)
		}
	}
	return v
}

// Size returns the number of distinct tokens.
func (v *Vocabulary) Size() int {
	return len(v.terms)
}

// Index returns the position of term, if present.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Terms returns the tokens in index order.
func (v *Vocabulary) Terms() []string {
	return v.terms
}

// Tokens normalizes text and returns its whitespace tokens longer than one
// rune. Case is preserved.
func Tokens(text string) []string {
	words := arabic.Words(arabic.Normalize(text))
	out := words[:0]
	for _, w := range words {
		if arabic.Len(w) > 1 {
			out = append(out, w)
		}
	}
	return out
}
