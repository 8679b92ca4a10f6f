package vector

import (
	"math"

	"github.com/hyperjump/baheth/pkg/utils"
)

// Vectorize returns the L2-normalized TF-IDF vector of text over vocab. Term
// frequency is count/len(tokens). A term without a positive IDF in idf falls
// back to ln(totalDocs). Tokens outside the vocabulary are ignored and an
// empty text yields the zero vector.
func Vectorize(text string, vocab *Vocabulary, idf map[string]float64, totalDocs int64) []float64 {
	vec := make([]float64, vocab.Size())
	words := Tokens(text)
	if len(words) == 0 {
		return vec
	}

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	fallback := FallbackIDF(totalDocs)
	for term, n := range counts {
		i, ok := vocab.Index(term)
		if !ok {
			continue
		}
		weight := idf[term]
		if weight == 0 {
			weight = fallback
		}
		vec[i] = float64(n) / float64(len(words)) * weight
	}

	utils.NormalizeL2(vec)
	return vec
}

// FallbackIDF is the weight of a term with no recorded document frequency.
func FallbackIDF(totalDocs int64) float64 {
	if totalDocs <= 0 {
		return 0
	}
	return math.Log(float64(totalDocs))
}
