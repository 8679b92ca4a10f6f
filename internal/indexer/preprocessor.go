package indexer

import (
	"github.com/hyperjump/baheth/internal/arabic"
	"github.com/hyperjump/baheth/internal/vector"
	"github.com/hyperjump/baheth/pkg/utils"
)

// Preprocess returns the processed form of a snippet that the keyword index
// searches: folded with whitespace collapsed.
func Preprocess(text string) string {
	return utils.CollapseSpaces(arabic.Fold(text))
}

// distinctTokens returns the vocabulary tokens of text once each, in
// first-seen order. These are the terms whose document frequency a snippet
// contributes to.
func distinctTokens(text string) []string {
	tokens := vector.Tokens(text)
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
