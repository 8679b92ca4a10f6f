package search

import (
	"strings"

	"github.com/hyperjump/baheth/internal/arabic"
	"github.com/hyperjump/baheth/pkg/utils"
)

// Excerpt returns up to maxLen runes of content around the first occurrence
// of any term, with "..." marking cut ends. Terms are compared folded. When
// no term occurs the head of content is returned.
func Excerpt(content string, terms []string, maxLen int) string {
	runes := []rune(content)
	if maxLen <= 0 || len(runes) <= maxLen {
		return content
	}

	folded := []rune(arabic.Fold(content))
	// Folding drops diacritics, so positions only line up when lengths match.
	if len(folded) != len(runes) {
		return utils.Truncate(content, maxLen)
	}

	hit := -1
	text := string(folded)
	for _, t := range terms {
		t = arabic.Fold(t)
		if t == "" {
			continue
		}
		if i := strings.Index(text, t); i >= 0 {
			pos := arabic.Len(text[:i])
			if hit < 0 || pos < hit {
				hit = pos
			}
		}
	}
	if hit < 0 {
		return utils.Truncate(content, maxLen)
	}

	start := max(0, hit-maxLen/4)
	end := min(len(runes), start+maxLen)
	start = max(0, end-maxLen)

	out := string(runes[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}
