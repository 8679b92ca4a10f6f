package ranking

import (
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hyperjump/baheth/internal/arabic"
)

// DefaultTermCacheSize bounds the term ranking cache.
const DefaultTermCacheSize = 1000

// TermMetadata describes a candidate search term.
type TermMetadata struct {
	Term       string `json:"term"`
	Length     int    `json:"length"`
	HasPrefix  bool   `json:"has_prefix"`
	IsRoot     bool   `json:"is_root"`
	IsOriginal bool   `json:"is_original"`
}

// RankedTerm is a term with its quality score.
type RankedTerm struct {
	TermMetadata
	Score int `json:"score"`
}

// BuildTermSet collects the folded query terms with their roots and
// article-stripped variants, in discovery order. The first insertion of a
// term wins.
func BuildTermSet(concepts, words []string) []TermMetadata {
	var out []TermMetadata
	seen := make(map[string]struct{})
	add := func(m TermMetadata) {
		if _, ok := seen[m.Term]; ok {
			return
		}
		seen[m.Term] = struct{}{}
		out = append(out, m)
	}

	for _, raw := range append(append([]string{}, concepts...), words...) {
		term := arabic.Normalize(raw)
		n := arabic.Len(term)
		if n < 2 {
			continue
		}
		add(TermMetadata{
			Term:       term,
			Length:     n,
			HasPrefix:  arabic.HasArticle(term),
			IsOriginal: true,
		})

		if root := arabic.WordRoot(term); root != term && arabic.Len(root) >= 3 {
			add(TermMetadata{Term: root, Length: arabic.Len(root), IsRoot: true})
		}

		if arabic.HasArticle(term) && n > 4 {
			stripped := term[len(arabic.Article):]
			add(TermMetadata{Term: stripped, Length: arabic.Len(stripped)})
		}
	}
	return out
}

// QualityScore rates how discriminative a term is likely to be.
func QualityScore(m TermMetadata) int {
	score := 0
	if m.IsOriginal {
		score += 100
	}

	switch {
	case m.Length >= 5:
		score += 10
	case m.Length == 4:
		score += 7
	case m.Length == 3:
		score += 4
	default:
		score++
	}

	if !m.HasPrefix {
		score += 5
	}
	if !m.IsRoot {
		score += 3
	}
	if _, common := veryCommonShort[m.Term]; common {
		score -= 20
	}
	if arabic.Len(m.Term) >= 4 && !m.HasPrefix && !m.IsRoot {
		score += 4
	}
	return score
}

// TermRanker orders query terms by quality and caches the result per term
// set. Eviction follows insertion order: entries are read with Peek and
// written with ContainsOrAdd, so recency is never refreshed.
type TermRanker struct {
	cache *lru.Cache[string, []RankedTerm]
}

// NewTermRanker creates a TermRanker whose cache holds up to size term sets.
func NewTermRanker(size int) (*TermRanker, error) {
	if size <= 0 {
		size = DefaultTermCacheSize
	}
	cache, err := lru.New[string, []RankedTerm](size)
	if err != nil {
		return nil, err
	}
	return &TermRanker{cache: cache}, nil
}

// Rank scores and stably sorts terms by descending quality. Ties keep
// discovery order. The returned slice is owned by the caller.
func (tr *TermRanker) Rank(terms []TermMetadata) []RankedTerm {
	key := termSetKey(terms)
	if cached, ok := tr.cache.Peek(key); ok {
		return append([]RankedTerm(nil), cached...)
	}

	ranked := make([]RankedTerm, len(terms))
	for i, m := range terms {
		ranked[i] = RankedTerm{TermMetadata: m, Score: QualityScore(m)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	tr.cache.ContainsOrAdd(key, append([]RankedTerm(nil), ranked...))
	return ranked
}

// Cached reports whether the ranking for terms is cached.
func (tr *TermRanker) Cached(terms []TermMetadata) bool {
	return tr.cache.Contains(termSetKey(terms))
}

// Len returns the number of cached term sets.
func (tr *TermRanker) Len() int {
	return tr.cache.Len()
}

// termSetKey is independent of term order.
func termSetKey(terms []TermMetadata) string {
	keys := make([]string, len(terms))
	for i, m := range terms {
		keys[i] = m.Term
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

// OriginalTerms returns the terms that came from the query itself.
func OriginalTerms(ranked []RankedTerm) []string {
	var out []string
	for _, t := range ranked {
		if t.IsOriginal {
			out = append(out, t.Term)
		}
	}
	return out
}

// Terms returns every ranked term in rank order.
func Terms(ranked []RankedTerm) []string {
	out := make([]string, len(ranked))
	for i, t := range ranked {
		out[i] = t.Term
	}
	return out
}
