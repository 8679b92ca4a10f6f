package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hyperjump/baheth/internal/arabic"
	"github.com/hyperjump/baheth/internal/config"
	"github.com/hyperjump/baheth/internal/ranking"
	"github.com/hyperjump/baheth/pkg/utils"
)

// DefaultSimilarityThreshold is the near-duplicate cutoff of the second pass.
const DefaultSimilarityThreshold = 0.85

// contentKeyRunes is how much of the folded text goes into a content key.
const contentKeyRunes = 100

// Deduplicator removes repeated results. The first pass matches results by
// page location and content key; the optional second pass drops results
// whose text is nearly identical to one already kept.
type Deduplicator struct {
	similarityEnabled bool
	threshold         float64
}

// NewDeduplicator creates a Deduplicator from cfg.
func NewDeduplicator(cfg config.DedupConfig) *Deduplicator {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduplicator{similarityEnabled: cfg.SimilarityEnabled, threshold: threshold}
}

// ContentKey is the folded, whitespace-collapsed text cut to 100 runes and
// suffixed with the full folded length. Empty text has no key.
func ContentKey(text string) string {
	if text == "" {
		return ""
	}
	folded := utils.CollapseSpaces(arabic.Fold(text))
	return arabic.Prefix(folded, contentKeyRunes) + "_" + strconv.Itoa(arabic.Len(folded))
}

// LocationKey identifies the page a snippet came from.
func LocationKey(d *ranking.RankedDocument) string {
	return d.FileID + "_" + strconv.Itoa(d.PageIndex)
}

// Deduplicate returns results without duplicates, sorted by descending
// ReRankScore, and the number of results removed.
func (dd *Deduplicator) Deduplicate(results []ranking.RankedDocument) ([]ranking.RankedDocument, int) {
	if len(results) == 0 {
		return results, 0
	}
	out := dedupByKeys(results)
	if dd.similarityEnabled {
		out = dd.dedupBySimilarity(out)
	}
	return out, len(results) - len(out)
}

func dedupByKeys(results []ranking.RankedDocument) []ranking.RankedDocument {
	seenLocations := make(map[string]int)
	seenContent := make(map[string]int)
	// kept holds indexes into results.
	var kept []int

	replace := func(old, cur int) {
		for i, k := range kept {
			if k == old {
				kept = append(kept[:i], kept[i+1:]...)
				break
			}
		}
		kept = append(kept, cur)
	}

	for i := range results {
		cur := &results[i]
		duplicate := false
		hash := ContentKey(cur.TextSnippet)

		loc := LocationKey(cur)
		if prev, ok := seenLocations[loc]; ok {
			prevHash := ContentKey(results[prev].TextSnippet)
			if hash != "" && prevHash != "" && hash == prevHash {
				duplicate = true
				if cur.ReRankScore > results[prev].ReRankScore {
					seenLocations[loc] = i
					replace(prev, i)
				}
			}
		} else {
			seenLocations[loc] = i
		}

		if !duplicate && hash != "" {
			if prev, ok := seenContent[hash]; ok {
				duplicate = true
				if cur.ReRankScore > results[prev].ReRankScore {
					seenContent[hash] = i
					replace(prev, i)
				}
			} else {
				seenContent[hash] = i
			}
		}

		if !duplicate {
			kept = append(kept, i)
		}
	}

	out := make([]ranking.RankedDocument, len(kept))
	for i, k := range kept {
		out[i] = results[k]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReRankScore > out[j].ReRankScore
	})
	return out
}

func (dd *Deduplicator) dedupBySimilarity(results []ranking.RankedDocument) []ranking.RankedDocument {
	out := make([]ranking.RankedDocument, 0, len(results))
	for _, r := range results {
		dup := false
		for _, k := range out {
			if TextSimilarity(r.TextSnippet, k.TextSnippet) >= dd.threshold {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// TextSimilarity compares two texts after normalization: word Jaccard
// weighted 0.5, edit similarity 0.3 and length ratio 0.2. Texts whose
// lengths differ by more than half the longer one score 0.
func TextSimilarity(a, b string) float64 {
	na, nb := arabic.Normalize(a), arabic.Normalize(b)
	if na == nb {
		return 1
	}
	la, lb := arabic.Len(na), arabic.Len(nb)
	if la == 0 || lb == 0 {
		return 0
	}
	longer, shorter := max(la, lb), min(la, lb)
	if float64(longer-shorter) > float64(longer)*0.5 {
		return 0
	}

	wa, wb := wordSet(na), wordSet(nb)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	jaccard := float64(inter) / float64(len(wa)+len(wb)-inter)
	lev := 1 - float64(arabic.EditDistance(na, nb))/float64(longer)
	ratio := float64(shorter) / float64(longer)

	return jaccard*0.5 + lev*0.3 + ratio*0.2
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		if arabic.Len(w) > 1 {
			set[w] = struct{}{}
		}
	}
	return set
}
