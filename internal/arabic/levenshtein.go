package arabic

// EditDistance returns the Levenshtein distance between a and b counted in
// runes. Callers pass normalized strings.
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rows are enough.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// EditSimilarity returns 1 - EditDistance/maxLen, in [0,1]. Two empty
// strings are identical.
func EditSimilarity(a, b string) float64 {
	maxLen := max(Len(a), Len(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(EditDistance(a, b))/float64(maxLen)
}
