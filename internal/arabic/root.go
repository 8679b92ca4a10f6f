package arabic

import "strings"

// rootPrefixes are tried in order; only the first match is stripped.
var rootPrefixes = []string{Article, "و", "ف", "ب", "ل", "ك"}

// WordRoot derives a crude stem: one leading prefix is removed when at least
// three runes remain, then the word is cut to its first four runes (three if
// shorter). This is an approximation, not a linguistic root.
func WordRoot(word string) string {
	n := Len(word)
	if n < 3 {
		return word
	}

	stem := word
	for _, p := range rootPrefixes {
		if strings.HasPrefix(stem, p) && n > Len(p)+2 {
			stem = stem[len(p):]
			break
		}
	}

	switch sn := Len(stem); {
	case sn >= 4:
		return Prefix(stem, 4)
	case sn >= 3:
		return Prefix(stem, 3)
	default:
		return stem
	}
}
