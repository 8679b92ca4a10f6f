package arabic

// phoneticNeighbors lists, per letter, the letters considered acoustically or
// visually confusable with it. Order matters: FuzzyVariants substitutes the
// first neighbor only.
var phoneticNeighbors = map[rune][]rune{
	'ت': {'ط', 'ث'},
	'ط': {'ت', 'ظ'},
	'ث': {'ت', 'س'},
	'د': {'ض', 'ذ'},
	'ض': {'د', 'ظ'},
	'ذ': {'د', 'ز', 'ظ'},
	'س': {'ص', 'ث'},
	'ص': {'س', 'ض'},
	'ز': {'ذ', 'ظ'},
	'ظ': {'ز', 'ذ', 'ض', 'ط'},
	'ق': {'ك', 'غ'},
	'ك': {'ق', 'خ'},
	'ه': {'ح', 'خ'},
	'ح': {'ه', 'خ'},
	'خ': {'ح', 'ه', 'ك'},
	'ع': {'غ'},
	'غ': {'ع', 'ق'},
	'ب': {'ن', 'ت'},
	'ن': {'ب', 'ي'},
	'ي': {'ن'},
	'و': {'ؤ'},
	'ا': {'ى'},
}

// Cutoff returned by PhoneticDistance for words whose lengths differ by more
// than maxPhoneticLengthDiff.
const (
	NoPhoneticRelation    = 100.0
	maxPhoneticLengthDiff = 3
)

// Confusable reports whether a and b are the same letter, share a canonical
// form, or b is listed as a phonetic neighbor of a. The relation is not
// symmetric. A negative rune stands for a missing position.
func Confusable(a, b rune) bool {
	if a == b {
		return true
	}
	if canonicalRune(a) == canonicalRune(b) {
		return true
	}
	for _, n := range phoneticNeighbors[a] {
		if n == b {
			return true
		}
	}
	return false
}

// PhoneticDistance compares a and b position by position: equal letters cost
// 0, confusable letters 0.5 and anything else 2. A length mismatch adds twice
// the difference up front.
func PhoneticDistance(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	diff := len(ra) - len(rb)
	if diff < 0 {
		diff = -diff
	}
	if diff > maxPhoneticLengthDiff {
		return NoPhoneticRelation
	}

	distance := float64(diff) * 2
	for i := 0; i < max(len(ra), len(rb)); i++ {
		ca, cb := runeAt(ra, i), runeAt(rb, i)
		switch {
		case ca == cb:
		case Confusable(ca, cb):
			distance += 0.5
		default:
			distance += 2
		}
	}
	return distance
}

// PhoneticSimilarity maps a phonetic distance into (0,1].
func PhoneticSimilarity(a, b string) float64 {
	return 1 / (1 + PhoneticDistance(a, b)/10)
}

func runeAt(rs []rune, i int) rune {
	if i < len(rs) {
		return rs[i]
	}
	return -1
}
