// Package arabic provides Arabic/Persian orthographic canonicalization and the
// approximate-matching primitives (edit distance, phonetic distance, fuzzy
// variants, crude roots) used by the ranking pipeline.
package arabic

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Definite article prefix.
const Article = "ال"

// diacritics covers the Arabic harakat, tanwin, shadda, sukun and the
// superscript alef.
var diacritics = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x064B, Hi: 0x065F, Stride: 1},
		{Lo: 0x0670, Hi: 0x0670, Stride: 1},
	},
}

// canonical maps orthographic variants to the form used for matching.
var canonical = map[rune]rune{
	'إ': 'ا',
	'أ': 'ا',
	'ٱ': 'ا',
	'آ': 'ا',
	'ى': 'ي',
	'ئ': 'ي',
	'ة': 'ه',
	'ھ': 'ه',
	'ۀ': 'ه',
	'ک': 'ك',
	'ؤ': 'و',
	'پ': 'ب',
	'چ': 'ج',
	'ژ': 'ز',
	'گ': 'ك',
}

func mapCanonical(r rune) rune {
	if c, ok := canonical[r]; ok {
		return c
	}
	return r
}

// canonicalRune returns the canonical form of r, or -1 when normalization
// drops it.
func canonicalRune(r rune) rune {
	if r < 0 || unicode.Is(diacritics, r) {
		return -1
	}
	return mapCanonical(r)
}

var normalizers = sync.Pool{
	New: func() any {
		return transform.Chain(runes.Remove(runes.In(diacritics)), runes.Map(mapCanonical))
	},
}

// Normalize maps variant glyphs to their canonical forms and strips
// combining diacritics. It is total and idempotent. Case is preserved; use
// Fold for comparisons.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := normalizers.Get().(transform.Transformer)
	defer normalizers.Put(t)

	out, _, err := transform.String(t, text)
	if err != nil {
		return strings.Map(func(r rune) rune { return canonicalRune(r) }, text)
	}
	return out
}

// Fold lowercases and normalizes text. Every scorer compares folded strings.
func Fold(text string) string {
	return Normalize(strings.ToLower(text))
}

// Len returns the length of s in runes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// HasArticle reports whether word starts with the definite article.
func HasArticle(word string) bool {
	return strings.HasPrefix(word, Article)
}

// StripArticle removes a leading definite article when the word is longer
// than minLen runes. Otherwise word is returned unchanged.
func StripArticle(word string, minLen int) string {
	if HasArticle(word) && Len(word) > minLen {
		return word[len(Article):]
	}
	return word
}

// Prefix returns the first n runes of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
