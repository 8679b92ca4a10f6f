package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("كلام ", 40) + "الصبر مفتاح الفرج " + strings.Repeat("حديث ", 40)

	tests := []struct {
		name    string
		content string
		terms   []string
		maxLen  int
		check   func(t *testing.T, got string)
	}{
		{
			name: "short content unchanged", content: "الصبر جميل", terms: []string{"الصبر"}, maxLen: 100,
			check: func(t *testing.T, got string) { assert.Equal(t, "الصبر جميل", got) },
		},
		{
			name: "non-positive max unchanged", content: long, maxLen: 0,
			check: func(t *testing.T, got string) { assert.Equal(t, long, got) },
		},
		{
			name: "window around first term", content: long, terms: []string{"مفتاح", "الصبر"}, maxLen: 40,
			check: func(t *testing.T, got string) {
				assert.Contains(t, got, "الصبر")
				assert.True(t, strings.HasPrefix(got, "..."))
				assert.True(t, strings.HasSuffix(got, "..."))
				assert.LessOrEqual(t, len([]rune(got)), 46)
			},
		},
		{
			name: "no term falls back to head", content: long, terms: []string{"غائب"}, maxLen: 10,
			check: func(t *testing.T, got string) {
				assert.Equal(t, string([]rune(long)[:10])+"...", got)
			},
		},
		{
			name: "folded term matches hamza form", content: strings.Repeat("س ", 30) + "أسباب", terms: []string{"اسباب"}, maxLen: 20,
			check: func(t *testing.T, got string) {
				assert.True(t, strings.HasSuffix(got, "أسباب"))
				assert.True(t, strings.HasPrefix(got, "..."))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Excerpt(tt.content, tt.terms, tt.maxLen))
		})
	}
}
