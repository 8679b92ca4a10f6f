package indexer

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/baheth/internal/arabic"
	"github.com/hyperjump/baheth/pkg/utils"
)

// DefaultSnippetMaxRunes bounds snippet length when no limit is configured.
const DefaultSnippetMaxRunes = 1200

// Chunker splits page text into snippets on sentence boundaries.
type Chunker struct {
	maxRunes int
}

// NewChunker creates a chunker producing snippets of at most maxRunes runes.
func NewChunker(maxRunes int) *Chunker {
	if maxRunes <= 0 {
		maxRunes = DefaultSnippetMaxRunes
	}
	return &Chunker{maxRunes: maxRunes}
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '؟', '۔', '\n':
		return true
	}
	return false
}

// splitSentences cuts text after every sentence terminator. Whitespace
// inside a sentence is collapsed.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if !isSentenceEnd(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if s := utils.CollapseSpaces(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = end
	}
	if s := utils.CollapseSpaces(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Chunk packs whole sentences into snippets. A sentence longer than the limit
// is packed word by word, and a word longer than the limit is cut.
func (c *Chunker) Chunk(text string) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	add := func(piece string, n int) {
		if curLen > 0 && curLen+1+n > c.maxRunes {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(piece)
		curLen += n
	}

	for _, s := range splitSentences(text) {
		if n := arabic.Len(s); n <= c.maxRunes {
			add(s, n)
			continue
		}
		for _, w := range strings.Fields(s) {
			for _, part := range splitRunes(w, c.maxRunes) {
				add(part, arabic.Len(part))
			}
		}
	}
	flush()
	return chunks
}

func splitRunes(s string, n int) []string {
	rs := []rune(s)
	if len(rs) <= n {
		return []string{s}
	}
	parts := make([]string, 0, len(rs)/n+1)
	for len(rs) > n {
		parts = append(parts, string(rs[:n]))
		rs = rs[n:]
	}
	return append(parts, string(rs))
}
