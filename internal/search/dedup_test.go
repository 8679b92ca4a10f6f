package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/baheth/internal/config"
	"github.com/hyperjump/baheth/internal/models"
	"github.com/hyperjump/baheth/internal/ranking"
)

func ranked(id int64, fileID string, page int, text string, score float64) ranking.RankedDocument {
	return ranking.RankedDocument{
		ScoredDocument: ranking.ScoredDocument{
			Snippet: models.Snippet{ID: id, FileID: fileID, PageIndex: page, TextSnippet: text},
		},
		ReRankScore: score,
	}
}

func ids(docs []ranking.RankedDocument) []int64 {
	out := make([]int64, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestContentKey(t *testing.T) {
	assert.Empty(t, ContentKey(""))
	assert.Equal(t, ContentKey("الصبر  مفتاح\nالفرج"), ContentKey(" الصبر مفتاح الفرج "))
	assert.Equal(t, ContentKey("أسباب"), ContentKey("اسباب"))
	assert.Equal(t, "اسباب_5", ContentKey("أسباب"))

	long := ""
	for i := 0; i < 30; i++ {
		long += "كلمة "
	}
	key := ContentKey(long)
	assert.Equal(t, "_149", key[len(key)-4:])
}

func TestDeduplicate(t *testing.T) {
	dd := NewDeduplicator(config.DedupConfig{})

	tests := []struct {
		name        string
		in          []ranking.RankedDocument
		wantIDs     []int64
		wantRemoved int
	}{
		{
			name:    "empty",
			in:      nil,
			wantIDs: []int64{},
		},
		{
			name: "same location and text keeps the higher score",
			in: []ranking.RankedDocument{
				ranked(1, "f", 1, "الصبر مفتاح الفرج", 0.5),
				ranked(2, "f", 1, "الصبر مفتاح الفرج", 0.9),
			},
			wantIDs:     []int64{2},
			wantRemoved: 1,
		},
		{
			name: "lower duplicate is dropped",
			in: []ranking.RankedDocument{
				ranked(1, "f", 1, "الصبر مفتاح الفرج", 0.9),
				ranked(2, "f", 1, "الصبر مفتاح الفرج", 0.5),
			},
			wantIDs:     []int64{1},
			wantRemoved: 1,
		},
		{
			name: "same location different text both survive",
			in: []ranking.RankedDocument{
				ranked(1, "f", 1, "الصبر مفتاح الفرج", 0.9),
				ranked(2, "f", 1, "العلم نور", 0.8),
			},
			wantIDs: []int64{1, 2},
		},
		{
			name: "same text elsewhere is a duplicate",
			in: []ranking.RankedDocument{
				ranked(1, "f", 1, "العلم نور", 0.6),
				ranked(2, "g", 7, "العلمُ  نور", 0.7),
				ranked(3, "h", 2, "شيء آخر", 0.65),
			},
			wantIDs:     []int64{2, 3},
			wantRemoved: 1,
		},
		{
			name: "empty texts are never content duplicates",
			in: []ranking.RankedDocument{
				ranked(1, "f", 1, "", 0.6),
				ranked(2, "g", 1, "", 0.5),
			},
			wantIDs: []int64{1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := dd.Deduplicate(tt.in)
			assert.Equal(t, tt.wantIDs, append([]int64{}, ids(got)...))
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestDeduplicate_SimilarityPass(t *testing.T) {
	in := []ranking.RankedDocument{
		ranked(1, "f", 1, "الصبر مفتاح الفرج عند الشدائد والمحن وهو خلق الانبياء والصالحين", 0.9),
		ranked(2, "g", 1, "الصبر مفتاح الفرج عند الشدائد والمحن فهو خلق الانبياء والصالحين", 0.8),
		ranked(3, "h", 1, "العلم نور يهدي صاحبه", 0.7),
	}

	off := NewDeduplicator(config.DedupConfig{})
	got, removed := off.Deduplicate(in)
	assert.Len(t, got, 3)
	assert.Zero(t, removed)

	on := NewDeduplicator(config.DedupConfig{SimilarityEnabled: true})
	got, removed = on.Deduplicate(in)
	assert.Equal(t, []int64{1, 3}, ids(got))
	assert.Equal(t, 1, removed)
}

func TestTextSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, TextSimilarity("الصبر", "الصَّبر"))
	assert.Zero(t, TextSimilarity("", "نص"))
	assert.Zero(t, TextSimilarity("قصير", "نص طويل جدا جدا جدا جدا"), "length gap over half")
	assert.Zero(t, TextSimilarity("ا ب", "ت ث"), "no words longer than one rune")

	a := "الصبر مفتاح الفرج"
	b := "الصبر مفتاح الخير"
	s := TextSimilarity(a, b)
	require.Greater(t, s, 0.0)
	assert.Less(t, s, 1.0)
	assert.InDelta(t, s, TextSimilarity(b, a), 1e-12)
}
