package ranking

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTermSet(t *testing.T) {
	got := BuildTermSet([]string{"الصبر", "صبر"}, []string{"صبر"})
	want := []TermMetadata{
		{Term: "الصبر", Length: 5, HasPrefix: true, IsOriginal: true},
		{Term: "صبر", Length: 3, IsRoot: true},
	}
	assert.Equal(t, want, got, "first insertion of a term wins")
}

func TestBuildTermSet_skipsShortTerms(t *testing.T) {
	got := BuildTermSet(nil, []string{"و", "كتاب"})
	require.NotEmpty(t, got)
	for _, m := range got {
		assert.NotEqual(t, "و", m.Term)
	}
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name string
		meta TermMetadata
		want int
	}{
		{"original with article", TermMetadata{Term: "الصبر", Length: 5, HasPrefix: true, IsOriginal: true}, 113},
		{"original long bare", TermMetadata{Term: "مدرسه", Length: 5, IsOriginal: true}, 122},
		{"original four runes", TermMetadata{Term: "كتاب", Length: 4, IsOriginal: true}, 119},
		{"root", TermMetadata{Term: "صبر", Length: 3, IsRoot: true}, 9},
		{"very common short", TermMetadata{Term: "في", Length: 2, IsOriginal: true}, 89},
		{"stripped variant", TermMetadata{Term: "انسان", Length: 5}, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualityScore(tt.meta))
		})
	}
}

func TestTermRanker_Rank(t *testing.T) {
	tr, err := NewTermRanker(10)
	require.NoError(t, err)

	ranked := tr.Rank(BuildTermSet(nil, []string{"كتاب", "مدرسه"}))
	assert.Equal(t, []string{"مدرسه", "كتاب", "مدرس", "تاب"}, Terms(ranked))
	assert.Equal(t, []string{"مدرسه", "كتاب"}, OriginalTerms(ranked))

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestTermRanker_tiesKeepDiscoveryOrder(t *testing.T) {
	tr, err := NewTermRanker(10)
	require.NoError(t, err)

	terms := []TermMetadata{
		{Term: "نور", Length: 3, IsOriginal: true},
		{Term: "علم", Length: 3, IsOriginal: true},
		{Term: "حلم", Length: 3, IsOriginal: true},
	}
	assert.Equal(t, []string{"نور", "علم", "حلم"}, Terms(tr.Rank(terms)))
}

func TestTermRanker_cacheIgnoresOrder(t *testing.T) {
	terms := BuildTermSet([]string{"الصبر", "مفتاح"}, []string{"الفرج", "عند", "الشده"})

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		tr, err := NewTermRanker(10)
		require.NoError(t, err)

		fresh := tr.Rank(terms)
		require.Equal(t, 1, tr.Len())

		perm := append([]TermMetadata(nil), terms...)
		r.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

		assert.True(t, tr.Cached(perm))
		assert.Equal(t, fresh, tr.Rank(perm), "cached ranking must match the fresh one")
		assert.Equal(t, 1, tr.Len())

		other, err := NewTermRanker(10)
		require.NoError(t, err)
		assert.Equal(t, fresh, other.Rank(terms), "a fresh ranker must agree with the cache")
	}
}

func TestTermRanker_returnsCopies(t *testing.T) {
	tr, err := NewTermRanker(10)
	require.NoError(t, err)

	terms := BuildTermSet(nil, []string{"كتاب"})
	first := tr.Rank(terms)
	first[0].Term = "mutated"

	assert.NotEqual(t, "mutated", tr.Rank(terms)[0].Term)
}

func TestTermRanker_evictsInInsertionOrder(t *testing.T) {
	tr, err := NewTermRanker(2)
	require.NoError(t, err)

	a := BuildTermSet(nil, []string{"كتاب"})
	b := BuildTermSet(nil, []string{"مدرسه"})
	c := BuildTermSet(nil, []string{"الصبر"})

	tr.Rank(a)
	tr.Rank(b)
	// Reading a must not refresh it.
	tr.Rank(a)
	tr.Rank(c)

	assert.Equal(t, 2, tr.Len())
	assert.False(t, tr.Cached(a), "oldest entry is evicted first")
	assert.True(t, tr.Cached(b))
	assert.True(t, tr.Cached(c))
}

func TestNewTermRanker_defaultSize(t *testing.T) {
	tr, err := NewTermRanker(0)
	require.NoError(t, err)
	assert.NotNil(t, tr)
}
