package keyword

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDictionary struct {
	terms []TermCount
	err   error
	calls int
}

func (f *fakeDictionary) Terms() ([]TermCount, error) {
	f.calls++
	return f.terms, f.err
}

func TestSuggester_Suggest(t *testing.T) {
	dict := &fakeDictionary{terms: []TermCount{
		{Term: "الصبر", Count: 10},
		{Term: "الصدر", Count: 1},
		{Term: "الكتاب", Count: 50},
		{Term: "نور", Count: 5},
	}}
	s := NewSuggester(dict)

	got := s.Suggest("الصبء")
	require.NotEmpty(t, got)
	assert.Equal(t, "الصبر", got[0].Term)
	assert.Equal(t, 1, got[0].Distance)
	assert.Equal(t, uint64(10), got[0].Frequency)
	for _, sg := range got {
		assert.NotEqual(t, "الكتاب", sg.Term)
	}

	assert.Empty(t, s.Suggest("ن"))
	assert.Equal(t, 1, dict.calls)
}

func TestSuggester_Options(t *testing.T) {
	dict := &fakeDictionary{terms: []TermCount{
		{Term: "كتاب", Count: 3},
		{Term: "كتب", Count: 2},
		{Term: "كاتب", Count: 1},
	}}
	s := NewSuggester(dict, WithMaxDistance(1), WithMaxSuggestions(1))
	got := s.Suggest("كتابة")
	require.Len(t, got, 1)
	assert.LessOrEqual(t, got[0].Distance, 1)
}

func TestSuggester_Correct(t *testing.T) {
	dict := &fakeDictionary{terms: []TermCount{
		{Term: "الصبر", Count: 10},
		{Term: "مفتاح", Count: 4},
	}}
	s := NewSuggester(dict)

	corrected, changed := s.Correct([]string{"الصبء", "مفتاح"})
	assert.True(t, changed)
	assert.Equal(t, "الصبر مفتاح", corrected)

	corrected, changed = s.Correct([]string{"مفتاح"})
	assert.False(t, changed)
	assert.Equal(t, "مفتاح", corrected)
}

func TestSuggester_InvalidateReloads(t *testing.T) {
	dict := &fakeDictionary{terms: []TermCount{{Term: "نور", Count: 1}}}
	s := NewSuggester(dict)

	assert.True(t, s.Known("نور"))
	assert.False(t, s.Known("علم"))

	dict.terms = append(dict.terms, TermCount{Term: "علم", Count: 1})
	assert.False(t, s.Known("علم"))
	s.Invalidate()
	assert.True(t, s.Known("علم"))
	assert.Equal(t, 2, dict.calls)
}

func TestSuggester_DictionaryError(t *testing.T) {
	s := NewSuggester(&fakeDictionary{err: errors.New("closed")})
	assert.Nil(t, s.Suggest("الصبر"))
	assert.False(t, s.Known("الصبر"))

	corrected, changed := s.Correct([]string{"الصبر"})
	assert.False(t, changed)
	assert.Equal(t, "الصبر", corrected)
}
