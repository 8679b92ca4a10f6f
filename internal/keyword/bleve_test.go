package keyword

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/baheth/internal/arabic"
	"github.com/hyperjump/baheth/internal/models"
)

func snippet(id int64, text string) *models.Snippet {
	return &models.Snippet{
		ID:            id,
		FileID:        "f1",
		TextSnippet:   text,
		ProcessedText: arabic.Fold(text),
	}
}

func newTestIndex(t *testing.T, docs ...*models.Snippet) *BleveIndex {
	t.Helper()
	idx, err := NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	require.NoError(t, idx.IndexBatch(context.Background(), docs))
	return idx
}

func hitIDs(hits []Hit) []int64 {
	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

func TestBleveIndex_SearchRequiredAndEnhanced(t *testing.T) {
	idx := newTestIndex(t,
		snippet(1, "الصبر مفتاح الفرج"),
		snippet(2, "العلم نور"),
		snippet(3, "الصبر مع العلم"),
	)
	ctx := context.Background()

	hits, err := idx.Search(ctx, CandidateQuery{Required: []string{"الصبر", "العلم"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, hitIDs(hits))

	hits, err = idx.Search(ctx, CandidateQuery{
		Required: []string{"الصبر", "العلم"},
		Enhanced: []string{"نور"},
		Limit:    10,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, hitIDs(hits))

	hits, err = idx.Search(ctx, CandidateQuery{Enhanced: []string{"الفرج", "نور"}, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestBleveIndex_SearchEmpty(t *testing.T) {
	idx := newTestIndex(t, snippet(1, "الصبر"))

	hits, err := idx.Search(context.Background(), CandidateQuery{Required: []string{" "}, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(context.Background(), CandidateQuery{Required: []string{"الصبر"}})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBleveIndex_SearchMatchesFoldedText(t *testing.T) {
	idx := newTestIndex(t, snippet(7, "أسباب الهجرة إلى المدينة"))

	hits, err := idx.Search(context.Background(), CandidateQuery{Required: []string{arabic.Fold("اسباب")}, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, hitIDs(hits))
}

func TestBleveIndex_FuzzySearchOrdersByIDDesc(t *testing.T) {
	idx := newTestIndex(t,
		snippet(1, "صبر جميل"),
		snippet(2, "قليل من صبر"),
		snippet(5, "صبر الايام"),
		snippet(6, "لا علاقة"),
	)
	ctx := context.Background()

	hits, err := idx.FuzzySearch(ctx, FieldProcessedText, []string{"صبور"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 2, 1}, hitIDs(hits))

	hits, err = idx.FuzzySearch(ctx, FieldProcessedText, []string{"صبور"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 2}, hitIDs(hits))

	hits, err = idx.FuzzySearch(ctx, FieldTextSnippet, []string{"", " "}, 2)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFuzzinessFor(t *testing.T) {
	assert.Equal(t, 1, fuzzinessFor("صبر"))
	assert.Equal(t, 1, fuzzinessFor("مدرسه"))
	assert.Equal(t, 2, fuzzinessFor("المدرسه"))
}

func TestBleveIndex_RejectsInvalidID(t *testing.T) {
	idx := newTestIndex(t)
	err := idx.Index(context.Background(), snippet(0, "نص"))
	require.Error(t, err)
	err = idx.IndexBatch(context.Background(), []*models.Snippet{snippet(-1, "نص")})
	require.Error(t, err)
}

func TestBleveIndex_Delete(t *testing.T) {
	idx := newTestIndex(t,
		snippet(1, "كلمةفريدة"),
		snippet(2, "كلمةفريدة"),
		snippet(3, "كلمةفريدة"),
	)
	ctx := context.Background()

	require.NoError(t, idx.Delete(ctx, 1))
	require.NoError(t, idx.Delete(ctx, 2, 3))
	require.NoError(t, idx.Delete(ctx))

	hits, err := idx.Search(ctx, CandidateQuery{Required: []string{"كلمةفريدة"}, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, hits)

	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBleveIndex_Terms(t *testing.T) {
	idx := newTestIndex(t,
		snippet(1, "الصبر جميل"),
		snippet(2, "الصبر"),
	)

	terms, err := idx.Terms()
	require.NoError(t, err)

	counts := make(map[string]uint64)
	for _, tc := range terms {
		counts[tc.Term] = tc.Count
	}
	assert.Equal(t, uint64(2), counts["الصبر"])
	assert.Equal(t, uint64(1), counts["جميل"])
}

func TestNewBleveIndex_ReopensExisting(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "sub", "bleve")
	ctx := context.Background()

	idx1, err := NewBleveIndex(indexPath)
	require.NoError(t, err)
	require.NoError(t, idx1.Index(ctx, snippet(9, "كلمةباقية")))
	require.NoError(t, idx1.Close())

	_, err = os.Stat(indexPath)
	require.NoError(t, err)

	idx2, err := NewBleveIndex(indexPath)
	require.NoError(t, err)
	defer func() { _ = idx2.Close() }()

	hits, err := idx2.Search(ctx, CandidateQuery{Required: []string{"كلمةباقية"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, hitIDs(hits))
}

func TestBleveIndex_IndexBatchCancelled(t *testing.T) {
	idx := newTestIndex(t, snippet(1, "الصبر"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := idx.IndexBatch(ctx, []*models.Snippet{snippet(2, "العلم")})
	assert.ErrorIs(t, err, context.Canceled)
}
