package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/baheth/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_Snippets(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	first := &models.Snippet{FileID: "f1", PageIndex: 0, TextSnippet: "الصبر مفتاح الفرج", ProcessedText: "الصبر مفتاح الفرج"}
	require.NoError(t, store.InsertSnippet(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	batch := []*models.Snippet{
		{FileID: "f1", PageIndex: 1, TextSnippet: "العلم نور", ProcessedText: "العلم نور"},
		{FileID: "f2", PageIndex: 0, TextSnippet: "بلا معالجة"},
	}
	require.NoError(t, store.BatchInsertSnippets(ctx, batch))
	assert.Greater(t, batch[1].ID, batch[0].ID)

	got, err := store.GetSnippet(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "الصبر مفتاح الفرج", got.TextSnippet)

	_, err = store.GetSnippet(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	ordered, err := store.GetSnippets(ctx, []int64{batch[1].ID, 9999, first.ID})
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, batch[1].ID, ordered[0].ID, "input order is kept")
	assert.Equal(t, first.ID, ordered[1].ID)
	assert.Empty(t, ordered[0].ProcessedText)

	count, err := store.CountSnippets(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "only snippets with processed text count")

	byFile, err := store.SnippetsByFile(ctx, "f1")
	require.NoError(t, err)
	assert.Len(t, byFile, 2)
}

func TestSQLiteStorage_GetSnippetsManyIDs(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	var snippets []*models.Snippet
	for i := 0; i < maxBatchParams+20; i++ {
		snippets = append(snippets, &models.Snippet{FileID: "f", PageIndex: i, TextSnippet: "نص", ProcessedText: "نص"})
	}
	require.NoError(t, store.BatchInsertSnippets(ctx, snippets))

	ids := make([]int64, len(snippets))
	for i, s := range snippets {
		ids[len(ids)-1-i] = s.ID
	}
	got, err := store.GetSnippets(ctx, ids)
	require.NoError(t, err)
	require.Len(t, got, len(ids))
	assert.Equal(t, ids[0], got[0].ID)
}

func TestSQLiteStorage_Files(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	file := &models.File{ID: "f1", Path: "/docs/a.pdf", Title: "a.pdf", Size: 10, ModTime: time.Now()}
	require.NoError(t, store.UpsertFile(ctx, file))
	file.Size = 20
	require.NoError(t, store.UpsertFile(ctx, file))

	got, err := store.GetFile(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Size)

	files, err := store.ListFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	n, err := store.CountFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetFile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorage_DeleteFile(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertFile(ctx, &models.File{ID: "f1", Path: "a.txt"}))
	a := &models.Snippet{FileID: "f1", TextSnippet: "a", ProcessedText: "a"}
	b := &models.Snippet{FileID: "f1", PageIndex: 1, TextSnippet: "b", ProcessedText: "b"}
	other := &models.Snippet{FileID: "f2", TextSnippet: "c", ProcessedText: "c"}
	require.NoError(t, store.BatchInsertSnippets(ctx, []*models.Snippet{a, b, other}))

	ids, err := store.DeleteFile(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, ids)

	remaining, err := store.GetSnippets(ctx, []int64{a.ID, b.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)

	_, err = store.DeleteFile(ctx, "f1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorage_TermStatistics(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.IncrementTermFrequencies(ctx, []string{"الصبر", "الفرج"}, 1))
	require.NoError(t, store.IncrementTermFrequencies(ctx, []string{"الصبر"}, 2))

	df, err := store.DocumentFrequencies(ctx, []string{"الصبر", "الفرج", "مجهول"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"الصبر": 3, "الفرج": 1}, df)

	require.NoError(t, store.IncrementTermFrequencies(ctx, []string{"الفرج"}, -1))
	n, err := store.CountTerms(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "terms at zero are removed")

	require.NoError(t, store.IncrementTermFrequencies(ctx, nil, 1))
}

func TestSQLiteStorage_Metadata(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.GetMetadata(ctx, MetadataTotalDocuments)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SetMetadata(ctx, MetadataTotalDocuments, "10"))
	require.NoError(t, store.SetMetadata(ctx, MetadataTotalDocuments, "12"))
	v, err := store.GetMetadata(ctx, MetadataTotalDocuments)
	require.NoError(t, err)
	assert.Equal(t, "12", v)
}

func TestNewSQLiteStorage_createsDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "baheth.db")
	store, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.FileExists(t, path)
}

func TestSQLiteStorage_ListSnippets(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		s := &models.Snippet{FileID: "f", PageIndex: i, TextSnippet: "نص", ProcessedText: "نص"}
		require.NoError(t, store.InsertSnippet(ctx, s))
		ids = append(ids, s.ID)
	}

	page, err := store.ListSnippets(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	page, err = store.ListSnippets(ctx, 4, 10)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, err = store.ListSnippets(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
}
