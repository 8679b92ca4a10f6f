// Package indexer turns files and raw pages into stored, keyword-indexed
// snippets and keeps the term statistics in step.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/config"
	"github.com/hyperjump/baheth/internal/extract"
	"github.com/hyperjump/baheth/internal/fileid"
	"github.com/hyperjump/baheth/internal/keyword"
	"github.com/hyperjump/baheth/internal/models"
	"github.com/hyperjump/baheth/internal/storage"
	"github.com/hyperjump/baheth/internal/termstats"
)

// Indexer writes snippets to storage and the keyword index.
type Indexer struct {
	storage    storage.Storage
	index      keyword.Index
	stats      *termstats.Stats
	extractor  *extract.Extractor
	chunker    *Chunker
	suggester  *keyword.Suggester
	workers    int
	extensions []string
	logger     *zap.Logger

	// writeMu serializes corpus changes; extraction runs outside it.
	writeMu sync.Mutex
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// WithSuggester registers a suggester whose term dictionary is invalidated
// after every change.
func WithSuggester(s *keyword.Suggester) IndexerOption {
	return func(idx *Indexer) { idx.suggester = s }
}

// WithExtensions limits directory indexing to the given extensions.
func WithExtensions(exts []string) IndexerOption {
	return func(idx *Indexer) { idx.extensions = exts }
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(
	storage storage.Storage,
	index keyword.Index,
	stats *termstats.Stats,
	cfg *config.IndexerConfig,
	opts ...IndexerOption,
) *Indexer {
	workers, maxRunes := 0, 0
	if cfg != nil {
		workers, maxRunes = cfg.Workers, cfg.SnippetMaxRunes
	}
	if workers <= 0 {
		workers = 4
	}
	idx := &Indexer{
		storage:   storage,
		index:     index,
		stats:     stats,
		extractor: extract.NewExtractor(),
		chunker:   NewChunker(maxRunes),
		workers:   workers,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Result describes one indexed file or page set.
type Result struct {
	FileID   string `json:"file_id"`
	Path     string `json:"path,omitempty"`
	Snippets int    `json:"snippets"`
	Skipped  bool   `json:"skipped,omitempty"`
}

// IndexFile extracts, chunks and indexes the file at path. The file id is
// derived from the absolute path, so re-indexing replaces the earlier
// snippets. A file whose size and modification time match the stored record
// is skipped.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}

	id := fileid.FileID(absPath)
	if idx.unchanged(ctx, id, absPath, info) {
		idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
		return &Result{FileID: id, Path: absPath, Skipped: true}, nil
	}

	pages, err := idx.extractor.ExtractPages(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", absPath, err)
	}
	file := &models.File{
		ID:      id,
		Path:    absPath,
		Title:   filepath.Base(absPath),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	n, err := idx.replace(ctx, file, pages)
	if err != nil {
		return nil, err
	}
	idx.logger.Info("indexed file",
		zap.String("path", absPath),
		zap.String("file_id", id),
		zap.Int("pages", len(pages)),
		zap.Int("snippets", n))
	return &Result{FileID: id, Path: absPath, Snippets: n}, nil
}

func (idx *Indexer) unchanged(ctx context.Context, id, absPath string, info os.FileInfo) bool {
	f, err := idx.storage.GetFile(ctx, id)
	if err != nil {
		return false
	}
	return f.Path == absPath && f.Size == info.Size() && f.ModTime.Equal(info.ModTime())
}

// IndexSnippets ingests raw pages that did not come from a file. An empty
// fileID gets a generated one; an existing fileID is replaced.
func (idx *Indexer) IndexSnippets(ctx context.Context, input *models.SnippetInput) (*Result, error) {
	if input == nil || len(input.Pages) == 0 {
		return nil, errors.New("no pages to index")
	}
	id := input.FileID
	if id == "" {
		id = uuid.New().String()
	}
	title := input.Title
	if title == "" {
		title = id
	}
	file := &models.File{ID: id, Title: title, ModTime: time.Now()}
	n, err := idx.replace(ctx, file, input.Pages)
	if err != nil {
		return nil, err
	}
	idx.logger.Info("indexed snippets", zap.String("file_id", id), zap.Int("snippets", n))
	return &Result{FileID: id, Snippets: n}, nil
}

// replace swaps the snippets of file for ones built from pages. The file
// row is written last: a failed run leaves no record, so the next scan does
// not take the file for unchanged and indexes it again.
func (idx *Indexer) replace(ctx context.Context, file *models.File, pages []models.Page) (int, error) {
	var snippets []*models.Snippet
	for _, p := range pages {
		for _, text := range idx.chunker.Chunk(p.Text) {
			snippets = append(snippets, &models.Snippet{
				FileID:        file.ID,
				PageIndex:     p.Index,
				TextSnippet:   text,
				ProcessedText: Preprocess(text),
			})
		}
	}

	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	if err := idx.remove(ctx, file.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("remove previous snippets: %w", err)
	}
	err := idx.insert(ctx, file, snippets)
	idx.corpusChanged(ctx)
	if err != nil {
		return 0, err
	}
	return len(snippets), nil
}

// insert stores snippets, indexes them, counts their terms and finally
// records file. On failure the completed steps are undone.
func (idx *Indexer) insert(ctx context.Context, file *models.File, snippets []*models.Snippet) (err error) {
	var stored, counted bool
	defer func() {
		if err != nil && stored {
			idx.discard(ctx, file.ID, snippets, counted)
		}
	}()

	if len(snippets) > 0 {
		if err := idx.storage.BatchInsertSnippets(ctx, snippets); err != nil {
			return fmt.Errorf("store snippets: %w", err)
		}
		stored = true
		if err := idx.index.IndexBatch(ctx, snippets); err != nil {
			return fmt.Errorf("index snippets: %w", err)
		}
		if err := idx.adjustFrequencies(ctx, snippets, 1); err != nil {
			return err
		}
		counted = true
	}
	if err := idx.storage.UpsertFile(ctx, file); err != nil {
		return fmt.Errorf("store file: %w", err)
	}
	return nil
}

// discard rolls back a partial insert. Failures are logged; a leftover
// snippet row without a file record is cleared by the next remove.
func (idx *Indexer) discard(ctx context.Context, id string, snippets []*models.Snippet, counted bool) {
	log := idx.logger.With(zap.String("file_id", id))
	if counted {
		if err := idx.adjustFrequencies(ctx, snippets, -1); err != nil {
			log.Warn("undo term frequencies failed", zap.Error(err))
		}
	}
	ids, err := idx.storage.DeleteFile(ctx, id)
	if err != nil {
		log.Warn("undo stored snippets failed", zap.Error(err))
		return
	}
	if err := idx.index.Delete(ctx, ids...); err != nil {
		log.Warn("undo keyword index failed", zap.Error(err))
	}
	log.Debug("indexer discarded partial insert", zap.Int("snippets", len(ids)))
}

// DeleteFile removes a file's snippets from storage and the keyword index
// and decrements the document frequencies they contributed. It returns
// storage.ErrNotFound for unknown files.
func (idx *Indexer) DeleteFile(ctx context.Context, id string) error {
	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	if err := idx.remove(ctx, id); err != nil {
		return err
	}
	idx.corpusChanged(ctx)
	idx.logger.Info("deleted file", zap.String("file_id", id))
	return nil
}

// DeletePath deletes the file indexed from path.
func (idx *Indexer) DeletePath(ctx context.Context, path string) error {
	return idx.DeleteFile(ctx, fileid.FileID(path))
}

// remove must be called with writeMu held.
func (idx *Indexer) remove(ctx context.Context, id string) error {
	snippets, err := idx.storage.SnippetsByFile(ctx, id)
	if err != nil {
		return fmt.Errorf("load snippets: %w", err)
	}
	if err := idx.adjustFrequencies(ctx, snippets, -1); err != nil {
		return err
	}
	ids, err := idx.storage.DeleteFile(ctx, id)
	if err != nil {
		return err
	}
	if err := idx.index.Delete(ctx, ids...); err != nil {
		return fmt.Errorf("delete from keyword index: %w", err)
	}
	idx.logger.Debug("indexer removed snippets", zap.String("file_id", id), zap.Int("snippets", len(ids)))
	return nil
}

// adjustFrequencies adds delta to the document frequency of every distinct
// token of each snippet.
func (idx *Indexer) adjustFrequencies(ctx context.Context, snippets []*models.Snippet, delta int64) error {
	counts := make(map[string]int64)
	for _, s := range snippets {
		for _, t := range distinctTokens(s.TextSnippet) {
			counts[t]++
		}
	}
	// Group terms by count so each distinct delta is one batched update.
	byCount := make(map[int64][]string)
	for term, n := range counts {
		byCount[n] = append(byCount[n], term)
	}
	for n, terms := range byCount {
		if err := idx.storage.IncrementTermFrequencies(ctx, terms, n*delta); err != nil {
			return fmt.Errorf("update term frequencies: %w", err)
		}
	}
	return nil
}

func (idx *Indexer) corpusChanged(ctx context.Context) {
	if idx.stats != nil {
		if _, err := idx.stats.Recount(ctx); err != nil {
			idx.logger.Warn("recount documents failed", zap.Error(err))
			idx.stats.Invalidate()
		}
	}
	if idx.suggester != nil {
		idx.suggester.Invalidate()
	}
}

// Status reports corpus statistics. paths are the on-disk locations whose
// sizes are summed into DiskUsageBytes.
func (idx *Indexer) Status(ctx context.Context, paths ...string) (*models.StatusResponse, error) {
	var (
		st  models.StatusResponse
		err error
	)
	if st.Snippets, err = idx.storage.CountSnippets(ctx); err != nil {
		return nil, fmt.Errorf("count snippets: %w", err)
	}
	if st.Files, err = idx.storage.CountFiles(ctx); err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	if st.Terms, err = idx.storage.CountTerms(ctx); err != nil {
		return nil, fmt.Errorf("count terms: %w", err)
	}
	if st.IndexedDocs, err = idx.index.DocCount(); err != nil {
		return nil, fmt.Errorf("count indexed snippets: %w", err)
	}
	if idx.stats != nil {
		st.TotalDocuments = idx.stats.TotalDocuments(ctx)
	}
	if len(paths) > 0 {
		if st.DiskUsageBytes, err = storage.DiskUsageBytes(paths...); err != nil {
			idx.logger.Warn("disk usage failed", zap.Error(err))
		}
	}
	return &st, nil
}

// Summary counts the outcome of a directory run.
type Summary struct {
	Indexed  int `json:"indexed"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Snippets int `json:"snippets"`
}

// IndexDirectory indexes every supported file under dir on a worker pool.
// Failures are logged and counted; the returned error joins them.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string, recursive bool) (*Summary, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	paths, err := idx.collect(absDir, recursive)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(idx.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		sum  Summary
		errs []error
	)
	record := func(res *Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			sum.Failed++
			errs = append(errs, err)
		case res.Skipped:
			sum.Skipped++
		default:
			sum.Indexed++
			sum.Snippets += res.Snippets
		}
	}

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		path := path
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			res, err := idx.IndexFile(ctx, path)
			if err != nil {
				idx.logger.Warn("index file failed", zap.String("path", path), zap.Error(err))
			}
			record(res, err)
		}); err != nil {
			wg.Done()
			record(nil, fmt.Errorf("submit %s: %w", path, err))
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	idx.logger.Info("indexed directory",
		zap.String("dir", absDir),
		zap.Int("indexed", sum.Indexed),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed))
	return &sum, errors.Join(errs...)
}

// collect lists the supported regular files under dir.
func (idx *Indexer) collect(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && (!recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !idx.Accepts(path) {
			return nil
		}
		// Resolve symlinks so only regular files are indexed.
		if finfo, err := os.Stat(path); err != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// Accepts reports whether path has an extractable extension that is also
// in the configured extension list, if any.
func (idx *Indexer) Accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !extract.Supported(ext) {
		return false
	}
	return len(idx.extensions) == 0 || extensionAllowed(ext, idx.extensions)
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
