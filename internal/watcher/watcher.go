// Package watcher keeps the index in step with watched directories: created
// and modified files are re-indexed after a quiet period, removed and renamed
// files are deleted.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/config"
	"github.com/hyperjump/baheth/internal/indexer"
	"github.com/hyperjump/baheth/internal/storage"
)

// DefaultDebounce is the quiet period before a changed file is re-indexed.
const DefaultDebounce = 500 * time.Millisecond

// Handler applies file changes to the index. *indexer.Indexer implements it.
type Handler interface {
	IndexFile(ctx context.Context, path string) (*indexer.Result, error)
	DeletePath(ctx context.Context, path string) error
}

// Watcher watches directories and forwards file changes to a Handler.
type Watcher struct {
	handler     Handler
	extensions  []string
	recursive   bool
	debounce    time.Duration
	initialSync bool
	logger      *zap.Logger

	mu      sync.Mutex
	roots   []string
	fsw     *fsnotify.Watcher
	ctx     context.Context
	pending map[string]*time.Timer
	done    chan struct{}
	started bool
	stop    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInitialSync indexes the existing files of every root on start.
func WithInitialSync(enabled bool) Option {
	return func(w *Watcher) { w.initialSync = enabled }
}

// New creates a watcher for the directories in cfg.
func New(cfg config.WatchConfig, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		handler:    handler,
		extensions: cfg.Extensions,
		recursive:  cfg.RecursiveOrDefault(),
		debounce:   DefaultDebounce,
		logger:     zap.NewNop(),
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, dir := range cfg.Directories {
		if abs, err := filepath.Abs(dir); err == nil {
			w.roots = append(w.roots, filepath.Clean(abs))
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Events are handled until ctx is cancelled or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("watcher already started")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.ctx = ctx
	for _, root := range w.roots {
		if err := w.addRootLocked(root); err != nil {
			_ = fsw.Close()
			w.fsw = nil
			w.mu.Unlock()
			return err
		}
	}
	w.started = true
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()

	w.logger.Info("watching directories",
		zap.Strings("roots", roots),
		zap.Strings("extensions", w.extensions),
		zap.Bool("recursive", w.recursive))

	if w.initialSync {
		for _, root := range roots {
			go w.syncDirectory(root)
		}
	}
	go w.run(ctx)
	return nil
}

// Stop stops watching and cancels pending re-indexes.
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		if w.fsw != nil {
			_ = w.fsw.Close()
		}
	})
}

// Done is closed once the watcher stops.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if !w.underRoot(path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))

	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancelPending(path)
		if w.matchExtension(path) {
			w.remove(path)
		}
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) {
				w.handleNewDirectory(path)
			}
			return
		}
		if w.matchExtension(path) {
			w.schedule(path)
		}
	}
}

func (w *Watcher) remove(path string) {
	err := w.handler.DeletePath(w.context(), path)
	switch {
	case err == nil:
		w.logger.Info("removed deleted file", zap.String("path", path))
	case errors.Is(err, storage.ErrNotFound):
		w.logger.Debug("deleted file was not indexed", zap.String("path", path))
	default:
		w.logger.Warn("remove file failed", zap.String("path", path), zap.Error(err))
	}
}

func (w *Watcher) index(path string) {
	res, err := w.handler.IndexFile(w.context(), path)
	if err != nil {
		w.logger.Warn("index file failed", zap.String("path", path), zap.Error(err))
		return
	}
	if !res.Skipped {
		w.logger.Info("re-indexed file", zap.String("path", path), zap.Int("snippets", res.Snippets))
	}
}

func (w *Watcher) context() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return context.Background()
	}
	return w.ctx
}

// schedule (re)starts the quiet period for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.pending[path] != t {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case <-w.done:
			return
		default:
		}
		w.index(path)
	})
	w.pending[path] = t
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// handleNewDirectory watches a directory created or moved under a root and
// indexes the files already inside it.
func (w *Watcher) handleNewDirectory(dir string) {
	if !w.recursive || isHidden(filepath.Base(dir)) {
		return
	}
	w.mu.Lock()
	err := w.addTreeLocked(dir)
	w.mu.Unlock()
	if err != nil {
		w.logger.Warn("watch new directory failed", zap.String("path", dir), zap.Error(err))
		return
	}
	w.syncDirectory(dir)
}

func (w *Watcher) syncDirectory(root string) {
	w.logger.Debug("watcher syncing directory", zap.String("root", root))
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		select {
		case <-w.done:
			return filepath.SkipAll
		default:
		}
		if d.IsDir() {
			if path != root && (!w.recursive || isHidden(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.matchExtension(path) {
			w.index(path)
		}
		return nil
	})
}

// AddDirectory starts watching another root. Existing files are indexed when
// syncExisting is set.
func (w *Watcher) AddDirectory(root string, syncExisting bool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)

	w.mu.Lock()
	for _, r := range w.roots {
		if r == abs {
			w.mu.Unlock()
			return nil
		}
	}
	if w.fsw != nil {
		if err := w.addRootLocked(abs); err != nil {
			w.mu.Unlock()
			return err
		}
	}
	w.roots = append(w.roots, abs)
	started := w.started
	w.mu.Unlock()

	w.logger.Info("watching directory", zap.String("path", abs))
	if started && syncExisting {
		go w.syncDirectory(abs)
	}
	return nil
}

// Directories returns the watched roots.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// addRootLocked creates a missing root and watches it.
func (w *Watcher) addRootLocked(root string) error {
	if _, err := os.Stat(root); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return err
		}
	}
	if !w.recursive {
		return w.fsw.Add(root)
	}
	return w.addTreeLocked(root)
}

func (w *Watcher) addTreeLocked(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) underRoot(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.roots {
		if root == path || inDir(root, path) {
			return true
		}
	}
	return false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func (w *Watcher) matchExtension(path string) bool {
	return matchExtension(path, w.extensions)
}

// matchExtension reports whether path has one of extensions. An empty list
// matches everything.
func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
