package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/config"
	"github.com/hyperjump/baheth/internal/indexer"
	"github.com/hyperjump/baheth/internal/keyword"
	"github.com/hyperjump/baheth/internal/ranking"
	"github.com/hyperjump/baheth/internal/search"
	"github.com/hyperjump/baheth/internal/storage"
	"github.com/hyperjump/baheth/internal/termstats"
)

// Components holds initialized services.
type Components struct {
	Storage      *storage.SQLiteStorage
	KeywordIndex *keyword.BleveIndex
	Stats        *termstats.Stats
	Suggester    *keyword.Suggester
	Engine       *search.Engine
	Indexer      *indexer.Indexer
}

// Close releases the keyword index and the database.
func (c *Components) Close() {
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// statusPaths lists the files whose size counts as disk usage.
func statusPaths(cfg *config.Config) []string {
	return append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.BleveIndexPath)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.BleveIndexPath), 0o755); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	keywordIndex.WithLogger(logger)

	stats := termstats.NewStats(store, cfg.Cache.RefreshInterval).WithLogger(logger)
	ranker := ranking.NewRanker(&cfg.Ranking).WithLogger(logger)
	terms, err := ranking.NewTermRanker(cfg.Cache.MaxSize)
	if err != nil {
		_ = keywordIndex.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize term cache: %w", err)
	}
	suggester := keyword.NewSuggester(keywordIndex)

	engine := search.NewEngine(store, keywordIndex, stats, ranker, terms, &cfg.Search).
		WithDeduplicator(search.NewDeduplicator(cfg.Dedup)).
		WithSuggester(suggester).
		WithLogger(logger)

	idx := indexer.NewIndexer(store, keywordIndex, stats, &cfg.Indexer,
		indexer.WithLogger(logger),
		indexer.WithSuggester(suggester),
		indexer.WithExtensions(cfg.Watch.Extensions),
	)

	return &Components{
		Storage:      store,
		KeywordIndex: keywordIndex,
		Stats:        stats,
		Suggester:    suggester,
		Engine:       engine,
		Indexer:      idx,
	}, nil
}
