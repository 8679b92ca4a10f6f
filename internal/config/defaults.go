package config

import (
	"time"

	"github.com/hyperjump/baheth/internal/ranking"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "~/.config/baheth/config.yaml"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/baheth/data/db/baheth.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/baheth/data/indices/bleve"
	}
	if cfg.Search.MaxInitialCandidates == 0 {
		cfg.Search.MaxInitialCandidates = 300
	}
	if cfg.Search.MaxFinalResults == 0 {
		cfg.Search.MaxFinalResults = 10
	}
	if cfg.Search.MinReRankScore == 0 {
		cfg.Search.MinReRankScore = 0.35
	}
	if cfg.Search.ReRankTopK == 0 {
		cfg.Search.ReRankTopK = 20
	}
	if cfg.Search.ShortQueryThreshold == 0 {
		cfg.Search.ShortQueryThreshold = 50
	}
	if cfg.Search.VariantLimit == 0 {
		cfg.Search.VariantLimit = 100
	}
	if cfg.Search.ImportantTerms == 0 {
		cfg.Search.ImportantTerms = 5
	}
	if cfg.Cache.MaxSize == 0 {
		cfg.Cache.MaxSize = ranking.DefaultTermCacheSize
	}
	if cfg.Cache.RefreshInterval == 0 {
		cfg.Cache.RefreshInterval = 5 * time.Minute
	}
	if cfg.Dedup.SimilarityThreshold == 0 {
		cfg.Dedup.SimilarityThreshold = 0.85
	}
	if cfg.Indexer.Workers == 0 {
		cfg.Indexer.Workers = 4
	}
	if cfg.Indexer.SnippetMaxRunes == 0 {
		cfg.Indexer.SnippetMaxRunes = 1200
	}

	// The top-level fuzzy section and rerank_top_k feed the ranking config.
	if cfg.Fuzzy != (ranking.FuzzyConfig{}) {
		cfg.Ranking.Fuzzy = cfg.Fuzzy
	}
	if cfg.Ranking.ReRankTopK == 0 {
		cfg.Ranking.ReRankTopK = cfg.Search.ReRankTopK
	}
	cfg.Ranking.ApplyDefaults()
	cfg.Fuzzy = cfg.Ranking.Fuzzy

	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".pptx", ".odp", ".ods"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
