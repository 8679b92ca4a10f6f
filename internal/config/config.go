// Package config provides configuration loading and structs for the baheth server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/baheth/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool                  `yaml:"debug"`
	Server  ServerConfig          `yaml:"server"`
	Storage StorageConfig         `yaml:"storage"`
	Search  SearchConfig          `yaml:"search"`
	Fuzzy   ranking.FuzzyConfig   `yaml:"fuzzy"`
	Cache   CacheConfig           `yaml:"cache"`
	Dedup   DedupConfig           `yaml:"dedup"`
	Ranking ranking.RankingConfig `yaml:"ranking"`
	Indexer IndexerConfig         `yaml:"indexer"`
	Watch   WatchConfig           `yaml:"watch"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds paths for the database and the keyword index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// SearchConfig holds candidate retrieval and result limits.
type SearchConfig struct {
	MaxInitialCandidates int     `yaml:"max_initial_candidates"`
	MaxFinalResults      int     `yaml:"max_final_results"`
	MinReRankScore       float64 `yaml:"min_rerank_score"`
	ReRankTopK           int     `yaml:"rerank_top_k"`
	// ShortQueryThreshold is the row count under which short queries also
	// get fuzzy candidates.
	ShortQueryThreshold int `yaml:"short_query_threshold"`
	VariantLimit        int `yaml:"variant_limit"`
	// ImportantTerms is how many top ranked terms must all match.
	ImportantTerms int `yaml:"important_terms"`
}

// CacheConfig sizes the term ranking cache and the document count refresh.
type CacheConfig struct {
	MaxSize         int           `yaml:"max_size"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DedupConfig controls the near-duplicate pass.
type DedupConfig struct {
	SimilarityEnabled   bool    `yaml:"similarity_enabled"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// IndexerConfig holds ingestion settings.
type IndexerConfig struct {
	Workers         int `yaml:"workers"`
	SnippetMaxRunes int `yaml:"snippet_max_runes"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// LoadOrDefault loads path, or returns the defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Save writes the config to path, creating its directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir,
// "~/" is the home directory and other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return filepath.Join(home, path)
}

// ExpandHome resolves a leading "~/" against the home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
