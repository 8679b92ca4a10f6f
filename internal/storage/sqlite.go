package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/baheth/internal/models"
)

// maxBatchParams keeps IN lists below SQLite's bound parameter limit.
const maxBatchParams = 500

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snippets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id TEXT NOT NULL,
		page_index INTEGER NOT NULL,
		text_snippet TEXT NOT NULL,
		processed_text TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snippets_file_id ON snippets(file_id);
	CREATE INDEX IF NOT EXISTS idx_snippets_location ON snippets(file_id, page_index);

	CREATE TABLE IF NOT EXISTS files (
		file_id TEXT PRIMARY KEY,
		path TEXT,
		title TEXT,
		size INTEGER,
		mod_time TIMESTAMP,
		indexed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS term_statistics (
		term TEXT PRIMARY KEY,
		document_frequency INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS search_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

const snippetColumns = `id, file_id, page_index, text_snippet, COALESCE(processed_text, ''), created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row scanner) (*models.Snippet, error) {
	var s models.Snippet
	if err := row.Scan(&s.ID, &s.FileID, &s.PageIndex, &s.TextSnippet, &s.ProcessedText, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertSnippet inserts a snippet and sets its ID.
func (s *SQLiteStorage) InsertSnippet(ctx context.Context, snippet *models.Snippet) error {
	snippet.CreatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snippets (file_id, page_index, text_snippet, processed_text, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snippet.FileID, snippet.PageIndex, snippet.TextSnippet, snippet.ProcessedText, snippet.CreatedAt,
	)
	if err != nil {
		return err
	}
	snippet.ID, err = res.LastInsertId()
	return err
}

// BatchInsertSnippets inserts multiple snippets in a transaction and sets their IDs.
func (s *SQLiteStorage) BatchInsertSnippets(ctx context.Context, snippets []*models.Snippet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snippets (file_id, page_index, text_snippet, processed_text, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, sn := range snippets {
		sn.CreatedAt = now
		res, err := stmt.ExecContext(ctx, sn.FileID, sn.PageIndex, sn.TextSnippet, sn.ProcessedText, sn.CreatedAt)
		if err != nil {
			return err
		}
		if sn.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSnippet returns a snippet by ID.
func (s *SQLiteStorage) GetSnippet(ctx context.Context, id int64) (*models.Snippet, error) {
	sn, err := scanSnippet(s.db.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snippet %d: %w", id, ErrNotFound)
	}
	return sn, err
}

// GetSnippets returns snippets in the order of ids, skipping unknown ids.
func (s *SQLiteStorage) GetSnippets(ctx context.Context, ids []int64) ([]*models.Snippet, error) {
	byID := make(map[int64]*models.Snippet, len(ids))
	for start := 0; start < len(ids); start += maxBatchParams {
		batch := ids[start:min(start+maxBatchParams, len(ids))]
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+snippetColumns+` FROM snippets WHERE id IN (`+placeholders(len(batch))+`)`,
			args...,
		)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			sn, err := scanSnippet(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			byID[sn.ID] = sn
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}

	out := make([]*models.Snippet, 0, len(byID))
	for _, id := range ids {
		if sn, ok := byID[id]; ok {
			out = append(out, sn)
		}
	}
	return out, nil
}

// SnippetsByFile returns all snippets of a file ordered by page and id.
func (s *SQLiteStorage) SnippetsByFile(ctx context.Context, fileID string) ([]*models.Snippet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE file_id = ? ORDER BY page_index, id`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Snippet
	for rows.Next() {
		sn, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}

// ListSnippets returns a page of snippets ordered by id.
func (s *SQLiteStorage) ListSnippets(ctx context.Context, offset, limit int) ([]*models.Snippet, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets ORDER BY id LIMIT ? OFFSET ?`, limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Snippet
	for rows.Next() {
		sn, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}

// CountSnippets returns the number of snippets with processed text.
func (s *SQLiteStorage) CountSnippets(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snippets WHERE processed_text IS NOT NULL AND processed_text != ''`,
	).Scan(&count)
	return count, err
}

// UpsertFile inserts or replaces a file record.
func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *models.File) error {
	if file.IndexedAt.IsZero() {
		file.IndexedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (file_id, path, title, size, mod_time, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(file_id) DO UPDATE SET
		   path = excluded.path, title = excluded.title, size = excluded.size,
		   mod_time = excluded.mod_time, indexed_at = excluded.indexed_at`,
		file.ID, file.Path, file.Title, file.Size, file.ModTime, file.IndexedAt,
	)
	return err
}

// GetFile returns a file record by ID.
func (s *SQLiteStorage) GetFile(ctx context.Context, id string) (*models.File, error) {
	var f models.File
	err := s.db.QueryRowContext(ctx,
		`SELECT file_id, path, title, size, mod_time, indexed_at FROM files WHERE file_id = ?`, id,
	).Scan(&f.ID, &f.Path, &f.Title, &f.Size, &f.ModTime, &f.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFiles returns all file records ordered by path.
func (s *SQLiteStorage) ListFiles(ctx context.Context) ([]*models.File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_id, path, title, size, mod_time, indexed_at FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.Path, &f.Title, &f.Size, &f.ModTime, &f.IndexedAt); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// CountFiles returns the number of file records.
func (s *SQLiteStorage) CountFiles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&count)
	return count, err
}

// DeleteFile removes a file record and its snippets. It returns the ids of
// the deleted snippets, or ErrNotFound when neither exists.
func (s *SQLiteStorage) DeleteFile(ctx context.Context, fileID string) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM snippets WHERE file_id = ? ORDER BY id`, fileID)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM snippets WHERE file_id = ?`, fileID); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM files WHERE file_id = ?`, fileID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 && len(ids) == 0 {
		return nil, fmt.Errorf("file %s: %w", fileID, ErrNotFound)
	}
	return ids, tx.Commit()
}

// IncrementTermFrequencies adds delta to the document frequency of each
// term. Terms whose frequency drops to zero or below are removed.
func (s *SQLiteStorage) IncrementTermFrequencies(ctx context.Context, terms []string, delta int64) error {
	if len(terms) == 0 || delta == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO term_statistics (term, document_frequency) VALUES (?, ?)
		 ON CONFLICT(term) DO UPDATE SET document_frequency = document_frequency + excluded.document_frequency`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, term := range terms {
		if _, err := stmt.ExecContext(ctx, term, delta); err != nil {
			return err
		}
	}
	if delta < 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM term_statistics WHERE document_frequency <= 0`); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DocumentFrequencies returns the recorded frequency of each known term.
// Unknown terms are absent from the result.
func (s *SQLiteStorage) DocumentFrequencies(ctx context.Context, terms []string) (map[string]int64, error) {
	out := make(map[string]int64, len(terms))
	for start := 0; start < len(terms); start += maxBatchParams {
		batch := terms[start:min(start+maxBatchParams, len(terms))]
		args := make([]any, len(batch))
		for i, t := range batch {
			args[i] = t
		}
		rows, err := s.db.QueryContext(ctx,
			`SELECT term, document_frequency FROM term_statistics WHERE term IN (`+placeholders(len(batch))+`)`,
			args...,
		)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var term string
			var df int64
			if err := rows.Scan(&term, &df); err != nil {
				rows.Close()
				return nil, err
			}
			out[term] = df
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CountTerms returns the number of terms with statistics.
func (s *SQLiteStorage) CountTerms(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM term_statistics`).Scan(&count)
	return count, err
}

// GetMetadata returns the value stored under key.
func (s *SQLiteStorage) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM search_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("metadata %s: %w", key, ErrNotFound)
	}
	return value, err
}

// SetMetadata stores value under key.
func (s *SQLiteStorage) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_metadata (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
