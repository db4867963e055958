// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recent keeps the list of recently produced conversion outputs.
package recent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docconvert/pkg/types"
)

// ErrNotFound is returned by Remove for unknown record ids.
var ErrNotFound = errors.New("record not found")

const defaultMaxRecords = 10

// Record is one produced output.
type Record struct {
	ID          string    `json:"id" yaml:"id"`
	FileName    string    `json:"file_name" yaml:"file_name"`
	Path        string    `json:"path" yaml:"path"`
	FileType    string    `json:"file_type" yaml:"file_type"`
	Size        int64     `json:"size" yaml:"size"`
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}

// Store persists records in SQLite, keeping at most MaxRecords.
type Store struct {
	db         *sql.DB
	maxRecords int
	log        *slog.Logger
	now        func() time.Time
}

// NewStore opens or creates the database at cfg.DBPath.
func NewStore(cfg types.RecentConfig, logger *slog.Logger) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("recent database path is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxRecords := cfg.MaxRecords
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}

	s := &Store{
		db:         db,
		maxRecords: maxRecords,
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			file_name TEXT NOT NULL,
			path TEXT NOT NULL,
			file_type TEXT,
			size INTEGER,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_converted_at ON conversions(converted_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NotifyCompleted records path as a new conversion.
func (s *Store) NotifyCompleted(path string) error {
	_, err := s.Add(context.Background(), path)
	return err
}

// Add records path at the head of the list and drops the oldest records
// beyond the limit.
func (s *Store) Add(ctx context.Context, path string) (Record, error) {
	rec := Record{
		ID:          uuid.NewString(),
		FileName:    filepath.Base(path),
		Path:        path,
		ConvertedAt: s.now(),
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		rec.Size = info.Size()
		rec.FileType = strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversions (id, file_name, path, file_type, size, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.FileName, rec.Path, rec.FileType, rec.Size,
		rec.ConvertedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("inserting record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM conversions WHERE rowid NOT IN (
			SELECT rowid FROM conversions ORDER BY rowid DESC LIMIT ?
		)`, s.maxRecords)
	if err != nil {
		return Record{}, fmt.Errorf("pruning records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("committing record: %w", err)
	}
	s.log.Debug("recorded conversion", "path", path, "id", rec.ID)
	return rec, nil
}

// List returns records newest first, skipping those whose file no longer
// exists.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, path, file_type, size, converted_at
		 FROM conversions ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec       Record
			fileType  sql.NullString
			size      sql.NullInt64
			converted string
		)
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.Path, &fileType, &size, &converted); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.FileType = fileType.String
		rec.Size = size.Int64
		if rec.ConvertedAt, err = time.Parse(time.RFC3339Nano, converted); err != nil {
			return nil, fmt.Errorf("parsing timestamp of %s: %w", rec.ID, err)
		}
		if _, err := os.Stat(rec.Path); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Remove deletes the record with id.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
