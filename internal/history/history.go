// Package history keeps a SQLite log of generated QR codes.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("qr code not found")

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Record describes one generated code.
type Record struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Style       string    `json:"style"`
	Format      string    `json:"format"`
	URL         string    `json:"url"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is a SQLite-backed history. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

const createCodesTable = `
CREATE TABLE IF NOT EXISTS qr_codes (
    id TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    style TEXT NOT NULL,
    format TEXT NOT NULL DEFAULT 'png',
    url TEXT NOT NULL DEFAULT '',
    storage_key TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);
`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_qr_codes_created_at ON qr_codes(created_at);
`

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, stmt := range []string{createCodesTable, createIndexes} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save inserts r. A zero CreatedAt is set to now.
func (s *Store) Save(ctx context.Context, r Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	const query = `
		INSERT INTO qr_codes (id, content_type, style, format, url, storage_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.ContentType, r.Style, r.Format, r.URL, r.StorageKey, r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save qr code: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. limit is clamped to
// [1, MaxLimit] and defaults to DefaultLimit when not positive.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	const query = `
		SELECT id, content_type, style, format, url, storage_key, created_at
		FROM qr_codes
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}
	return records, nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	const query = `
		SELECT id, content_type, style, format, url, storage_key, created_at
		FROM qr_codes WHERE id = ?
	`
	r, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM qr_codes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete qr code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete qr code: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		r       Record
		created int64
	)
	if err := row.Scan(&r.ID, &r.ContentType, &r.Style, &r.Format, &r.URL, &r.StorageKey, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan qr code: %w", err)
	}
	r.CreatedAt = time.UnixMilli(created).UTC()
	return r, nil
}
