// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlite implements the conversion journal on an embedded SQLite
// database. Timestamps are stored as Unix microseconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leseb/tabconv/pkg/storage"

	_ "modernc.org/sqlite"
)

func init() {
	storage.Providers.Register("sqlite", func(ctx context.Context, params map[string]string) (storage.Store, error) {
		path := params["path"]
		if path == "" {
			path = "tabconv.db"
		}
		return New(ctx, path)
	})
}

// Store is a SQLite-backed journal.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path. ":memory:" gives a private
// in-memory database.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL DEFAULT '',
			extension TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			row_count INTEGER NOT NULL DEFAULT 0,
			column_count INTEGER NOT NULL DEFAULT 0,
			input_bytes INTEGER NOT NULL DEFAULT 0,
			output_bytes INTEGER NOT NULL DEFAULT 0,
			result_file_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			duration_us INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created ON conversions(created_at, id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite create tables: %w", err)
		}
	}
	return nil
}

const selectColumns = `SELECT id, filename, extension, format, status, error, row_count, column_count,
	input_bytes, output_bytes, result_file_id, created_at, duration_us FROM conversions`

func (s *Store) SaveConversion(ctx context.Context, c *storage.Conversion) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversions (id, filename, extension, format, status, error,
		     row_count, column_count, input_bytes, output_bytes, result_file_id, created_at, duration_us)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Filename, c.Extension, c.Format, string(c.Status), c.Error, c.Rows, c.Columns,
		c.InputBytes, c.OutputBytes, c.ResultFileID, c.CreatedAt.UnixMicro(), c.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("save conversion: %w", err)
	}
	return nil
}

func (s *Store) GetConversion(ctx context.Context, id string) (*storage.Conversion, error) {
	c, err := scanConversion(s.db.QueryRowContext(ctx, selectColumns+` WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversion: %w", err)
	}
	return c, nil
}

func (s *Store) ListConversions(ctx context.Context, after string, limit int, order string) ([]*storage.Conversion, bool, error) {
	limit, order = storage.NormalizePage(limit, order)

	query := selectColumns
	var args []interface{}

	if after != "" {
		var (
			cursorAt int64
			cursorID string
		)
		err := s.db.QueryRowContext(ctx,
			`SELECT created_at, id FROM conversions WHERE id=?`, after).Scan(&cursorAt, &cursorID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("%w: %s", storage.ErrNotFound, after)
		}
		if err != nil {
			return nil, false, fmt.Errorf("list conversions: %w", err)
		}
		cmp := "<"
		if order == "asc" {
			cmp = ">"
		}
		query += fmt.Sprintf(" WHERE created_at %s ? OR (created_at = ? AND id %s ?)", cmp, cmp)
		args = append(args, cursorAt, cursorAt, cursorID)
	}

	query += fmt.Sprintf(" ORDER BY created_at %s, id %s LIMIT ?", order, order)
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var out []*storage.Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	return out, hasMore, nil
}

func (s *Store) DeleteConversion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete conversion: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanConversion(row scannable) (*storage.Conversion, error) {
	var (
		c          storage.Conversion
		status     string
		createdUS  int64
		durationUS int64
	)
	err := row.Scan(&c.ID, &c.Filename, &c.Extension, &c.Format, &status, &c.Error,
		&c.Rows, &c.Columns, &c.InputBytes, &c.OutputBytes, &c.ResultFileID,
		&createdUS, &durationUS)
	if err != nil {
		return nil, err
	}
	c.Status = storage.Status(status)
	c.CreatedAt = time.UnixMicro(createdUS).UTC()
	c.Duration = time.Duration(durationUS) * time.Microsecond
	return &c, nil
}
