package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fyrsmithlabs/mindmapd/internal/outline"
)

// SQLite stores records in a single sqlite table. Structure and settings are
// kept as JSON text.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS mindmaps (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			structure TEXT NOT NULL,
			settings TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_mindmaps_created_at ON mindmaps(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func (s *SQLite) Create(ctx context.Context, r *Record) error {
	if err := r.check(); err != nil {
		return err
	}

	structure, err := json.Marshal(r.Structure)
	if err != nil {
		return fmt.Errorf("failed to encode structure: %w", err)
	}
	settings, err := json.Marshal(r.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO mindmaps (id, title, content, structure, settings, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Content, string(structure), string(settings), r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert mind map: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mind map: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*Record, error) {
	var (
		r                   Record
		structure, settings string
		created             int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, structure, settings, created_at FROM mindmaps WHERE id = ?`, id,
	).Scan(&r.ID, &r.Title, &r.Content, &structure, &settings, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mind map: %w", err)
	}

	r.Structure = &outline.Structure{}
	if err := json.Unmarshal([]byte(structure), r.Structure); err != nil {
		return nil, fmt.Errorf("failed to decode structure of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(settings), &r.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings of %s: %w", id, err)
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return &r, nil
}

func (s *SQLite) List(ctx context.Context, limit int) ([]Summary, error) {
	query := `SELECT id, title, created_at FROM mindmaps ORDER BY created_at DESC, id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mind maps: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			created int64
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &created); err != nil {
			return nil, fmt.Errorf("failed to scan mind map: %w", err)
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)
