package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/util"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key      TEXT PRIMARY KEY,
	value    BLOB NOT NULL,
	revision INTEGER NOT NULL
);`

// SQLite stores the collection as one row of a kv table.
type SQLite struct {
	db  *sql.DB
	key string
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(ctx context.Context, path, key string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is not set")
	}
	path = util.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps the revision check and the write in a single
	// serialized transaction.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, key: key}, nil
}

func (s *SQLite) Name() string { return BackendSQLite }

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) ReadAll(ctx context.Context) (catalog.Snapshot, error) {
	data, rev, err := s.get(ctx, s.db)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	books, err := decode(data)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	return catalog.Snapshot{Books: books, Revision: strconv.FormatInt(rev, 10)}, nil
}

func (s *SQLite) WriteAll(ctx context.Context, books []catalog.Book, expect string) (string, error) {
	data, err := encode(books)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", persistErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, current, err := s.get(ctx, tx)
	if err != nil {
		return "", err
	}
	if expect != "" && expect != strconv.FormatInt(current, 10) {
		return "", conflictErr(expect, strconv.FormatInt(current, 10))
	}

	next := current + 1
	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv (key, value, revision) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, revision = excluded.revision`,
		s.key, data, next)
	if err != nil {
		return "", persistErr("writing collection", err)
	}
	if err := tx.Commit(); err != nil {
		return "", persistErr("commit", err)
	}
	return strconv.FormatInt(next, 10), nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// get returns the stored payload and revision; a missing row is revision 0.
func (s *SQLite) get(ctx context.Context, q queryer) ([]byte, int64, error) {
	var (
		data []byte
		rev  int64
	)
	err := q.QueryRowContext(ctx, `SELECT value, revision FROM kv WHERE key = ?`, s.key).Scan(&data, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, persistErr("reading collection", err)
	}
	return data, rev, nil
}
