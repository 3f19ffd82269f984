// Package storage provides the durable key/value backends the store persists to.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"workout-planner/internal/storage/migrations"
)

// ErrClosed is returned when a backend is used after Close
var ErrClosed = errors.New("storage closed")

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// SQLite is a key/value store backed by a single SQLite file
type SQLite struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// item is a row of the local_storage table
type item struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// OpenSQLite opens the database at path, creating it and its schema if necessary
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path != MemoryPath {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite needs a single writer, and :memory: is per connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}

	if err := migrate(ctx, db.DB, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLite{db: db, logger: logger}, nil
}

// migrate applies the embedded schema migrations
func migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{logger.Sugar()})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// GetItem returns the value stored under key
func (s *SQLite) GetItem(ctx context.Context, key string) (string, bool, error) {
	if s.db == nil {
		return "", false, ErrClosed
	}
	var it item
	err := s.db.GetContext(ctx, &it, `SELECT key, value FROM local_storage WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %q: %w", key, err)
	}
	return it.Value, true, nil
}

// SetItem stores or replaces the value under key
func (s *SQLite) SetItem(ctx context.Context, key, value string) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// gooseLogger routes goose output through zap
type gooseLogger struct {
	l *zap.SugaredLogger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.l.Debugf(format, v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.l.Fatalf(format, v...)
}
