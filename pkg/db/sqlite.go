package db

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a SQLite connection holding profile documents and
// conversation records. Profile documents live in a JSON column with a
// version counter used for optimistic-concurrency writes.
type Store struct {
	db     *sqlx.DB
	logger *log.Logger
}

func NewStore(ctx context.Context, logger *log.Logger, dbPath string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// A single connection serializes writes and keeps :memory: databases
	// from being created per pooled connection.
	db.SetMaxOpenConns(1)

	// WAL mode for better concurrency under overlapping chat turns.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{db: db, logger: logger}

	if err := RunMigrations(db.DB, logger); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sqlx.DB instance.
func (s *Store) DB() *sqlx.DB {
	return s.db
}
