// Package db is the local SQLite backend. It stores organizations, projects,
// tasks and comments and implements store.Store with the same rejection
// messages as the remote service, plus the client settings table.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/tgienger/orgtrack/internal/store"
)

//go:embed schema.sql
var schema string

var _ store.Store = (*DB)(nil)

// Memory is the path of a private in-memory database
const Memory = ":memory:"

// DB wraps the database connection
type DB struct {
	*sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a DB
type Option func(*DB)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(db *DB) {
		db.logger = logger
	}
}

// WithClock overrides the source of created_at and updated_at values
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		db.now = now
	}
}

// New opens the database at path, creating its directory, and initializes
// the schema. Memory opens a database that lives as long as the DB.
func New(path string, opts ...Option) (*DB, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("db: create data dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", path, err)
	}
	if path == Memory {
		// every connection would otherwise see its own empty database
		conn.SetMaxOpenConns(1)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db: init schema: %w", err)
	}

	db := Wrap(conn, opts...)
	db.logger.Info("database opened", zap.String("path", path))
	return db, nil
}

// Wrap uses an already open connection without touching the schema
func Wrap(conn *sql.DB, opts ...Option) *DB {
	db := &DB{DB: conn, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// DefaultPath returns the database path under the XDG data directory
func DefaultPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "orgtrack", "orgtrack.db"), nil
}

func (db *DB) timestamp() time.Time {
	return db.now().UTC()
}

type scanner interface {
	Scan(dest ...any) error
}

// withTx runs fn in a transaction and commits when it returns nil
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// notFound renders a missing row the way the remote service reports it
func notFound(entity string) string {
	return entity + " matching query does not exist."
}

func mismatch(entity string, id, orgID int64) string {
	return fmt.Sprintf("%s %d does not belong to organization %d", entity, id, orgID)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
