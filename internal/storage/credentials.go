package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nixlim/evman/internal/session"
)

var errClosed = errors.New("credential cache is closed")

// SQLiteCache is a session.Cache persisted in a single SQLite file, the
// terminal counterpart of a browser's localStorage.
type SQLiteCache struct {
	db     *sql.DB
	closed atomic.Bool
}

var _ session.Cache = (*SQLiteCache)(nil)

// NewSQLiteCache opens (creating if needed) the credential database at dbPath.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(slot string) (string, error) {
	if c.closed.Load() {
		return "", errClosed
	}
	var value string
	err := c.db.QueryRow("SELECT value FROM credentials WHERE slot = ?", slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading slot %q: %w", slot, err)
	}
	return value, nil
}

func (c *SQLiteCache) Set(slot, value string) error {
	if c.closed.Load() {
		return errClosed
	}
	_, err := c.db.Exec(`
		INSERT INTO credentials (slot, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, slot, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing slot %q: %w", slot, err)
	}
	return nil
}

func (c *SQLiteCache) Delete(slot string) error {
	if c.closed.Load() {
		return errClosed
	}
	if _, err := c.db.Exec("DELETE FROM credentials WHERE slot = ?", slot); err != nil {
		return fmt.Errorf("deleting slot %q: %w", slot, err)
	}
	return nil
}

// Close closes the database. Calling Close more than once is a no-op.
func (c *SQLiteCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}
