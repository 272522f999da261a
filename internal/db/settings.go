package db

import (
	"context"
	"fmt"
)

// Settings is client-local key-value storage in the settings table. It
// satisfies tenant.Preferences.
type Settings struct {
	db *DB
}

func (db *DB) Settings() *Settings {
	return &Settings{db: db}
}

// Get retrieves a setting value by key
func (s *Settings) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if isNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("db: get setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set sets a setting value
func (s *Settings) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("db: set setting %s: %w", key, err)
	}
	return nil
}

// Clear removes a setting
func (s *Settings) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("db: clear setting %s: %w", key, err)
	}
	return nil
}
