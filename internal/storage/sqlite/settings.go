// ABOUTME: Key/value storage for the settings and metadata tables
// ABOUTME: Both tables share the same save/get/delete contract
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/llmhouse/chatstore/internal/models"
)

// KVStore handles one of the key/value tables (settings, metadata)
type KVStore struct {
	db    *DB
	table string
}

// NewSettingStore creates a KVStore over the settings table
func NewSettingStore(db *DB) *KVStore {
	return &KVStore{db: db, table: "settings"}
}

// NewMetadataStore creates a KVStore over the metadata table
func NewMetadataStore(db *DB) *KVStore {
	return &KVStore{db: db, table: "metadata"}
}

// Set upserts a key/value pair
func (s *KVStore) Set(key, value string) error {
	_, err := s.db.Exec(fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.table), key, value)
	if err != nil {
		return fmt.Errorf("set %s %s: %w", s.table, key, err)
	}
	return nil
}

// Get returns the value and whether the key exists
func (s *KVStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE key = ?", s.table), key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s %s: %w", s.table, key, err)
	}
	return value, true, nil
}

// GetAll returns every pair in the table
func (s *KVStore) GetAll() ([]models.Setting, error) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT key, value FROM %s ORDER BY key ASC", s.table))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var settings []models.Setting
	for rows.Next() {
		var kv models.Setting
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return nil, err
		}
		settings = append(settings, kv)
	}
	return settings, rows.Err()
}

// Delete removes a key
func (s *KVStore) Delete(key string) error {
	_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE key = ?", s.table), key)
	return err
}
