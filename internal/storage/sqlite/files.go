// ABOUTME: File record storage operations
// ABOUTME: Tracks files attached to conversations by reference
package sqlite

import (
	"database/sql"

	"github.com/llmhouse/chatstore/internal/models"
)

// FileStore handles file record persistence
type FileStore struct {
	db *DB
}

// NewFileStore creates a new FileStore
func NewFileStore(db *DB) *FileStore {
	return &FileStore{db: db}
}

// Save upserts a file record
func (s *FileStore) Save(f *models.FileRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO files (id, name, path, ext, size, count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			ext = excluded.ext,
			size = excluded.size,
			count = excluded.count
	`, f.ID, f.Name, f.Path, f.Ext, f.Size, f.Count, f.CreatedAt)
	return err
}

// Get retrieves a file record by ID, (nil, nil) when absent
func (s *FileStore) Get(fileID string) (*models.FileRecord, error) {
	var (
		f   models.FileRecord
		ext sql.NullString
	)
	err := s.db.QueryRow("SELECT id, name, path, ext, size, count, created_at FROM files WHERE id = ?", fileID).
		Scan(&f.ID, &f.Name, &f.Path, &ext, &f.Size, &f.Count, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Ext = ext.String
	return &f, nil
}

// GetAll returns every file record, newest first
func (s *FileStore) GetAll() ([]models.FileRecord, error) {
	rows, err := s.db.Query("SELECT id, name, path, ext, size, count, created_at FROM files ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var files []models.FileRecord
	for rows.Next() {
		var (
			f   models.FileRecord
			ext sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &ext, &f.Size, &f.Count, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Ext = ext.String
		files = append(files, f)
	}
	return files, rows.Err()
}

// Delete removes a file record
func (s *FileStore) Delete(fileID string) error {
	_, err := s.db.Exec("DELETE FROM files WHERE id = ?", fileID)
	return err
}
