// ABOUTME: Image and image metadata storage operations
// ABOUTME: Raw bytes and descriptive metadata live in separate tables
package sqlite

import (
	"database/sql"

	"github.com/llmhouse/chatstore/internal/models"
)

// ImageStore handles image blob and metadata persistence
type ImageStore struct {
	db *DB
}

// NewImageStore creates a new ImageStore
func NewImageStore(db *DB) *ImageStore {
	return &ImageStore{db: db}
}

// Save upserts image bytes
func (s *ImageStore) Save(img *models.Image) error {
	_, err := s.db.Exec(`
		INSERT INTO images (id, mime, data)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET mime = excluded.mime, data = excluded.data
	`, img.ID, img.MIME, img.Data)
	return err
}

// Get retrieves image bytes by ID, (nil, nil) when absent
func (s *ImageStore) Get(imageID string) (*models.Image, error) {
	var (
		img  models.Image
		mime sql.NullString
	)
	err := s.db.QueryRow("SELECT id, mime, data FROM images WHERE id = ?", imageID).
		Scan(&img.ID, &mime, &img.Data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	img.MIME = mime.String
	return &img, nil
}

// Delete removes an image and its metadata
func (s *ImageStore) Delete(imageID string) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM images WHERE id = ?", imageID); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM image_metadata WHERE id = ?", imageID)
		return err
	})
}

// SaveMetadata upserts descriptive metadata for an image
func (s *ImageStore) SaveMetadata(meta *models.ImageMetadata) error {
	_, err := s.db.Exec(`
		INSERT INTO image_metadata (id, width, height, size, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			width = excluded.width,
			height = excluded.height,
			size = excluded.size
	`, meta.ID, meta.Width, meta.Height, meta.Size, meta.CreatedAt)
	return err
}

// GetMetadata retrieves image metadata by ID, (nil, nil) when absent
func (s *ImageStore) GetMetadata(imageID string) (*models.ImageMetadata, error) {
	var meta models.ImageMetadata
	err := s.db.QueryRow("SELECT id, width, height, size, created_at FROM image_metadata WHERE id = ?", imageID).
		Scan(&meta.ID, &meta.Width, &meta.Height, &meta.Size, &meta.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// ListMetadata returns metadata for every stored image
func (s *ImageStore) ListMetadata() ([]models.ImageMetadata, error) {
	rows, err := s.db.Query("SELECT id, width, height, size, created_at FROM image_metadata ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metas []models.ImageMetadata
	for rows.Next() {
		var meta models.ImageMetadata
		if err := rows.Scan(&meta.ID, &meta.Width, &meta.Height, &meta.Size, &meta.CreatedAt); err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}
