// ABOUTME: Memory and quick phrase storage operations
// ABOUTME: Simple id-keyed rows with no cross-entity invariants
package sqlite

import (
	"database/sql"

	"github.com/llmhouse/chatstore/internal/models"
)

// MemoryStore handles memory and quick phrase persistence
type MemoryStore struct {
	db *DB
}

// NewMemoryStore creates a new MemoryStore
func NewMemoryStore(db *DB) *MemoryStore {
	return &MemoryStore{db: db}
}

// SaveMemory upserts a memory entry
func (s *MemoryStore) SaveMemory(m *models.Memory) error {
	_, err := s.db.Exec(`
		INSERT INTO memories (id, content, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET content = excluded.content
	`, m.ID, m.Content, m.CreatedAt)
	return err
}

// GetMemory retrieves a memory by ID, (nil, nil) when absent
func (s *MemoryStore) GetMemory(memoryID string) (*models.Memory, error) {
	var m models.Memory
	err := s.db.QueryRow("SELECT id, content, created_at FROM memories WHERE id = ?", memoryID).
		Scan(&m.ID, &m.Content, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAllMemories returns every memory, newest first
func (s *MemoryStore) GetAllMemories() ([]models.Memory, error) {
	rows, err := s.db.Query("SELECT id, content, created_at FROM memories ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var memories []models.Memory
	for rows.Next() {
		var m models.Memory
		if err := rows.Scan(&m.ID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// DeleteMemory removes a memory entry
func (s *MemoryStore) DeleteMemory(memoryID string) error {
	_, err := s.db.Exec("DELETE FROM memories WHERE id = ?", memoryID)
	return err
}

// SavePhrase upserts a quick phrase
func (s *MemoryStore) SavePhrase(p *models.QuickPhrase) error {
	_, err := s.db.Exec(`
		INSERT INTO quick_phrases (id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			updated_at = excluded.updated_at
	`, p.ID, p.Title, p.Content, p.CreatedAt, p.UpdatedAt)
	return err
}

// GetPhrase retrieves a quick phrase by ID, (nil, nil) when absent
func (s *MemoryStore) GetPhrase(phraseID string) (*models.QuickPhrase, error) {
	var p models.QuickPhrase
	err := s.db.QueryRow("SELECT id, title, content, created_at, updated_at FROM quick_phrases WHERE id = ?", phraseID).
		Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAllPhrases returns every quick phrase ordered by title
func (s *MemoryStore) GetAllPhrases() ([]models.QuickPhrase, error) {
	rows, err := s.db.Query("SELECT id, title, content, created_at, updated_at FROM quick_phrases ORDER BY title ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var phrases []models.QuickPhrase
	for rows.Next() {
		var p models.QuickPhrase
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		phrases = append(phrases, p)
	}
	return phrases, rows.Err()
}

// DeletePhrase removes a quick phrase
func (s *MemoryStore) DeletePhrase(phraseID string) error {
	_, err := s.db.Exec("DELETE FROM quick_phrases WHERE id = ?", phraseID)
	return err
}
