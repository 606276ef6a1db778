// ABOUTME: Assistant storage operations for SQLite
// ABOUTME: Implements CRUD and bulk operations for assistant personas
package sqlite

import (
	"database/sql"

	"github.com/llmhouse/chatstore/internal/models"
)

// AssistantStore handles assistant persistence
type AssistantStore struct {
	db *DB
}

// NewAssistantStore creates a new AssistantStore
func NewAssistantStore(db *DB) *AssistantStore {
	return &AssistantStore{db: db}
}

const assistantColumns = "id, name, prompt, topic_ids, created_at, updated_at"

// Save saves or updates an assistant (upsert)
func (s *AssistantStore) Save(a *models.Assistant) error {
	return saveAssistant(s.db, a)
}

func saveAssistant(q querier, a *models.Assistant) error {
	idsJSON, err := marshalJSON(a.TopicIDs)
	if err != nil {
		return err
	}

	_, err = q.Exec(`
		INSERT INTO assistants (id, name, prompt, topic_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			prompt = excluded.prompt,
			topic_ids = excluded.topic_ids,
			updated_at = excluded.updated_at
	`, a.ID, a.Name, a.Prompt, idsJSON, a.CreatedAt, a.UpdatedAt)

	return err
}

// Get retrieves an assistant by ID, (nil, nil) when absent
func (s *AssistantStore) Get(assistantID string) (*models.Assistant, error) {
	return getAssistant(s.db, assistantID)
}

func getAssistant(q querier, assistantID string) (*models.Assistant, error) {
	row := q.QueryRow("SELECT "+assistantColumns+" FROM assistants WHERE id = ?", assistantID)
	a, err := scanAssistantRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAll retrieves every assistant ordered by name
func (s *AssistantStore) GetAll() ([]models.Assistant, error) {
	rows, err := s.db.Query("SELECT " + assistantColumns + " FROM assistants ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var assistants []models.Assistant
	for rows.Next() {
		a, err := scanAssistantRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		assistants = append(assistants, *a)
	}
	return assistants, rows.Err()
}

// BulkGet retrieves assistants by id set; missing ids are absent from the result
func (s *AssistantStore) BulkGet(ids []string) ([]models.Assistant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		"SELECT "+assistantColumns+" FROM assistants WHERE id IN ("+idPlaceholders(len(ids))+")",
		idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var assistants []models.Assistant
	for rows.Next() {
		a, err := scanAssistantRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		assistants = append(assistants, *a)
	}
	return assistants, rows.Err()
}

// BulkSave upserts a set of assistants inside one transaction
func (s *AssistantStore) BulkSave(assistants []models.Assistant) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		for i := range assistants {
			if err := saveAssistant(tx, &assistants[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an assistant row only; Storage.DeleteAssistant cascades
// through the owned topics first.
func (s *AssistantStore) Delete(assistantID string) error {
	_, err := s.db.Exec("DELETE FROM assistants WHERE id = ?", assistantID)
	return err
}

// BulkDelete removes assistant rows by id set. Like Delete, it does not
// cascade; Storage.DeleteAssistant handles owned topics.
func (s *AssistantStore) BulkDelete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(
		"DELETE FROM assistants WHERE id IN ("+idPlaceholders(len(ids))+")",
		idArgs(ids)...)
	return err
}

func deleteAssistantRow(q querier, assistantID string) error {
	_, err := q.Exec("DELETE FROM assistants WHERE id = ?", assistantID)
	return err
}

// Count returns the number of stored assistants
func (s *AssistantStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM assistants").Scan(&n)
	return n, err
}

func scanAssistantRow(scan func(dest ...interface{}) error) (*models.Assistant, error) {
	var (
		a       models.Assistant
		prompt  sql.NullString
		idsJSON sql.NullString
	)
	err := scan(&a.ID, &a.Name, &prompt, &idsJSON, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Prompt = prompt.String
	a.TopicIDs = scanIDs(idsJSON)
	return &a, nil
}
