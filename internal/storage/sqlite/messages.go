// ABOUTME: Message storage operations for SQLite
// ABOUTME: Implements CRUD, bulk, and topic-indexed reads for messages
package sqlite

import (
	"database/sql"
	"encoding/json"

	"github.com/llmhouse/chatstore/internal/models"
)

// MessageStore handles message persistence
type MessageStore struct {
	db *DB
}

// NewMessageStore creates a new MessageStore
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db}
}

const messageColumns = "id, topic_id, assistant_id, role, status, model_id, ask_id, block_ids, versions, created_at, updated_at"

// Save saves or updates a message row (upsert). Topic bookkeeping lives in
// the storage façade; use Storage.SaveMessage for the composite write.
func (s *MessageStore) Save(msg *models.Message) error {
	return saveMessage(s.db, msg)
}

func saveMessage(q querier, msg *models.Message) error {
	blockIDs, err := marshalJSON(msg.BlockIDs)
	if err != nil {
		return err
	}
	versions, err := marshalJSON(msg.Versions)
	if err != nil {
		return err
	}

	_, err = q.Exec(`
		INSERT INTO messages (id, topic_id, assistant_id, role, status, model_id, ask_id, block_ids, versions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic_id = excluded.topic_id,
			assistant_id = excluded.assistant_id,
			role = excluded.role,
			status = excluded.status,
			model_id = excluded.model_id,
			ask_id = excluded.ask_id,
			block_ids = excluded.block_ids,
			versions = excluded.versions,
			updated_at = excluded.updated_at
	`, msg.ID, msg.TopicID, msg.AssistantID, string(msg.Role), string(msg.Status),
		msg.ModelID, msg.AskID, blockIDs, versions, msg.CreatedAt, msg.UpdatedAt)

	return err
}

// Get retrieves a message by ID, (nil, nil) when absent
func (s *MessageStore) Get(messageID string) (*models.Message, error) {
	return getMessage(s.db, messageID)
}

func getMessage(q querier, messageID string) (*models.Message, error) {
	row := q.QueryRow("SELECT "+messageColumns+" FROM messages WHERE id = ?", messageID)
	msg, err := scanMessageRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// GetByTopic retrieves all messages of a topic in chronological order
func (s *MessageStore) GetByTopic(topicID string) ([]models.Message, error) {
	return getMessagesByTopic(s.db, topicID)
}

func getMessagesByTopic(q querier, topicID string) ([]models.Message, error) {
	rows, err := q.Query("SELECT "+messageColumns+" FROM messages WHERE topic_id = ? ORDER BY created_at ASC", topicID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanMessages(rows)
}

// GetAll retrieves every message in chronological order
func (s *MessageStore) GetAll() ([]models.Message, error) {
	rows, err := s.db.Query("SELECT " + messageColumns + " FROM messages ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanMessages(rows)
}

// BulkGet retrieves messages by id set; missing ids are absent from the result
func (s *MessageStore) BulkGet(ids []string) ([]models.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE id IN ("+idPlaceholders(len(ids))+")",
		idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanMessages(rows)
}

// BulkSave upserts message rows inside one transaction
func (s *MessageStore) BulkSave(msgs []models.Message) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		for i := range msgs {
			if err := saveMessage(tx, &msgs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a message row only; Storage.DeleteMessage does the full
// cascade and topic bookkeeping.
func (s *MessageStore) Delete(messageID string) error {
	_, err := s.db.Exec("DELETE FROM messages WHERE id = ?", messageID)
	return err
}

// BulkDelete removes message rows by id set without cascading to blocks or
// topic bookkeeping; Storage.DeleteMessage does the composite delete.
func (s *MessageStore) BulkDelete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(
		"DELETE FROM messages WHERE id IN ("+idPlaceholders(len(ids))+")",
		idArgs(ids)...)
	return err
}

func deleteMessageRow(q querier, messageID string) error {
	_, err := q.Exec("DELETE FROM messages WHERE id = ?", messageID)
	return err
}

func deleteMessagesByTopic(q querier, topicID string) error {
	_, err := q.Exec("DELETE FROM messages WHERE topic_id = ?", topicID)
	return err
}

// Count returns the number of stored messages
func (s *MessageStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM messages").Scan(&n)
	return n, err
}

func scanMessageRow(scan func(dest ...interface{}) error) (*models.Message, error) {
	var (
		msg         models.Message
		assistantID sql.NullString
		role        string
		status      string
		modelID     sql.NullString
		askID       sql.NullString
		blockIDs    sql.NullString
		versions    sql.NullString
	)
	err := scan(&msg.ID, &msg.TopicID, &assistantID, &role, &status, &modelID,
		&askID, &blockIDs, &versions, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	msg.AssistantID = assistantID.String
	msg.Role = models.MessageRole(role)
	msg.Status = models.MessageStatus(status)
	msg.ModelID = modelID.String
	msg.AskID = askID.String
	msg.BlockIDs = scanIDs(blockIDs)
	if versions.Valid && versions.String != "" {
		if err := json.Unmarshal([]byte(versions.String), &msg.Versions); err != nil {
			msg.Versions = nil
		}
	}
	return &msg, nil
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	var msgs []models.Message
	for rows.Next() {
		msg, err := scanMessageRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}
