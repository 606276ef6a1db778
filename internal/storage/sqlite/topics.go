// ABOUTME: Topic storage operations for SQLite
// ABOUTME: Implements CRUD and bulk operations for conversation topics
package sqlite

import (
	"database/sql"
	"time"

	"github.com/llmhouse/chatstore/internal/models"
)

// TopicStore handles topic persistence
type TopicStore struct {
	db *DB
}

// NewTopicStore creates a new TopicStore
func NewTopicStore(db *DB) *TopicStore {
	return &TopicStore{db: db}
}

const topicColumns = "id, name, assistant_id, prompt, message_ids, created_at, updated_at, last_message_time, sort_key"

// Save saves or updates a topic (upsert)
func (s *TopicStore) Save(topic *models.Topic) error {
	return saveTopic(s.db, topic)
}

func saveTopic(q querier, topic *models.Topic) error {
	idsJSON, err := marshalJSON(topic.MessageIDs)
	if err != nil {
		return err
	}

	_, err = q.Exec(`
		INSERT INTO topics (id, name, assistant_id, prompt, message_ids, created_at, updated_at, last_message_time, sort_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			assistant_id = excluded.assistant_id,
			prompt = excluded.prompt,
			message_ids = excluded.message_ids,
			updated_at = excluded.updated_at,
			last_message_time = excluded.last_message_time,
			sort_key = excluded.sort_key
	`, topic.ID, topic.Name, topic.AssistantID, topic.Prompt, idsJSON,
		topic.CreatedAt, topic.UpdatedAt, topic.LastMessageTime, topic.SortKey())

	return err
}

// Get retrieves a topic by ID, (nil, nil) when absent
func (s *TopicStore) Get(topicID string) (*models.Topic, error) {
	return getTopic(s.db, topicID)
}

func getTopic(q querier, topicID string) (*models.Topic, error) {
	row := q.QueryRow("SELECT "+topicColumns+" FROM topics WHERE id = ?", topicID)
	topic, err := scanTopicRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return topic, nil
}

// GetAll retrieves every topic, most recently active first
func (s *TopicStore) GetAll() ([]models.Topic, error) {
	rows, err := s.db.Query("SELECT " + topicColumns + " FROM topics ORDER BY sort_key DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanTopics(rows)
}

// GetByAssistant retrieves all topics owned by an assistant
func (s *TopicStore) GetByAssistant(assistantID string) ([]models.Topic, error) {
	rows, err := s.db.Query("SELECT "+topicColumns+" FROM topics WHERE assistant_id = ? ORDER BY sort_key DESC", assistantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanTopics(rows)
}

// BulkGet retrieves the topics whose ids are in the given set. Missing ids
// are simply absent from the result.
func (s *TopicStore) BulkGet(ids []string) ([]models.Topic, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		"SELECT "+topicColumns+" FROM topics WHERE id IN ("+idPlaceholders(len(ids))+")",
		idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanTopics(rows)
}

// BulkSave upserts a set of topics inside one transaction
func (s *TopicStore) BulkSave(topics []models.Topic) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		for i := range topics {
			if err := saveTopic(tx, &topics[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a topic row only. Cascading through messages and blocks is
// the storage façade's job.
func (s *TopicStore) Delete(topicID string) error {
	_, err := s.db.Exec("DELETE FROM topics WHERE id = ?", topicID)
	return err
}

// BulkDelete removes topic rows by id set. Like Delete, it does not cascade;
// use Storage.DeleteTopic for the full teardown.
func (s *TopicStore) BulkDelete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(
		"DELETE FROM topics WHERE id IN ("+idPlaceholders(len(ids))+")",
		idArgs(ids)...)
	return err
}

func deleteTopicRow(q querier, topicID string) error {
	_, err := q.Exec("DELETE FROM topics WHERE id = ?", topicID)
	return err
}

// Count returns the number of stored topics
func (s *TopicStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM topics").Scan(&n)
	return n, err
}

func scanTopicRow(scan func(dest ...interface{}) error) (*models.Topic, error) {
	var (
		topic       models.Topic
		name        sql.NullString
		assistantID sql.NullString
		prompt      sql.NullString
		idsJSON     sql.NullString
		sortKey     int64
		lastMessage time.Time
	)
	err := scan(&topic.ID, &name, &assistantID, &prompt, &idsJSON,
		&topic.CreatedAt, &topic.UpdatedAt, &lastMessage, &sortKey)
	if err != nil {
		return nil, err
	}
	topic.Name = name.String
	topic.AssistantID = assistantID.String
	topic.Prompt = prompt.String
	topic.MessageIDs = scanIDs(idsJSON)
	topic.LastMessageTime = lastMessage
	return &topic, nil
}

func scanTopics(rows *sql.Rows) ([]models.Topic, error) {
	var topics []models.Topic
	for rows.Next() {
		topic, err := scanTopicRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		topics = append(topics, *topic)
	}
	return topics, rows.Err()
}
