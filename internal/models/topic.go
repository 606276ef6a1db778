// ABOUTME: Topic represents a single conversation owned by an assistant
// ABOUTME: Holds the ordered list of message ids and recency metadata
package models

import (
	"errors"
	"time"
)

// Topic is one conversation thread. Messages are owned by reference through
// MessageIDs; content itself lives in the messages and message_blocks tables.
type Topic struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	AssistantID     string    `json:"assistant_id"`
	Prompt          string    `json:"prompt,omitempty"`
	MessageIDs      []string  `json:"message_ids"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// SortKey returns the numeric recency index used for topic ordering.
func (t *Topic) SortKey() int64 {
	return t.LastMessageTime.UnixMilli()
}

// Validate checks if the Topic has valid data
func (t *Topic) Validate() error {
	if t.ID == "" {
		return errors.New("topic ID cannot be empty")
	}
	seen := make(map[string]bool, len(t.MessageIDs))
	for _, id := range t.MessageIDs {
		if seen[id] {
			return errors.New("duplicate message ID in topic")
		}
		seen[id] = true
	}
	return nil
}

// HasMessage reports whether the topic already references the message id.
func (t *Topic) HasMessage(id string) bool {
	for _, existing := range t.MessageIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// AppendMessage adds a message id to the topic, keeping insertion order and
// ignoring ids already present.
func (t *Topic) AppendMessage(id string) {
	if t.HasMessage(id) {
		return
	}
	t.MessageIDs = append(t.MessageIDs, id)
	t.UpdatedAt = time.Now().UTC()
}

// RemoveMessage drops a message id from the topic if present.
func (t *Topic) RemoveMessage(id string) {
	for i, existing := range t.MessageIDs {
		if existing == id {
			t.MessageIDs = append(t.MessageIDs[:i], t.MessageIDs[i+1:]...)
			t.UpdatedAt = time.Now().UTC()
			return
		}
	}
}
