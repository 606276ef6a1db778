// ABOUTME: Message represents one conversational turn inside a topic
// ABOUTME: Content is composed of ordered MessageBlocks referenced by id
package models

import (
	"errors"
	"time"
)

// MessageRole identifies who produced a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// MessageStatus tracks the lifecycle of a message.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusStreaming MessageStatus = "streaming"
	StatusSuccess   MessageStatus = "success"
	StatusError     MessageStatus = "error"
)

// MessageVersion is one retained regeneration of an assistant message.
type MessageVersion struct {
	ID        string    `json:"id"`
	ModelID   string    `json:"model_id,omitempty"`
	BlockIDs  []string  `json:"block_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single turn. It never embeds content directly; BlockIDs is the
// ordered composition of its MessageBlocks. AskID links an assistant message
// back to the user message that triggered it.
type Message struct {
	ID          string           `json:"id"`
	TopicID     string           `json:"topic_id"`
	AssistantID string           `json:"assistant_id,omitempty"`
	Role        MessageRole      `json:"role"`
	Status      MessageStatus    `json:"status"`
	ModelID     string           `json:"model_id,omitempty"`
	AskID       string           `json:"ask_id,omitempty"`
	BlockIDs    []string         `json:"block_ids"`
	Versions    []MessageVersion `json:"versions,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Validate checks if the Message has valid data
func (m *Message) Validate() error {
	if m.ID == "" {
		return errors.New("message ID cannot be empty")
	}
	if m.TopicID == "" {
		return errors.New("message topic ID cannot be empty")
	}
	if m.Role != RoleUser && m.Role != RoleAssistant && m.Role != RoleSystem {
		return errors.New("invalid role")
	}
	if m.Status != StatusPending && m.Status != StatusStreaming &&
		m.Status != StatusSuccess && m.Status != StatusError {
		return errors.New("invalid status")
	}
	return nil
}

// Terminal reports whether the message reached a final status.
func (m *Message) Terminal() bool {
	return m.Status == StatusSuccess || m.Status == StatusError
}

// HasBlock reports whether the message already references the block id.
func (m *Message) HasBlock(id string) bool {
	for _, existing := range m.BlockIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// AppendBlock adds a block id in content order, ignoring duplicates.
func (m *Message) AppendBlock(id string) {
	if m.HasBlock(id) {
		return
	}
	m.BlockIDs = append(m.BlockIDs, id)
	m.UpdatedAt = time.Now().UTC()
}
