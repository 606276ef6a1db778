// ABOUTME: Assistant is a named persona/config bundle owning topics
// ABOUTME: Deleting an assistant cascades through its topics
package models

import (
	"errors"
	"time"
)

// Assistant is a persona configuration. TopicIDs lists the conversations it
// owns; deleting the assistant cascades through them.
type Assistant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt,omitempty"`
	TopicIDs  []string  `json:"topic_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Assistant has valid data
func (a *Assistant) Validate() error {
	if a.ID == "" {
		return errors.New("assistant ID cannot be empty")
	}
	if a.Name == "" {
		return errors.New("assistant name cannot be empty")
	}
	return nil
}

// HasTopic reports whether the assistant already owns the topic id.
func (a *Assistant) HasTopic(id string) bool {
	for _, existing := range a.TopicIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// AddTopic appends a topic id, ignoring ids already present.
func (a *Assistant) AddTopic(id string) {
	if a.HasTopic(id) {
		return
	}
	a.TopicIDs = append(a.TopicIDs, id)
	a.UpdatedAt = time.Now().UTC()
}

// RemoveTopic drops a topic id from the assistant if present.
func (a *Assistant) RemoveTopic(id string) {
	for i, existing := range a.TopicIDs {
		if existing == id {
			a.TopicIDs = append(a.TopicIDs[:i], a.TopicIDs[i+1:]...)
			a.UpdatedAt = time.Now().UTC()
			return
		}
	}
}
