// ABOUTME: ID generation helpers for all stored entities
// ABOUTME: IDs are prefix_timestamp_uuid8 so they sort roughly by creation
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func newID(prefix string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}

// NewTopicID returns a fresh topic id.
func NewTopicID() string { return newID("topic") }

// NewMessageID returns a fresh message id.
func NewMessageID() string { return newID("msg") }

// NewBlockID returns a fresh message block id.
func NewBlockID() string { return newID("blk") }

// NewAssistantID returns a fresh assistant id.
func NewAssistantID() string { return newID("asst") }
