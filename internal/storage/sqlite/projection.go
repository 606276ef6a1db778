// ABOUTME: Read-time projection of the legacy embedded-messages topic view
// ABOUTME: Assembled on demand from normalized rows so the view cannot drift
package sqlite

import (
	"fmt"

	"github.com/llmhouse/chatstore/internal/models"
)

// MessageView is a message with its blocks inlined in content order.
type MessageView struct {
	models.Message
	Blocks []models.MessageBlock `json:"blocks"`
}

// TopicView is the denormalized topic shape older readers and the backup
// format expect: the topic with its full messages array embedded. Earlier
// schema versions stored this array on the topic row; it is now derived here
// on every read.
type TopicView struct {
	Topic    models.Topic  `json:"topic"`
	Messages []MessageView `json:"messages"`
}

// TopicView assembles the denormalized view for one topic. The messages
// follow the topic's ordered id list; each message's blocks follow its
// ordered block id list. Ids that do not resolve are skipped rather than
// failing the whole view.
func (s *Storage) TopicView(topicID string) (*TopicView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topic, err := s.topics.Get(topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, nil
	}

	msgs, err := s.messages.BulkGet(topic.MessageIDs)
	if err != nil {
		return nil, fmt.Errorf("load messages for topic %s: %w", topicID, err)
	}
	byID := make(map[string]models.Message, len(msgs))
	for _, m := range msgs {
		byID[m.ID] = m
	}

	grouped, err := s.blocks.GetByMessages(topic.MessageIDs)
	if err != nil {
		return nil, fmt.Errorf("load blocks for topic %s: %w", topicID, err)
	}

	view := &TopicView{Topic: *topic, Messages: make([]MessageView, 0, len(topic.MessageIDs))}
	for _, id := range topic.MessageIDs {
		msg, ok := byID[id]
		if !ok {
			continue
		}
		view.Messages = append(view.Messages, MessageView{
			Message: msg,
			Blocks:  orderBlocks(msg.BlockIDs, grouped[msg.ID]),
		})
	}
	return view, nil
}

// orderBlocks sorts the loaded blocks into the message's content order.
// Blocks not referenced by the id list keep creation order at the end.
func orderBlocks(blockIDs []string, blocks []models.MessageBlock) []models.MessageBlock {
	if len(blocks) == 0 {
		return []models.MessageBlock{}
	}
	byID := make(map[string]models.MessageBlock, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
	}

	ordered := make([]models.MessageBlock, 0, len(blocks))
	seen := make(map[string]bool, len(blocks))
	for _, id := range blockIDs {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
			seen[id] = true
		}
	}
	for _, b := range blocks {
		if !seen[b.ID] {
			ordered = append(ordered, b)
		}
	}
	return ordered
}
