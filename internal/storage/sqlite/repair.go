// ABOUTME: Best-effort repair for dangling cross-entity references
// ABOUTME: Removes the dangling side only, never valid data; safe to re-run
package sqlite

import (
	"database/sql"
	"log"

	"github.com/llmhouse/chatstore/internal/models"
)

// RepairReport counts what one repair pass removed or fixed.
type RepairReport struct {
	OrphanedBlocks     int `json:"orphaned_blocks"`
	OrphanedMessages   int `json:"orphaned_messages"`
	ScrubbedTopics     int `json:"scrubbed_topics"`
	ScrubbedMessages   int `json:"scrubbed_messages"`
	ScrubbedAssistants int `json:"scrubbed_assistants"`
}

// Changed reports whether the pass modified anything.
func (r *RepairReport) Changed() bool {
	return r.OrphanedBlocks+r.OrphanedMessages+r.ScrubbedTopics+
		r.ScrubbedMessages+r.ScrubbedAssistants > 0
}

// Repair scans for dangling references and removes them: blocks whose
// message is gone, messages whose topic is gone (with their blocks), id-list
// entries pointing at rows that no longer exist. Each finding is logged as a
// warning. The pass runs in one transaction and a second run on the same
// database changes nothing.
func (s *Storage) Repair() (*RepairReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &RepairReport{}
	err := s.db.WithTx(func(tx *sql.Tx) error {
		// Orphaned messages first so their blocks are not counted twice.
		rows, err := tx.Query(`
			SELECT id, topic_id FROM messages
			WHERE topic_id NOT IN (SELECT id FROM topics)
		`)
		if err != nil {
			return err
		}
		type orphan struct{ id, ref string }
		var orphanMsgs []orphan
		for rows.Next() {
			var o orphan
			if err := rows.Scan(&o.id, &o.ref); err != nil {
				_ = rows.Close()
				return err
			}
			orphanMsgs = append(orphanMsgs, o)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}
		_ = rows.Close()

		for _, o := range orphanMsgs {
			log.Printf("[repair] warning: message %s references missing topic %s, removing", o.id, o.ref)
			if err := deleteBlocksByMessage(tx, o.id); err != nil {
				return err
			}
			if err := deleteMessageRow(tx, o.id); err != nil {
				return err
			}
			report.OrphanedMessages++
		}

		// Orphaned blocks.
		res, err := tx.Exec(`
			DELETE FROM message_blocks
			WHERE message_id NOT IN (SELECT id FROM messages)
		`)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			log.Printf("[repair] warning: removed %d blocks with missing messages", n)
			report.OrphanedBlocks = int(n)
		}

		// Topics referencing removed messages.
		topics, err := scanAllTopics(tx)
		if err != nil {
			return err
		}
		for i := range topics {
			topic := &topics[i]
			kept := topic.MessageIDs[:0]
			for _, id := range topic.MessageIDs {
				msg, err := getMessage(tx, id)
				if err != nil {
					return err
				}
				if msg == nil {
					log.Printf("[repair] warning: topic %s references missing message %s, scrubbing", topic.ID, id)
					continue
				}
				kept = append(kept, id)
			}
			if len(kept) != len(topic.MessageIDs) {
				topic.MessageIDs = kept
				if err := saveTopic(tx, topic); err != nil {
					return err
				}
				report.ScrubbedTopics++
			}
		}

		// Messages referencing removed blocks.
		msgRows, err := tx.Query("SELECT " + messageColumns + " FROM messages")
		if err != nil {
			return err
		}
		msgs, err := scanMessages(msgRows)
		_ = msgRows.Close()
		if err != nil {
			return err
		}
		for i := range msgs {
			msg := &msgs[i]
			kept := msg.BlockIDs[:0]
			for _, id := range msg.BlockIDs {
				block, err := getBlock(tx, id)
				if err != nil {
					return err
				}
				if block == nil {
					log.Printf("[repair] warning: message %s references missing block %s, scrubbing", msg.ID, id)
					continue
				}
				kept = append(kept, id)
			}
			if len(kept) != len(msg.BlockIDs) {
				msg.BlockIDs = kept
				if err := saveMessage(tx, msg); err != nil {
					return err
				}
				report.ScrubbedMessages++
			}
		}

		// Assistants referencing removed topics: scrub the reference, keep
		// the assistant.
		aRows, err := tx.Query("SELECT " + assistantColumns + " FROM assistants")
		if err != nil {
			return err
		}
		var assistants []*models.Assistant
		for aRows.Next() {
			a, err := scanAssistantRow(aRows.Scan)
			if err != nil {
				_ = aRows.Close()
				return err
			}
			assistants = append(assistants, a)
		}
		if err := aRows.Err(); err != nil {
			_ = aRows.Close()
			return err
		}
		_ = aRows.Close()

		for _, a := range assistants {
			kept := a.TopicIDs[:0]
			for _, id := range a.TopicIDs {
				topic, err := getTopic(tx, id)
				if err != nil {
					return err
				}
				if topic == nil {
					log.Printf("[repair] warning: assistant %s references missing topic %s, scrubbing", a.ID, id)
					continue
				}
				kept = append(kept, id)
			}
			if len(kept) != len(a.TopicIDs) {
				a.TopicIDs = kept
				if err := saveAssistant(tx, a); err != nil {
					return err
				}
				report.ScrubbedAssistants++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func scanAllTopics(tx *sql.Tx) ([]models.Topic, error) {
	rows, err := tx.Query("SELECT " + topicColumns + " FROM topics")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanTopics(rows)
}
