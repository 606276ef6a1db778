// ABOUTME: Backup restore from a previously exported payload
// ABOUTME: Runs in one transaction; dangling references reject or repair before commit
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ImportOptions controls restore behavior. With Strict set, any dangling
// cross-entity reference in the payload aborts the transaction with
// ErrConstraint; otherwise dangling entries are skipped with a warning and
// the surviving id lists are scrubbed to match.
type ImportOptions struct {
	Strict bool
}

// ImportReport counts what an import wrote and skipped.
type ImportReport struct {
	Assistants int `json:"assistants"`
	Topics     int `json:"topics"`
	Messages   int `json:"messages"`
	Blocks     int `json:"blocks"`
	Skipped    int `json:"skipped"`
}

// Import restores an export payload into the store. Everything lands in a
// single transaction so a failed import leaves the database untouched.
func (s *Storage) Import(data *ExportData, opts ImportOptions) (*ImportReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &ImportReport{}
	err := s.db.WithTx(func(tx *sql.Tx) error {
		topicIDs := make(map[string]bool, len(data.Topics))
		for i := range data.Topics {
			topicIDs[data.Topics[i].Topic.ID] = true
		}

		for i := range data.Assistants {
			a := data.Assistants[i]
			kept := make([]string, 0, len(a.TopicIDs))
			for _, id := range a.TopicIDs {
				if topicIDs[id] || s.rowExists(tx, "topics", id) {
					kept = append(kept, id)
					continue
				}
				if opts.Strict {
					return fmt.Errorf("%w: assistant %s references unknown topic %s", ErrConstraint, a.ID, id)
				}
				log.Printf("[import] warning: assistant %s references unknown topic %s, scrubbing", a.ID, id)
			}
			a.TopicIDs = kept
			if err := saveAssistant(tx, &a); err != nil {
				return err
			}
			report.Assistants++
		}

		for i := range data.Topics {
			view := &data.Topics[i]
			messageIDs := make(map[string]bool, len(view.Messages))
			for j := range view.Messages {
				messageIDs[view.Messages[j].ID] = true
			}

			topic := view.Topic
			kept := make([]string, 0, len(topic.MessageIDs))
			for _, id := range topic.MessageIDs {
				if messageIDs[id] {
					kept = append(kept, id)
					continue
				}
				if opts.Strict {
					return fmt.Errorf("%w: topic %s references unknown message %s", ErrConstraint, topic.ID, id)
				}
				log.Printf("[import] warning: topic %s references unknown message %s, scrubbing", topic.ID, id)
				report.Skipped++
			}
			topic.MessageIDs = kept
			if err := saveTopic(tx, &topic); err != nil {
				return err
			}
			report.Topics++

			for j := range view.Messages {
				mv := &view.Messages[j]
				if mv.TopicID != topic.ID {
					if opts.Strict {
						return fmt.Errorf("%w: message %s belongs to topic %s, found under %s",
							ErrConstraint, mv.ID, mv.TopicID, topic.ID)
					}
					log.Printf("[import] warning: message %s claims topic %s, skipping", mv.ID, mv.TopicID)
					report.Skipped++
					continue
				}

				blockIDs := make(map[string]bool, len(mv.Blocks))
				for k := range mv.Blocks {
					blockIDs[mv.Blocks[k].ID] = true
				}
				msg := mv.Message
				keptBlocks := make([]string, 0, len(msg.BlockIDs))
				for _, id := range msg.BlockIDs {
					if blockIDs[id] {
						keptBlocks = append(keptBlocks, id)
						continue
					}
					if opts.Strict {
						return fmt.Errorf("%w: message %s references unknown block %s", ErrConstraint, msg.ID, id)
					}
					log.Printf("[import] warning: message %s references unknown block %s, scrubbing", msg.ID, id)
					report.Skipped++
				}
				msg.BlockIDs = keptBlocks
				if err := saveMessage(tx, &msg); err != nil {
					return err
				}
				report.Messages++

				for k := range mv.Blocks {
					block := mv.Blocks[k]
					if block.MessageID != msg.ID {
						if opts.Strict {
							return fmt.Errorf("%w: block %s belongs to message %s, found under %s",
								ErrConstraint, block.ID, block.MessageID, msg.ID)
						}
						log.Printf("[import] warning: block %s claims message %s, skipping", block.ID, block.MessageID)
						report.Skipped++
						continue
					}
					if err := saveBlock(tx, &block); err != nil {
						return err
					}
					report.Blocks++
				}
			}
		}

		if err := importAux(tx, data); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Storage) rowExists(tx *sql.Tx, table, id string) bool {
	var n int
	if err := tx.QueryRow("SELECT COUNT(1) FROM "+table+" WHERE id = ?", id).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// importAux restores the full-table dumps that have no cross-entity
// invariants.
func importAux(tx *sql.Tx, data *ExportData) error {
	for _, setting := range data.Settings {
		if _, err := tx.Exec(`
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, setting.Key, setting.Value); err != nil {
			return fmt.Errorf("import setting %s: %w", setting.Key, err)
		}
	}
	for _, entry := range data.Metadata {
		if _, err := tx.Exec(`
			INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, datetime('now'))
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, entry.Key, entry.Value); err != nil {
			return fmt.Errorf("import metadata %s: %w", entry.Key, err)
		}
	}
	for i := range data.Memories {
		m := &data.Memories[i]
		if _, err := tx.Exec(`
			INSERT INTO memories (id, content, created_at) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET content = excluded.content
		`, m.ID, m.Content, m.CreatedAt); err != nil {
			return fmt.Errorf("import memory %s: %w", m.ID, err)
		}
	}
	for i := range data.QuickPhrases {
		p := &data.QuickPhrases[i]
		if _, err := tx.Exec(`
			INSERT INTO quick_phrases (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				content = excluded.content,
				updated_at = excluded.updated_at
		`, p.ID, p.Title, p.Content, p.CreatedAt, p.UpdatedAt); err != nil {
			return fmt.Errorf("import quick phrase %s: %w", p.ID, err)
		}
	}
	for i := range data.Files {
		f := &data.Files[i]
		if _, err := tx.Exec(`
			INSERT INTO files (id, name, path, ext, size, count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				path = excluded.path,
				ext = excluded.ext,
				size = excluded.size,
				count = excluded.count
		`, f.ID, f.Name, f.Path, f.Ext, f.Size, f.Count, f.CreatedAt); err != nil {
			return fmt.Errorf("import file %s: %w", f.ID, err)
		}
	}
	for i := range data.KnowledgeBases {
		kb := &data.KnowledgeBases[i]
		if _, err := tx.Exec(`
			INSERT INTO knowledge_bases (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				updated_at = excluded.updated_at
		`, kb.ID, kb.Name, kb.Description, kb.CreatedAt, kb.UpdatedAt); err != nil {
			return fmt.Errorf("import knowledge base %s: %w", kb.ID, err)
		}
	}
	for i := range data.KnowledgeDocuments {
		doc := &data.KnowledgeDocuments[i]
		if _, err := tx.Exec(`
			INSERT INTO knowledge_documents (id, base_id, content, created_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				base_id = excluded.base_id,
				content = excluded.content
		`, doc.ID, doc.BaseID, doc.Content, doc.CreatedAt); err != nil {
			return fmt.Errorf("import knowledge document %s: %w", doc.ID, err)
		}
	}
	for i := range data.ImageMetadata {
		meta := &data.ImageMetadata[i]
		if _, err := tx.Exec(`
			INSERT INTO image_metadata (id, width, height, size, created_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				width = excluded.width,
				height = excluded.height,
				size = excluded.size
		`, meta.ID, meta.Width, meta.Height, meta.Size, meta.CreatedAt); err != nil {
			return fmt.Errorf("import image metadata %s: %w", meta.ID, err)
		}
	}
	for i := range data.Images {
		img := &data.Images[i]
		if _, err := tx.Exec(`
			INSERT INTO images (id, mime, data) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET mime = excluded.mime, data = excluded.data
		`, img.ID, img.MIME, img.Data); err != nil {
			return fmt.Errorf("import image %s: %w", img.ID, err)
		}
	}
	return nil
}

// ImportFromFile loads an export file, detecting the format from the
// extension. YAML payloads are reshaped through JSON so both formats decode
// into the same structure.
func (s *Storage) ImportFromFile(path string, opts ImportOptions) (*ImportReport, error) {
	raw, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var data ExportData
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var generic map[string]interface{}
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("%w: invalid YAML: %v", ErrSerialization, err)
		}
		bridged, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		if err := json.Unmarshal(bridged, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrSerialization, err)
		}
	default:
		return nil, fmt.Errorf("unsupported import format %q (want .json, .yaml, or .yml)", filepath.Ext(path))
	}

	return s.Import(&data, opts)
}
