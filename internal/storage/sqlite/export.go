// ABOUTME: Backup export for the conversation store
// ABOUTME: Supports JSON, YAML, and Markdown transcript formats
package sqlite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/llmhouse/chatstore/internal/models"
)

// ExportData is the complete backup payload. Topics carry the projected
// denormalized view so external consumers get messages and blocks inline.
type ExportData struct {
	Version            string                     `json:"version"`
	ExportedAt         string                     `json:"exported_at"`
	Tool               string                     `json:"tool"`
	Assistants         []models.Assistant         `json:"assistants,omitempty"`
	Topics             []TopicView                `json:"topics,omitempty"`
	Settings           []models.Setting           `json:"settings,omitempty"`
	Metadata           []models.Setting           `json:"metadata,omitempty"`
	Memories           []models.Memory            `json:"memories,omitempty"`
	QuickPhrases       []models.QuickPhrase       `json:"quick_phrases,omitempty"`
	Files              []models.FileRecord        `json:"files,omitempty"`
	KnowledgeBases     []models.KnowledgeBase     `json:"knowledge_bases,omitempty"`
	KnowledgeDocuments []models.KnowledgeDocument `json:"knowledge_documents,omitempty"`
	Images             []models.Image             `json:"images,omitempty"`
	ImageMetadata      []models.ImageMetadata     `json:"image_metadata,omitempty"`
}

// Export collects all data from storage
func (s *Storage) Export() (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "chatstore",
	}

	assistants, err := s.assistants.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list assistants: %w", err)
	}
	data.Assistants = assistants

	topics, err := s.topics.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	for _, topic := range topics {
		view, err := s.TopicView(topic.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to project topic %s: %w", topic.ID, err)
		}
		if view != nil {
			data.Topics = append(data.Topics, *view)
		}
	}

	if data.Settings, err = s.settings.GetAll(); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	if data.Metadata, err = s.metadata.GetAll(); err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	if data.Memories, err = s.memories.GetAllMemories(); err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	if data.QuickPhrases, err = s.memories.GetAllPhrases(); err != nil {
		return nil, fmt.Errorf("failed to list quick phrases: %w", err)
	}
	if data.Files, err = s.files.GetAll(); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if data.KnowledgeBases, err = s.knowledge.GetAllBases(); err != nil {
		return nil, fmt.Errorf("failed to list knowledge bases: %w", err)
	}
	for _, kb := range data.KnowledgeBases {
		docs, err := s.knowledge.GetDocumentsByBase(kb.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents for %s: %w", kb.ID, err)
		}
		data.KnowledgeDocuments = append(data.KnowledgeDocuments, docs...)
	}
	if data.ImageMetadata, err = s.images.ListMetadata(); err != nil {
		return nil, fmt.Errorf("failed to list image metadata: %w", err)
	}
	for _, meta := range data.ImageMetadata {
		img, err := s.images.Get(meta.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", meta.ID, err)
		}
		if img != nil {
			data.Images = append(data.Images, *img)
		}
	}

	return data, nil
}

// ExportToJSON exports data to a JSON file
func (s *Storage) ExportToJSON(outputPath string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportToYAML exports data to a YAML file. The payload is round-tripped
// through JSON first so YAML keys match the JSON field names.
func (s *Storage) ExportToYAML(outputPath string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize export: %w", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to reshape export: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// ExportToMarkdown writes a readable transcript of every conversation
func (s *Storage) ExportToMarkdown(outputPath string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "# Conversation Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(file, "Generated: %s\n\n", data.ExportedAt)

	assistantNames := make(map[string]string, len(data.Assistants))
	for _, a := range data.Assistants {
		assistantNames[a.ID] = a.Name
	}

	for _, view := range data.Topics {
		title := view.Topic.Name
		if title == "" {
			title = view.Topic.ID
		}
		_, _ = fmt.Fprintf(file, "## %s\n\n", title)
		if name := assistantNames[view.Topic.AssistantID]; name != "" {
			_, _ = fmt.Fprintf(file, "*Assistant: %s*\n\n", name)
		}
		for _, msg := range view.Messages {
			switch msg.Role {
			case models.RoleUser:
				_, _ = fmt.Fprint(file, "**User:**")
			case models.RoleAssistant:
				_, _ = fmt.Fprint(file, "**Assistant:**")
			default:
				_, _ = fmt.Fprint(file, "**System:**")
			}
			_, _ = fmt.Fprintln(file)
			for _, block := range msg.Blocks {
				if block.Type == models.BlockThinking {
					continue
				}
				if block.Content != "" {
					_, _ = fmt.Fprintf(file, "\n%s\n", block.Content)
				}
			}
			_, _ = fmt.Fprintln(file)
		}
		_, _ = fmt.Fprintln(file, "---")
		_, _ = fmt.Fprintln(file)
	}

	return nil
}
