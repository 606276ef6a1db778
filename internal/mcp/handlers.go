// ABOUTME: MCP tool handler implementations for the chatstore server
// ABOUTME: Thin adapters from tool requests to storage reads
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/llmhouse/chatstore/internal/models"
	"github.com/llmhouse/chatstore/internal/storage/sqlite"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	storage *sqlite.Storage
}

// ListTopics handles the list_topics tool
func (h *Handlers) ListTopics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assistantID := request.GetString("assistant_id", "")
	limit := request.GetInt("limit", 20)

	var (
		topics []interface{}
		err    error
	)
	if assistantID != "" {
		byAssistant, aerr := h.storage.Topics().GetByAssistant(assistantID)
		err = aerr
		for i := range byAssistant {
			topics = append(topics, topicSummary(&byAssistant[i]))
		}
	} else {
		all, aerr := h.storage.Topics().GetAll()
		err = aerr
		for i := range all {
			topics = append(topics, topicSummary(&all[i]))
		}
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list topics: %v", err)), nil
	}
	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	if topics == nil {
		topics = []interface{}{}
	}

	response := map[string]interface{}{
		"topics": topics,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GetTopicHistory handles the get_topic_history tool
func (h *Handlers) GetTopicHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topicID, err := request.RequireString("topic_id")
	if err != nil {
		return mcp.NewToolResultError("topic_id argument is required and must be a string"), nil
	}

	view, err := h.storage.TopicView(topicID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load topic: %v", err)), nil
	}
	if view == nil {
		return mcp.NewToolResultError(fmt.Sprintf("topic %s not found", topicID)), nil
	}

	responseJSON, err := json.Marshal(view)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ListAssistants handles the list_assistants tool
func (h *Handlers) ListAssistants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assistants, err := h.storage.Assistants().GetAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list assistants: %v", err)), nil
	}

	summaries := make([]map[string]interface{}, 0, len(assistants))
	for i := range assistants {
		a := &assistants[i]
		summaries = append(summaries, map[string]interface{}{
			"id":          a.ID,
			"name":        a.Name,
			"prompt":      a.Prompt,
			"topic_count": len(a.TopicIDs),
		})
	}

	response := map[string]interface{}{
		"assistants": summaries,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GetStats handles the get_stats tool
func (h *Handlers) GetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.storage.GetStats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}

	responseJSON, err := json.Marshal(stats)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

func topicSummary(t *models.Topic) map[string]interface{} {
	return map[string]interface{}{
		"id":                t.ID,
		"name":              t.Name,
		"assistant_id":      t.AssistantID,
		"message_count":     len(t.MessageIDs),
		"last_message_time": t.LastMessageTime.Format(time.RFC3339),
		"created_at":        t.CreatedAt.Format(time.RFC3339),
	}
}
