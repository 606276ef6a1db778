// ABOUTME: MCP tool definitions and registration for the chatstore server
// ABOUTME: Read-only tools exposing topics, history, assistants, and stats
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/llmhouse/chatstore/internal/storage/sqlite"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, store *sqlite.Storage) *Handlers {
	handlers := &Handlers{storage: store}

	// 1. list_topics - List conversation topics, most recent first
	server.AddTool(mcp.Tool{
		Name:        "list_topics",
		Description: "List conversation topics ordered by most recent activity. Optionally filter by assistant.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"assistant_id": map[string]interface{}{
					"type":        "string",
					"description": "Only return topics owned by this assistant",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of topics to return (default: 20)",
					"default":     20,
				},
			},
		},
	}, handlers.ListTopics)

	// 2. get_topic_history - Full conversation history for one topic
	server.AddTool(mcp.Tool{
		Name:        "get_topic_history",
		Description: "Get the complete conversation history for a topic, with each message's content blocks inlined in order.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"topic_id": map[string]interface{}{
					"type":        "string",
					"description": "Topic ID to retrieve history for",
				},
			},
			Required: []string{"topic_id"},
		},
	}, handlers.GetTopicHistory)

	// 3. list_assistants - All configured assistants
	server.AddTool(mcp.Tool{
		Name:        "list_assistants",
		Description: "List all assistants with their prompts and owned topic counts.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListAssistants)

	// 4. get_stats - Row counts across the store
	server.AddTool(mcp.Tool{
		Name:        "get_stats",
		Description: "Get row counts for topics, messages, blocks, and assistants.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetStats)

	return handlers
}
