// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Storage opening, string truncation, and relative time display
package commands

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/llmhouse/chatstore/internal/config"
	"github.com/llmhouse/chatstore/internal/storage/sqlite"
)

// openStorage opens the database honoring, in order, the --db flag, the
// CHATSTORE_DB environment variable, and the XDG default path.
func openStorage() (*sqlite.Storage, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	path := dbPath
	if path == "" {
		path = cfg.DBPath
	}
	if path == "" {
		return sqlite.NewStorage()
	}
	return sqlite.NewStorageWithPath(path)
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}
