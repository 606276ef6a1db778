// ABOUTME: CLI command to show database statistics
// ABOUTME: Row counts for topics, messages, blocks, and assistants
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long: `Show row counts for the core tables.

Examples:
  chatstore stats
  chatstore stats --format json`,
		RunE: runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	stats, err := store.GetStats()
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TABLE\tROWS\n")
	fmt.Fprintf(w, "-----\t----\n")
	fmt.Fprintf(w, "topics\t%d\n", stats.Topics)
	fmt.Fprintf(w, "messages\t%d\n", stats.Messages)
	fmt.Fprintf(w, "blocks\t%d\n", stats.Blocks)
	fmt.Fprintf(w, "assistants\t%d\n", stats.Assistants)
	_ = w.Flush()

	return nil
}
