// ABOUTME: CLI command to list conversation topics
// ABOUTME: Shows topics ordered by most recent activity
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listAssistant string
	listLimit     int
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversation topics",
		Long: `List conversation topics ordered by most recent activity.

Examples:
  chatstore list
  chatstore list --assistant asst_20250101_120000_a1b2c3d4
  chatstore list --format json`,
		RunE: runList,
	}

	cmd.Flags().StringVar(&listAssistant, "assistant", "", "Only show topics owned by this assistant")
	cmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of topics to show (0 = all)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	topics, err := store.Topics().GetAll()
	if err != nil {
		return fmt.Errorf("listing topics: %w", err)
	}
	if listAssistant != "" {
		filtered := topics[:0]
		for _, t := range topics {
			if t.AssistantID == listAssistant {
				filtered = append(filtered, t)
			}
		}
		topics = filtered
	}
	if listLimit > 0 && len(topics) > listLimit {
		topics = topics[:listLimit]
	}

	if len(topics) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No topics found\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(topics, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tMESSAGES\tLAST ACTIVITY\tTOPIC ID\n")
	fmt.Fprintf(w, "----\t--------\t-------------\t--------\n")
	for _, t := range topics {
		name := t.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			truncate(name, 30),
			len(t.MessageIDs),
			formatTime(t.LastMessageTime),
			truncate(t.ID, 30))
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d topic(s)\n", len(topics))
	}
	return nil
}
