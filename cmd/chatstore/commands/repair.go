// ABOUTME: CLI command to scan for and remove dangling references
// ABOUTME: Safe to re-run; a clean database is left untouched
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRepairCmd creates the repair command
func NewRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Remove dangling references from the database",
		Long: `Scan for and remove dangling cross-entity references: blocks whose
message is gone, messages whose topic is gone, and id-list entries
pointing at rows that no longer exist.

Only the dangling side is ever removed. Running repair on a consistent
database changes nothing.

Examples:
  chatstore repair
  chatstore repair --format json`,
		RunE: runRepair,
	}

	return cmd
}

func runRepair(cmd *cobra.Command, args []string) error {
	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	report, err := store.Repair()
	if err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if !report.Changed() {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Database is consistent, nothing to repair\n")
		}
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphaned message(s), %d orphaned block(s)\n",
		report.OrphanedMessages, report.OrphanedBlocks)
	fmt.Fprintf(cmd.OutOrStdout(), "Scrubbed %d topic(s), %d message(s), %d assistant(s)\n",
		report.ScrubbedTopics, report.ScrubbedMessages, report.ScrubbedAssistants)
	return nil
}
