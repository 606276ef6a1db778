// ABOUTME: CLI command to restore a backup file into the database
// ABOUTME: Runs in one transaction; strict mode rejects dangling references
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmhouse/chatstore/internal/storage/sqlite"
)

var importStrict bool

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a backup file",
		Long: `Restore a JSON or YAML backup produced by 'chatstore export'.

The whole import runs in one transaction: a failure leaves the database
untouched. By default dangling references inside the backup are skipped
with a warning; with --strict they abort the import instead.

Examples:
  chatstore import backup.json
  chatstore import --strict backup.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolVar(&importStrict, "strict", false, "Fail on dangling references instead of skipping them")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	report, err := store.ImportFromFile(args[0], sqlite.ImportOptions{Strict: importStrict})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d assistant(s), %d topic(s), %d message(s), %d block(s)\n",
			report.Assistants, report.Topics, report.Messages, report.Blocks)
		if report.Skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d dangling reference(s)\n", report.Skipped)
		}
	}
	return nil
}
