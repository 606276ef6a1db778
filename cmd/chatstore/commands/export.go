// ABOUTME: CLI command to export the database to a backup file
// ABOUTME: Supports JSON, YAML, and Markdown transcript output
package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportFormat string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all conversations to a backup file",
		Long: `Export every topic, message, block, assistant, and auxiliary table
to a single backup file.

Formats:
  json      complete backup, restorable with 'chatstore import'
  yaml      complete backup, restorable with 'chatstore import'
  markdown  readable transcript (not restorable)

Examples:
  chatstore export
  chatstore export -o backup.yaml
  chatstore export -o transcript.md --export-format markdown`,
		RunE: runExport,
	}

	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: chatstore-export-<date>.json)")
	cmd.Flags().StringVar(&exportFormat, "export-format", "", "Export format: json, yaml, or markdown (default: from extension)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	output := exportOutput
	if output == "" {
		output = fmt.Sprintf("chatstore-export-%s.json", time.Now().Format("2006-01-02"))
	}

	format := exportFormat
	if format == "" {
		switch strings.ToLower(filepath.Ext(output)) {
		case ".yaml", ".yml":
			format = "yaml"
		case ".md", ".markdown":
			format = "markdown"
		default:
			format = "json"
		}
	}

	switch format {
	case "json":
		err = store.ExportToJSON(output)
	case "yaml":
		err = store.ExportToYAML(output)
	case "markdown":
		err = store.ExportToMarkdown(output)
	default:
		return fmt.Errorf("unknown export format %q (want json, yaml, or markdown)", format)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
	}
	return nil
}
