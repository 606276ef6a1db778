// ABOUTME: Root CLI command with global flags shared by all subcommands
// ABOUTME: Resolves the database path and output format once for the whole run
package commands

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dbPath       string
)

const banner = `
 ██████╗██╗  ██╗ █████╗ ████████╗███████╗████████╗ ██████╗ ██████╗ ███████╗
██╔════╝██║  ██║██╔══██╗╚══██╔══╝██╔════╝╚══██╔══╝██╔═══██╗██╔══██╗██╔════╝
██║     ███████║███████║   ██║   ███████╗   ██║   ██║   ██║██████╔╝█████╗
██║     ██╔══██║██╔══██║   ██║   ╚════██║   ██║   ██║   ██║██╔══██╗██╔══╝
╚██████╗██║  ██║██║  ██║   ██║   ███████║   ██║   ╚██████╔╝██║  ██║███████╗
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝   ╚══════╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚══════╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatstore",
		Short: "Local conversation store for chat applications",
		Long: banner + `
chatstore persists conversations (topics, messages, content blocks,
assistants) in a local SQLite database with versioned migrations.

Use it to inspect, back up, restore, and repair a conversation database,
or to expose it to LLM agents over MCP.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if outputFormat == "auto" {
				if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
					outputFormat = "table"
				} else {
					outputFormat = "json"
				}
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, or json")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: $XDG_DATA_HOME/chatstore/chatstore.db)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewVersionCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewRepairCmd())
	cmd.AddCommand(NewMCPCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
