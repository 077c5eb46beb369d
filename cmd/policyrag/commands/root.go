// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Execute is the single entry point used by main
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██████╗  ██████╗ ██╗     ██╗ ██████╗██╗   ██╗██████╗  █████╗  ██████╗
██╔══██╗██╔═══██╗██║     ██║██╔════╝╚██╗ ██╔╝██╔══██╗██╔══██╗██╔════╝
██████╔╝██║   ██║██║     ██║██║      ╚████╔╝ ██████╔╝███████║██║  ███╗
██╔═══╝ ██║   ██║██║     ██║██║       ╚██╔╝  ██╔══██╗██╔══██║██║   ██║
██║     ╚██████╔╝███████╗██║╚██████╗   ██║   ██║  ██║██║  ██║╚██████╔╝
╚═╝      ╚═════╝ ╚══════╝╚═╝ ╚═════╝   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝
`

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policyrag",
		Short: "Policy document retrieval system",
		Long: banner + `
policyrag indexes policy documents into a two-tier vector index
(document summaries and detailed chunks) and answers questions
against it with query-aware retrieval and citations.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
