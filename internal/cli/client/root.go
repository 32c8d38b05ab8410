package client

import (
	"github.com/cloo-solutions/inbox/internal/cli"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the inbox command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "inbox",
		Short: "Save notes and web pages, then ask questions about them",
		Long: `inbox saves notes and web pages to an inbox server and answers questions
using only what you saved.

Environment variables:
  INBOX_API_URL     API base URL (default: http://localhost:8080)
  INBOX_API_TOKEN   Bearer token, when the server requires one`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-token", "", "API token (overrides INBOX_API_TOKEN)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides INBOX_API_URL)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(AddCmd())
	rootCmd.AddCommand(ListCmd())
	rootCmd.AddCommand(AskCmd())
	rootCmd.AddCommand(EditCmd())
	rootCmd.AddCommand(DeleteCmd())

	return rootCmd
}
