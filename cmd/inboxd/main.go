package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cloo-solutions/inbox/internal/cli"
	"github.com/cloo-solutions/inbox/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "inboxd",
		Short: "Inbox server",
		Long:  "Inbox server: runs the API and maintains the chunk and embedding store",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.RebuildChunksCmd())

	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"serve"}
		rootCmd.SetArgs(args)
	}

	if cli.CheckHelpJSON(rootCmd, args) {
		return
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
