package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cloo-solutions/inbox/internal/cli"
	"github.com/cloo-solutions/inbox/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := client.NewRootCmd(version)

	if cli.CheckHelpJSON(rootCmd, os.Args[1:]) {
		return
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
