package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// QueryResponse is the unenveloped body returned by POST /api/query.
type QueryResponse struct {
	Answer        string   `json:"answer"`
	Sources       []Source `json:"sources"`
	IsMock        bool     `json:"isMock,omitempty"`
	LowConfidence bool     `json:"low_confidence,omitempty"`
	Tier          string   `json:"tier,omitempty"`
}

type Source struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	ItemID  string `json:"item_id"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a question about your saved notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), showSources)
		},
	}

	cmd.Flags().BoolVarP(&showSources, "sources", "s", true, "Print the excerpts the answer was based on")

	return cmd
}

func runAsk(cmd *cobra.Command, question string, showSources bool) error {
	api := NewAPIClientWithCmd(cmd)
	resp, err := api.Post(cmd.Context(), "/api/query", map[string]string{"question": question})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var answer QueryResponse
	if err := json.Unmarshal(resp.Raw, &answer); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
		return printJSON(out, answer)
	}

	fmt.Fprintln(out, answer.Answer)
	if answer.LowConfidence {
		fmt.Fprintln(out, "\n(low confidence: only weak matches were found)")
	}
	if answer.IsMock {
		fmt.Fprintln(out, "\n(server is running without an AI provider)")
	}

	if showSources && len(answer.Sources) > 0 {
		fmt.Fprintf(out, "\n%s\nSources:\n", strings.Repeat("-", 40))
		for i, src := range answer.Sources {
			fmt.Fprintf(out, "[Source %d] %s (%s)\n", i+1, src.Source, src.ItemID)
			fmt.Fprintf(out, "   %s\n", preview(src.Content))
		}
	}

	return nil
}
