package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// IngestRequest is the body of POST /api/ingest.
type IngestRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// IngestResponse is the data returned by POST /api/ingest.
type IngestResponse struct {
	ItemID        string `json:"item_id"`
	ChunksCreated int    `json:"chunks_created"`
}

// AddCmd creates the add command with its note and url subcommands.
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a note or web page",
	}

	cmd.AddCommand(addNoteCmd(), addURLCmd())
	return cmd
}

func addNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note [text...]",
		Short: "Save a text note",
		Long: `Save a text note. Pass the text as arguments, or "-" to read it from stdin.

Examples:
  inbox add note "The capital of France is Paris."
  cat meeting.txt | inbox add note -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(data)
			}
			return runAdd(cmd, IngestRequest{Type: "note", Content: text})
		},
	}
}

func addURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <url>",
		Short: "Fetch a web page and save its text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, IngestRequest{Type: "url", Content: args[0]})
		},
	}
}

func runAdd(cmd *cobra.Command, req IngestRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("nothing to save")
	}

	api := NewAPIClientWithCmd(cmd)
	resp, err := api.Post(cmd.Context(), "/api/ingest", req)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", req.Type, err)
	}

	var created IngestResponse
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
		return printJSON(out, created)
	}

	fmt.Fprintf(out, "Saved %s %s (%d chunks)\n", req.Type, created.ItemID, created.ChunksCreated)
	return nil
}
