package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// UpdateRequest is the body of PATCH /api/items/{id}. Nil fields are unchanged.
type UpdateRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// EditCmd creates the edit command.
func EditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or content of an item",
		Long: `Change the title or content of an item. Changing the content re-chunks and
re-embeds the item.

Examples:
  inbox edit 3f2a... --title "Trip notes"
  inbox edit 3f2a... --content "Updated text"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req UpdateRequest
			if cmd.Flags().Changed("title") {
				title, _ := cmd.Flags().GetString("title")
				req.Title = &title
			}
			if cmd.Flags().Changed("content") {
				content, _ := cmd.Flags().GetString("content")
				req.Content = &content
			}
			if req.Title == nil && req.Content == nil {
				return fmt.Errorf("nothing to change: pass --title and/or --content")
			}
			return runEdit(cmd, args[0], req)
		},
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("content", "", "New content")

	return cmd
}

func runEdit(cmd *cobra.Command, id string, req UpdateRequest) error {
	api := NewAPIClientWithCmd(cmd)
	resp, err := api.Patch(cmd.Context(), "/api/items/"+id, req)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	var item Item
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
		return printJSON(out, item)
	}

	fmt.Fprintf(out, "Updated %s (%s)\n", item.ID, item.Title)
	return nil
}
