package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Item mirrors the item representation returned by the API.
type Item struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	Content     string `json:"content"`
	HasSnapshot bool   `json:"has_snapshot"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ListResponse is the data returned by GET /api/items.
type ListResponse struct {
	Items   []Item `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

const previewLen = 80

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, limit, cursor)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of items")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runList(cmd *cobra.Command, limit int, cursor string) error {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	path := "/api/items"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	api := NewAPIClientWithCmd(cmd)
	resp, err := api.Get(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp ListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
		return printJSON(out, listResp)
	}

	if len(listResp.Items) == 0 {
		fmt.Fprintln(out, "No items saved yet.")
		return nil
	}

	for i, item := range listResp.Items {
		fmt.Fprintf(out, "%d. %s [%s]\n", i+1, item.Title, item.Type)
		if item.Source != "" && item.Source != item.Title {
			fmt.Fprintf(out, "   Source: %s\n", item.Source)
		}
		fmt.Fprintf(out, "   %s\n", preview(item.Content))
		fmt.Fprintf(out, "   ID: %s  Saved: %s\n", item.ID, item.CreatedAt)
		if i < len(listResp.Items)-1 {
			fmt.Fprintln(out, strings.Repeat("-", 40))
		}
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Fprintf(out, "\nMore items available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

// preview collapses whitespace and truncates on a rune boundary.
func preview(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen-3]) + "..."
}
