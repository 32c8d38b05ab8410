package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteResult reports the outcome for one id.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id> [id...]",
		Short: "Delete items and their chunks",
		Long: `Delete one or more items. Every id is attempted; the command fails if any
deletion failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args)
		},
	}
}

func runDelete(cmd *cobra.Command, ids []string) error {
	api := NewAPIClientWithCmd(cmd)

	results := make([]DeleteResult, 0, len(ids))
	failed := 0
	for _, id := range ids {
		result := DeleteResult{ID: id, Deleted: true}
		if _, err := api.Delete(cmd.Context(), "/api/items/"+id); err != nil {
			result.Deleted = false
			result.Error = err.Error()
			failed++
		}
		results = append(results, result)
	}

	out := cmd.OutOrStdout()
	if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
		if err := printJSON(out, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Deleted {
				fmt.Fprintf(out, "Deleted %s\n", r.ID)
			} else {
				fmt.Fprintf(out, "Failed to delete %s: %s\n", r.ID, r.Error)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d deletions failed", failed, len(ids))
	}
	return nil
}
