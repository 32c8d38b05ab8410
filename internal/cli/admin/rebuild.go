package admin

import (
	"fmt"

	"github.com/cloo-solutions/inbox/internal/config"
	"github.com/cloo-solutions/inbox/internal/database"
	"github.com/cloo-solutions/inbox/internal/service"
	"github.com/spf13/cobra"
)

// RebuildChunksCmd returns the rebuild-chunks command
func RebuildChunksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild-chunks",
		Short: "Re-chunk and re-embed every saved item",
		Long: `Re-chunk every item with the given window and re-embed the new chunks.
Each item is replaced atomically. Items that fail are logged and counted; the
command only fails when the item list itself cannot be read.`,
		RunE: runRebuildChunks,
	}

	cmd.Flags().Int("size", 0, "Chunk size in characters (default INBOX_CHUNK_SIZE)")
	cmd.Flags().Int("overlap", -1, "Chunk overlap in characters (default INBOX_CHUNK_OVERLAP)")
	cmd.Flags().Int("concurrency", 4, "Items rebuilt in parallel")

	return cmd
}

func runRebuildChunks(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	chunkCfg := service.ChunkConfig{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	if size, _ := cmd.Flags().GetInt("size"); size > 0 {
		chunkCfg.Size = size
	}
	if overlap, _ := cmd.Flags().GetInt("overlap"); overlap >= 0 {
		chunkCfg.Overlap = overlap
	}
	if err := chunkCfg.Validate(); err != nil {
		return err
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	a, err := newApp(ctx, cfg, pool, appOptions{})
	if err != nil {
		return err
	}

	stats, err := a.items.RebuildAllChunks(ctx, chunkCfg, concurrency)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rebuilt %d items into %d chunks (%d embedded)\n", stats.Items, stats.Chunks, stats.Embedded)
	if stats.Failed > 0 {
		fmt.Fprintf(out, "%d items failed, see log for details\n", stats.Failed)
	}
	return nil
}
