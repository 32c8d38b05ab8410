package service

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/cloo-solutions/inbox/internal/telemetry"
)

// DefaultBackfillBatch bounds how many chunks one backfill pass embeds.
const DefaultBackfillBatch = 50

// EmbeddingChunkRepository defines the repository interface for chunk embedding operations
type EmbeddingChunkRepository interface {
	ListStale(ctx context.Context, model string, limit int) ([]*domain.Chunk, error)
	UpdateEmbedding(ctx context.Context, chunkID string, emb domain.Embedding) error
}

// EmbeddingService fills in vectors for chunks stored while the provider was
// unavailable, or embedded by a model other than the current one.
type EmbeddingService struct {
	embedder  Embedder
	chunkRepo EmbeddingChunkRepository
	model     string
	batch     int
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(embedder Embedder, chunkRepo EmbeddingChunkRepository, model string) *EmbeddingService {
	return &EmbeddingService{
		embedder:  embedder,
		chunkRepo: chunkRepo,
		model:     model,
		batch:     DefaultBackfillBatch,
	}
}

// BackfillChunks embeds up to one batch of stale chunks and returns how many were
// updated. It stops at the first unavailable embedding; the provider is likely
// down and the rest of the batch would fail the same way.
func (s *EmbeddingService) BackfillChunks(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.BackfillChunks", telemetry.SpanAttributes{
		Model:     s.model,
		Operation: "backfill",
	})
	defer span.End()

	chunks, err := s.chunkRepo.ListStale(ctx, s.model, s.batch)
	if err != nil {
		span.SetError(err)
		return 0, fmt.Errorf("failed to list stale chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	updated := 0
	for _, chunk := range chunks {
		emb, ok := s.embedder.Embed(ctx, chunk.Content)
		if !ok {
			log.Printf("Backfill paused after %d of %d chunks: embedding unavailable", updated, len(chunks))
			break
		}
		if err := s.chunkRepo.UpdateEmbedding(ctx, chunk.ID, emb); err != nil {
			return updated, fmt.Errorf("failed to update embedding for chunk %s: %w", chunk.ID, err)
		}
		updated++
	}
	return updated, nil
}
