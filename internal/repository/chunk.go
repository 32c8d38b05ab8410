package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository handles persistence of item chunks and their optional vectors.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ListChunks returns every chunk in insertion order: oldest item first, then
// chunk order within the item. Keyword ties keep this order.
func (r *ChunkRepository) ListChunks(ctx context.Context) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.item_id, c.chunk_index, c.content, c.embedding::text, c.embedding_model
		 FROM chunks c
		 JOIN items i ON i.id = c.item_id
		 ORDER BY i.created_at, i.id, c.chunk_index`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

func (r *ChunkRepository) ListByItem(ctx context.Context, itemID string) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, item_id, chunk_index, content, embedding::text, embedding_model
		 FROM chunks
		 WHERE item_id = $1
		 ORDER BY chunk_index`,
		itemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

// ReplaceChunks deletes existing chunks for an item and inserts new ones.
// Callers run it inside a transaction so readers never see the item without chunks.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, itemID string, chunks []*domain.Chunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chunks WHERE item_id = $1`, itemID)
	if err != nil {
		return err
	}

	for _, c := range chunks {
		_, err := r.db.Exec(ctx,
			`INSERT INTO chunks (id, item_id, chunk_index, content, embedding, embedding_model)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID,
			itemID,
			c.ChunkIndex,
			c.Content,
			vectorOrNil(c.Embedding),
			nullableString(c.EmbeddingModel),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	return nil
}

// ListStale returns chunks with no vector or a vector from a model other than model.
func (r *ChunkRepository) ListStale(ctx context.Context, model string, limit int) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, item_id, chunk_index, content, embedding::text, embedding_model
		 FROM chunks
		 WHERE embedding IS NULL OR embedding_model IS DISTINCT FROM $1
		 ORDER BY created_at
		 LIMIT $2`,
		model, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

func (r *ChunkRepository) UpdateEmbedding(ctx context.Context, chunkID string, emb domain.Embedding) error {
	_, err := r.db.Exec(ctx,
		`UPDATE chunks SET embedding = $1, embedding_model = $2 WHERE id = $3`,
		pgvector.NewVector(emb.Vector), emb.Model, chunkID,
	)
	return err
}

func vectorOrNil(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

func scanChunkRows(rows pgx.Rows) ([]*domain.Chunk, error) {
	results := []*domain.Chunk{}
	for rows.Next() {
		var c domain.Chunk
		var embedding, model *string
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ChunkIndex, &c.Content, &embedding, &model); err != nil {
			return nil, err
		}
		if embedding != nil {
			var v pgvector.Vector
			if err := v.Scan(*embedding); err != nil {
				return nil, fmt.Errorf("failed to parse embedding for chunk %s: %w", c.ID, err)
			}
			c.Embedding = v.Slice()
		}
		c.EmbeddingModel = stringOrEmpty(model)
		results = append(results, &c)
	}
	return results, rows.Err()
}
