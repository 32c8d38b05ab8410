package jobs

import (
	"context"
	"log"
)

// maxBackfillPasses bounds the work done in one tick so shutdown stays prompt.
const maxBackfillPasses = 20

// Backfiller embeds one batch of chunks that have no current vector.
type Backfiller interface {
	BackfillChunks(ctx context.Context) (int, error)
}

// BackfillWorker fills in vectors for chunks saved while the provider was down
// or embedded by a previous model.
type BackfillWorker struct {
	service Backfiller
}

// NewBackfillWorker creates a new BackfillWorker instance
func NewBackfillWorker(service Backfiller) *BackfillWorker {
	return &BackfillWorker{service: service}
}

// ProcessJobs implements the JobProcessor interface
func (w *BackfillWorker) ProcessJobs(ctx context.Context) error {
	total := 0
	for pass := 0; pass < maxBackfillPasses; pass++ {
		if ctx.Err() != nil {
			break
		}
		n, err := w.service.BackfillChunks(ctx)
		total += n
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	if total > 0 {
		log.Printf("Backfilled embeddings for %d chunks", total)
	}
	return nil
}
