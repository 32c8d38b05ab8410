package service

import (
	"iter"
	"slices"

	"github.com/cloo-solutions/inbox/internal/domain"
)

// ChunkConfig controls how item text is windowed into chunks.
// Lengths are counted in characters (runes), not tokens.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig provides the defaults used for ingestion.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    800,
		Overlap: 150,
	}
}

// Validate rejects configurations that would never advance the window.
func (c ChunkConfig) Validate() error {
	if c.Size <= 0 || c.Overlap < 0 || c.Overlap >= c.Size {
		return domain.ErrInvalidChunkConfig
	}
	return nil
}

// ChunkText returns a lazy sequence of overlapping windows over text.
// Each window starts Size-Overlap characters after the previous one. Once the
// unconsumed remainder is no longer than Overlap it is left to the previous
// window's tail. The sequence can be ranged over any number of times.
func ChunkText(text string, cfg ChunkConfig) iter.Seq[string] {
	if cfg.Validate() != nil {
		cfg = DefaultChunkConfig()
	}
	return func(yield func(string) bool) {
		runes := []rune(text)
		step := cfg.Size - cfg.Overlap
		for start := 0; start < len(runes); start += step {
			end := min(start+cfg.Size, len(runes))
			if !yield(string(runes[start:end])) {
				return
			}
			if start+step+cfg.Overlap >= len(runes) {
				return
			}
		}
	}
}

// ChunkAll materializes ChunkText.
func ChunkAll(text string, cfg ChunkConfig) []string {
	return slices.Collect(ChunkText(text, cfg))
}
