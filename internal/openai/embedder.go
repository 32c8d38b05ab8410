package openai

import (
	"context"
	"log"
	"strings"

	"github.com/cloo-solutions/inbox/internal/domain"
)

// Embedder adapts Client to the "vector or unavailable" contract used by
// retrieval and ingestion. A nil client is mock mode: every call reports
// unavailable without touching the network.
type Embedder struct {
	client *Client
}

// NewEmbedder creates an Embedder. Pass nil to run in mock mode.
func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

// MockMode reports whether embeddings are permanently unavailable.
func (e *Embedder) MockMode() bool {
	return e == nil || e.client == nil
}

// Embed returns the vector for text, or ok=false when the provider is unavailable.
// Errors are logged and never returned.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.Embedding, bool) {
	if e.MockMode() {
		return domain.Embedding{}, false
	}
	if strings.TrimSpace(text) == "" {
		return domain.Embedding{}, false
	}

	vector, err := e.client.GenerateEmbedding(ctx, text)
	if err != nil {
		log.Printf("openai: embedding unavailable (%s): %v", domain.ProviderErrorKindOf(err), err)
		return domain.Embedding{}, false
	}
	return domain.Embedding{Vector: vector, Model: e.client.Model()}, true
}
