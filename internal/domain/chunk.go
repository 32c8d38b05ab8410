package domain

// Chunk is a contiguous, overlapping slice of an item's content.
// A nil Embedding is valid: the provider was unavailable when the chunk was stored.
type Chunk struct {
	ID             string
	ItemID         string
	ChunkIndex     int
	Content        string
	Embedding      []float32
	EmbeddingModel string
}

// HasEmbedding reports whether the chunk carries a usable vector.
func (c *Chunk) HasEmbedding() bool {
	return c != nil && len(c.Embedding) > 0
}

// Embedding is a vector together with the model that produced it.
// Vectors from different models are never compared.
type Embedding struct {
	Vector []float32
	Model  string
}
