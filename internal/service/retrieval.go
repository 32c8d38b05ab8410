package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/cloo-solutions/inbox/internal/telemetry"
)

// Embedder maps text to a vector. ok is false when the provider is unavailable
// (mock mode or a failed call); that is an ordinary outcome, not an error.
type Embedder interface {
	Embed(ctx context.Context, text string) (emb domain.Embedding, ok bool)
}

// ChunkReader lists every persisted chunk.
type ChunkReader interface {
	ListChunks(ctx context.Context) ([]*domain.Chunk, error)
}

// ItemReader resolves the item that owns a chunk.
type ItemReader interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
}

// RetrievalConfig holds the cascade thresholds.
type RetrievalConfig struct {
	TopK             int
	Threshold        float64
	RelaxedThreshold float64
}

// DefaultRetrievalConfig returns the thresholds used for answering questions.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		TopK:             3,
		Threshold:        0.5,
		RelaxedThreshold: 0.35,
	}
}

// RetrievalOutcome is the ranked context for one question and the tier that produced it.
type RetrievalOutcome struct {
	Results []domain.RetrievalResult
	Tier    domain.RetrievalTier
}

// Empty reports whether nothing relevant was found.
func (o *RetrievalOutcome) Empty() bool {
	return o == nil || len(o.Results) == 0
}

// Retriever runs the semantic → keyword → relaxed-semantic cascade.
type Retriever struct {
	chunks   ChunkReader
	items    ItemReader
	embedder Embedder
	keyword  KeywordSearcher
	cfg      RetrievalConfig
}

// NewRetriever creates a Retriever with the default thresholds and keyword scorer.
// A nil embedder behaves like mock mode.
func NewRetriever(chunks ChunkReader, items ItemReader, embedder Embedder) *Retriever {
	return NewRetrieverWithConfig(chunks, items, embedder, NewKeywordScorer(), DefaultRetrievalConfig())
}

func NewRetrieverWithConfig(chunks ChunkReader, items ItemReader, embedder Embedder, keyword KeywordSearcher, cfg RetrievalConfig) *Retriever {
	defaults := DefaultRetrievalConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = defaults.Threshold
	}
	if cfg.RelaxedThreshold <= 0 {
		cfg.RelaxedThreshold = defaults.RelaxedThreshold
	}
	if keyword == nil {
		keyword = NewKeywordScorer()
	}
	return &Retriever{
		chunks:   chunks,
		items:    items,
		embedder: embedder,
		keyword:  keyword,
		cfg:      cfg,
	}
}

// Retrieve finds the chunks most relevant to query. Each tier is terminal on success.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*RetrievalOutcome, error) {
	ctx, span := telemetry.StartSpan(ctx, "Retriever.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	var queryEmbedding domain.Embedding
	var embedded bool
	if r.embedder != nil {
		queryEmbedding, embedded = r.embedder.Embed(ctx, query)
	}

	candidates, err := r.loadCandidates(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if !embedded {
		log.Printf("retrieval: no query embedding, using keyword search")
		return r.finish(span, r.keyword.Search(query, candidates, r.cfg.TopK), domain.RetrievalTierKeyword), nil
	}

	scored := r.scoreSemantic(queryEmbedding, candidates)

	if semantic := topAbove(scored, r.cfg.Threshold, r.cfg.TopK); len(semantic) > 0 {
		log.Printf("retrieval: semantic tier found %d results (top score %.3f)", len(semantic), semantic[0].Score)
		return r.finish(span, semantic, domain.RetrievalTierSemantic), nil
	}

	if keyword := r.keyword.Search(query, candidates, r.cfg.TopK); len(keyword) > 0 {
		log.Printf("retrieval: keyword tier found %d results", len(keyword))
		return r.finish(span, keyword, domain.RetrievalTierKeyword), nil
	}

	relaxed := topAbove(scored, r.cfg.RelaxedThreshold, r.cfg.TopK)
	if len(relaxed) > 0 {
		log.Printf("retrieval: relaxed tier (%.2f) found %d results", r.cfg.RelaxedThreshold, len(relaxed))
	}
	return r.finish(span, relaxed, domain.RetrievalTierRelaxed), nil
}

// KeywordOnly runs the keyword scorer over every chunk, bypassing the semantic tiers.
func (r *Retriever) KeywordOnly(ctx context.Context, query string) ([]domain.RetrievalResult, error) {
	candidates, err := r.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return r.keyword.Search(query, candidates, r.cfg.TopK), nil
}

func (r *Retriever) finish(span *telemetry.Span, results []domain.RetrievalResult, tier domain.RetrievalTier) *RetrievalOutcome {
	if len(results) == 0 {
		tier = domain.RetrievalTierNone
		results = []domain.RetrievalResult{}
	}
	span.SetTag("retrieval.tier", string(tier))
	return &RetrievalOutcome{Results: results, Tier: tier}
}

// loadCandidates reads all chunks once and resolves each owning item at most once.
// Chunks whose item has vanished are skipped.
func (r *Retriever) loadCandidates(ctx context.Context) ([]ScoringCandidate, error) {
	chunks, err := r.chunks.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}

	items := make(map[string]*domain.Item)
	seen := make(map[string]struct{}, len(chunks))
	candidates := make([]ScoringCandidate, 0, len(chunks))
	for _, c := range chunks {
		if c == nil {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		item, ok := items[c.ItemID]
		if !ok {
			item, err = r.items.GetByID(ctx, c.ItemID)
			if err != nil && !errors.Is(err, domain.ErrItemNotFound) {
				return nil, fmt.Errorf("failed to resolve item %s: %w", c.ItemID, err)
			}
			items[c.ItemID] = item
		}
		if item == nil {
			continue
		}
		candidates = append(candidates, ScoringCandidate{Chunk: c, Item: item})
	}
	return candidates, nil
}

// scoreSemantic scores every candidate that has a vector from the query's model.
// Candidates without a vector are excluded rather than scored as zero.
func (r *Retriever) scoreSemantic(query domain.Embedding, candidates []ScoringCandidate) []domain.RetrievalResult {
	scored := make([]domain.RetrievalResult, 0, len(candidates))
	for _, c := range candidates {
		if !c.Chunk.HasEmbedding() {
			continue
		}
		if c.Chunk.EmbeddingModel != "" && query.Model != "" && c.Chunk.EmbeddingModel != query.Model {
			continue
		}
		scored = append(scored, c.result(CosineSimilarity(query.Vector, c.Chunk.Embedding)))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// topAbove keeps results strictly above threshold from an already sorted slice.
func topAbove(sorted []domain.RetrievalResult, threshold float64, topK int) []domain.RetrievalResult {
	out := make([]domain.RetrievalResult, 0, topK)
	for _, r := range sorted {
		if len(out) >= topK {
			break
		}
		if r.Score > threshold {
			out = append(out, r)
		}
	}
	return out
}
