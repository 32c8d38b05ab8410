package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/cloo-solutions/inbox/internal/pagination"
	"github.com/cloo-solutions/inbox/internal/telemetry"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ItemRepositoryInterface defines the repository interface for item persistence
type ItemRepositoryInterface interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	ListAll(ctx context.Context) ([]*domain.Item, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*ItemPageResult, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) error
}

// ChunkRepositoryInterface defines the repository interface for chunk persistence
type ChunkRepositoryInterface interface {
	ListChunks(ctx context.Context) ([]*domain.Chunk, error)
	ListByItem(ctx context.Context, itemID string) ([]*domain.Chunk, error)
	ReplaceChunks(ctx context.Context, itemID string, chunks []*domain.Chunk) error
	ListStale(ctx context.Context, model string, limit int) ([]*domain.Chunk, error)
	UpdateEmbedding(ctx context.Context, chunkID string, emb domain.Embedding) error
}

type ItemPageResult struct {
	Items      []*domain.Item
	NextCursor string
	HasMore    bool
}

// PageExtractor fetches a URL and pulls its readable text.
type PageExtractor interface {
	Extract(ctx context.Context, rawURL string) (*domain.ExtractedPage, error)
}

// Archiver keeps the raw HTML of scraped pages.
type Archiver interface {
	PutSnapshot(ctx context.Context, key string, body []byte) error
	DeleteSnapshot(ctx context.Context, key string) error
	SnapshotURL(ctx context.Context, key string) (string, error)
}

// IngestRequest is a new note or URL to save.
type IngestRequest struct {
	Kind    domain.ItemKind
	Content string
}

// UpdateRequest patches an item. Nil fields are left unchanged.
type UpdateRequest struct {
	Title   *string
	Content *string
}

// UUIDGenerator issues item and chunk ids.
type UUIDGenerator interface {
	NewString() string
}

type randomUUIDs struct{}

func (randomUUIDs) NewString() string { return uuid.NewString() }

// RebuildStats summarises a RebuildAllChunks run.
type RebuildStats struct {
	Items    int
	Chunks   int
	Embedded int
	Failed   int
}

// ItemService handles saving, editing and deleting items together with their chunks.
type ItemService struct {
	items     ItemRepositoryInterface
	txRunner  TxRunner
	embedder  Embedder
	extractor PageExtractor
	archiver  Archiver
	uuidGen   UUIDGenerator
	chunkCfg  ChunkConfig
	now       func() time.Time
}

// ItemServiceOption configures optional ItemService collaborators.
type ItemServiceOption func(*ItemService)

// WithExtractor enables URL ingestion.
func WithExtractor(e PageExtractor) ItemServiceOption {
	return func(s *ItemService) { s.extractor = e }
}

// WithArchiver stores raw HTML of scraped pages.
func WithArchiver(a Archiver) ItemServiceOption {
	return func(s *ItemService) { s.archiver = a }
}

// WithChunkConfig overrides the chunk window.
func WithChunkConfig(cfg ChunkConfig) ItemServiceOption {
	return func(s *ItemService) { s.chunkCfg = cfg }
}

// WithUUIDGenerator overrides id generation (for testing).
func WithUUIDGenerator(g UUIDGenerator) ItemServiceOption {
	return func(s *ItemService) { s.uuidGen = g }
}

// NewItemService creates a new ItemService instance. A nil embedder stores every
// chunk without a vector.
func NewItemService(items ItemRepositoryInterface, txRunner TxRunner, embedder Embedder, opts ...ItemServiceOption) *ItemService {
	s := &ItemService{
		items:    items,
		txRunner: txRunner,
		embedder: embedder,
		uuidGen:  randomUUIDs{},
		chunkCfg: DefaultChunkConfig(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest saves a note or scrapes and saves a URL. It returns the stored item
// and the number of chunks created for it.
func (s *ItemService) Ingest(ctx context.Context, req IngestRequest) (*domain.Item, int, error) {
	if !domain.IsValidItemKind(req.Kind) {
		return nil, 0, domain.ErrInvalidItemKind
	}
	raw := strings.TrimSpace(req.Content)
	if raw == "" {
		return nil, 0, domain.ErrMissingRequiredField
	}

	ctx, span := telemetry.StartSpan(ctx, "ItemService.Ingest", telemetry.SpanAttributes{
		ItemKind:  string(req.Kind),
		Operation: "ingest",
	})
	defer span.End()

	item := domain.NewItem(s.uuidGen.NewString(), req.Kind, raw, domain.NoteTitle, domain.NoteSource, s.now())

	var page *domain.ExtractedPage
	if req.Kind == domain.ItemKindURL {
		var err error
		page, err = s.extract(ctx, raw)
		if err != nil {
			span.SetError(err)
			return nil, 0, err
		}
		item.Content = page.Content
		item.Title = page.Title
		item.Source = page.Source
	}

	chunks, err := s.buildChunks(ctx, item, s.chunkCfg)
	if err != nil {
		return nil, 0, err
	}

	if page != nil && len(page.RawHTML) > 0 && s.archiver != nil {
		key := snapshotKey(item.ID)
		if err := s.archiver.PutSnapshot(ctx, key, page.RawHTML); err != nil {
			// Archiving is best effort; the item is still useful without it.
			log.Printf("Warning: failed to archive snapshot for %s: %v", item.ID, err)
		} else {
			item.SnapshotKey = key
		}
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Items().Create(ctx, item); err != nil {
			return err
		}
		return repos.Chunks().ReplaceChunks(ctx, item.ID, chunks)
	})
	if err != nil {
		span.SetError(err)
		s.discardSnapshot(ctx, item.SnapshotKey)
		return nil, 0, err
	}

	log.Printf("Saved %s item %s with %d chunks", item.Kind, item.ID, len(chunks))
	return item, len(chunks), nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	return s.items.GetByID(ctx, id)
}

// List returns one page of items, newest first.
func (s *ItemService) List(ctx context.Context, cursor string, limit int) (*ItemPageResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	return s.items.ListWithCursor(ctx, decoded, limit)
}

// Update patches title and/or content. A content change regenerates every chunk;
// embeddings are computed first so the swap inside the transaction is fast and
// readers never see the item without chunks.
func (s *ItemService) Update(ctx context.Context, id string, req UpdateRequest) (*domain.Item, error) {
	ctx, span := telemetry.StartSpan(ctx, "ItemService.Update", telemetry.SpanAttributes{
		ItemID:    id,
		Operation: "update",
	})
	defer span.End()

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}

	var chunks []*domain.Chunk
	contentChanged := false
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, domain.ErrEmptyChunkSet
		}
		if content != item.Content {
			item.Content = content
			contentChanged = true
			chunks, err = s.buildChunks(ctx, item, s.chunkCfg)
			if err != nil {
				return nil, err
			}
		}
	}
	item.UpdatedAt = s.now()

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Items().Update(ctx, item); err != nil {
			return err
		}
		if !contentChanged {
			return nil
		}
		return repos.Chunks().ReplaceChunks(ctx, item.ID, chunks)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if contentChanged {
		log.Printf("Rebuilt %d chunks for item %s", len(chunks), item.ID)
	}
	return item, nil
}

// Delete removes an item; its chunks go with it.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.discardSnapshot(ctx, item.SnapshotKey)
	return nil
}

// SnapshotURL returns a time-limited link to the archived page.
func (s *ItemService) SnapshotURL(ctx context.Context, id string) (string, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if item.SnapshotKey == "" || s.archiver == nil {
		return "", domain.ErrSnapshotNotFound
	}
	return s.archiver.SnapshotURL(ctx, item.SnapshotKey)
}

// RebuildAllChunks re-chunks and re-embeds every item with cfg. Items are processed
// concurrently up to concurrency; a failing item is logged and counted, not fatal.
func (s *ItemService) RebuildAllChunks(ctx context.Context, cfg ChunkConfig, concurrency int) (*RebuildStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	items, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var chunkCount, embedded, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, item := range items {
		g.Go(func() error {
			chunks, err := s.buildChunks(gctx, item, cfg)
			if err == nil {
				err = s.txRunner.WithTx(gctx, func(repos TxRepositories) error {
					return repos.Chunks().ReplaceChunks(gctx, item.ID, chunks)
				})
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("Error rebuilding chunks for item %s: %v", item.ID, err)
				failed.Add(1)
				return nil
			}
			chunkCount.Add(int64(len(chunks)))
			for _, c := range chunks {
				if c.HasEmbedding() {
					embedded.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RebuildStats{
		Items:    len(items),
		Chunks:   int(chunkCount.Load()),
		Embedded: int(embedded.Load()),
		Failed:   int(failed.Load()),
	}, nil
}

func (s *ItemService) extract(ctx context.Context, rawURL string) (*domain.ExtractedPage, error) {
	if s.extractor == nil {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "url ingestion is not enabled")
	}
	page, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnprocessable, domain.ErrExtractionFailed.Message, err)
	}
	if page.Source == "" {
		page.Source = rawURL
	}
	if page.Title == "" {
		page.Title = page.Source
	}
	return page, nil
}

// buildChunks splits item content and embeds each window. Embedding failures leave
// the chunk without a vector.
func (s *ItemService) buildChunks(ctx context.Context, item *domain.Item, cfg ChunkConfig) ([]*domain.Chunk, error) {
	texts := ChunkAll(item.Content, cfg)
	if len(texts) == 0 {
		return nil, domain.ErrEmptyChunkSet
	}

	chunks := make([]*domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunk := &domain.Chunk{
			ID:         s.uuidGen.NewString(),
			ItemID:     item.ID,
			ChunkIndex: i,
			Content:    text,
		}
		if s.embedder != nil {
			if emb, ok := s.embedder.Embed(ctx, text); ok {
				chunk.Embedding = emb.Vector
				chunk.EmbeddingModel = emb.Model
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (s *ItemService) discardSnapshot(ctx context.Context, key string) {
	if key == "" || s.archiver == nil {
		return
	}
	if err := s.archiver.DeleteSnapshot(ctx, key); err != nil {
		log.Printf("Warning: failed to delete snapshot %s: %v", key, err)
	}
}

func snapshotKey(itemID string) string {
	return "snapshots/" + itemID + ".html"
}
