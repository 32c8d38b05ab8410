package service

import (
	"context"
	"sync"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/cloo-solutions/inbox/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockItemRepository is a mock implementation of ItemRepositoryInterface
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemRepository) ListAll(ctx context.Context) ([]*domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Item), args.Error(1)
}

func (m *MockItemRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*ItemPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ItemPageResult), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChunkRepository is a mock implementation of ChunkRepositoryInterface
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) ListChunks(ctx context.Context) ([]*domain.Chunk, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) ListByItem(ctx context.Context, itemID string) ([]*domain.Chunk, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) ReplaceChunks(ctx context.Context, itemID string, chunks []*domain.Chunk) error {
	args := m.Called(ctx, itemID, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) ListStale(ctx context.Context, model string, limit int) ([]*domain.Chunk, error) {
	args := m.Called(ctx, model, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) UpdateEmbedding(ctx context.Context, chunkID string, emb domain.Embedding) error {
	args := m.Called(ctx, chunkID, emb)
	return args.Error(0)
}

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) (domain.Embedding, bool) {
	args := m.Called(ctx, text)
	return args.Get(0).(domain.Embedding), args.Bool(1)
}

// MockExtractor is a mock implementation of PageExtractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, rawURL string) (*domain.ExtractedPage, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedPage), args.Error(1)
}

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) PutSnapshot(ctx context.Context, key string, body []byte) error {
	args := m.Called(ctx, key, body)
	return args.Error(0)
}

func (m *MockArchiver) DeleteSnapshot(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockArchiver) SnapshotURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// MockUUIDGenerator hands out the given ids in order, then "default-uuid".
type MockUUIDGenerator struct {
	mu        sync.Mutex
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

// spyKeywordSearcher counts calls and delegates to the real scorer.
type spyKeywordSearcher struct {
	inner *KeywordScorer
	calls int
}

func newSpyKeywordSearcher() *spyKeywordSearcher {
	return &spyKeywordSearcher{inner: NewKeywordScorer()}
}

func (s *spyKeywordSearcher) Search(query string, candidates []ScoringCandidate, topK int) []domain.RetrievalResult {
	s.calls++
	return s.inner.Search(query, candidates, topK)
}

// stubGenerator answers with a fixed text or error, optionally after blocking
// until its context is done.
type stubGenerator struct {
	text   string
	err    error
	block  bool
	calls  int
	prompt string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.text, g.err
}

// memoryStore is an in-memory item and chunk store used for end-to-end tests.
type memoryStore struct {
	mu     sync.Mutex
	items  map[string]*domain.Item
	order  []string
	chunks map[string][]*domain.Chunk
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		items:  make(map[string]*domain.Item),
		chunks: make(map[string][]*domain.Chunk),
	}
}

func (s *memoryStore) Items() ItemRepositoryInterface   { return s }
func (s *memoryStore) Chunks() ChunkRepositoryInterface { return (*memoryChunks)(s) }

func (s *memoryStore) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	return fn(s)
}

func (s *memoryStore) Create(ctx context.Context, item *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return nil
}

func (s *memoryStore) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

func (s *memoryStore) ListAll(ctx context.Context) ([]*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Item, 0, len(s.order))
	for _, id := range s.order {
		if item, ok := s.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memoryStore) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*ItemPageResult, error) {
	items, _ := s.ListAll(ctx)
	return &ItemPageResult{Items: items}, nil
}

func (s *memoryStore) Update(ctx context.Context, item *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	delete(s.chunks, id)
	return nil
}

type memoryChunks memoryStore

func (c *memoryChunks) ListChunks(ctx context.Context) ([]*domain.Chunk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*domain.Chunk
	for _, id := range c.order {
		out = append(out, c.chunks[id]...)
	}
	return out, nil
}

func (c *memoryChunks) ListByItem(ctx context.Context, itemID string) ([]*domain.Chunk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chunks[itemID], nil
}

func (c *memoryChunks) ReplaceChunks(ctx context.Context, itemID string, chunks []*domain.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks[itemID] = chunks
	return nil
}

func (c *memoryChunks) ListStale(ctx context.Context, model string, limit int) ([]*domain.Chunk, error) {
	return nil, nil
}

func (c *memoryChunks) UpdateEmbedding(ctx context.Context, chunkID string, emb domain.Embedding) error {
	return nil
}
