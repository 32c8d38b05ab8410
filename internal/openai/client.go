package openai

import (
	"context"
	"errors"
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the native dimension of text-embedding-3-small
	DefaultEmbeddingDimensions = 1536
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoChoices is returned when a completion carries no choices
	ErrNoChoices = errors.New("no completion choices returned")
)

// ChatResult is the first choice of a chat completion.
type ChatResult struct {
	Text         string
	FinishReason openai.FinishReason
}

// API is the subset of the provider used here; tests replace it with a mock.
type API interface {
	CreateEmbeddings(ctx context.Context, model, text string, dimensions int) ([]float32, error)
	CreateChatCompletion(ctx context.Context, model, prompt string, maxTokens int) (ChatResult, error)
}

// OpenAIAdapter implements API on top of go-openai. BaseURL lets it target any
// OpenAI-compatible endpoint.
type OpenAIAdapter struct {
	client *openai.Client
}

func NewOpenAIAdapter(apiKey, baseURL string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAdapter{client: openai.NewClientWithConfig(cfg)}
}

// CreateEmbeddings calls the embeddings endpoint for a single input
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, model, text string, dimensions int) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	}
	if dimensions > 0 {
		req.Dimensions = dimensions
	}

	resp, err := a.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	return resp.Data[0].Embedding, nil
}

// CreateChatCompletion sends prompt as a single user message
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, model, prompt string, maxTokens int) (ChatResult, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return ChatResult{}, err
	}
	if len(resp.Choices) == 0 {
		return ChatResult{}, ErrNoChoices
	}
	return ChatResult{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}

type Config struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      string
	EmbeddingDimensions int
	// CacheSize bounds the in-process embedding cache; 0 disables it
	CacheSize int
}

// Client generates embeddings and keeps recent query vectors in an LRU cache.
type Client struct {
	api        API
	model      string
	dimensions int
	cache      *lru.Cache[string, []float32]
}

// NewClient creates a new client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	return newClient(NewOpenAIAdapter(cfg.APIKey, cfg.BaseURL), cfg)
}

func newClient(api API, cfg Config) *Client {
	model := cfg.EmbeddingModel
	if model == "" {
		model = string(DefaultEmbeddingModel)
	}
	c := &Client{
		api:        api,
		model:      model,
		dimensions: cfg.EmbeddingDimensions,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []float32](cfg.CacheSize)
		if err != nil {
			log.Printf("openai: embedding cache disabled: %v", err)
		} else {
			c.cache = cache
		}
	}
	return c
}

// API exposes the underlying provider API so generation can share the connection.
func (c *Client) API() API {
	return c.api
}

// Model returns the embedding model name stamped on every vector.
func (c *Client) Model() string {
	return c.model
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(text); ok {
			return cached, nil
		}
	}

	embedding, err := c.api.CreateEmbeddings(ctx, c.model, text, c.dimensions)
	if err != nil {
		return nil, Classify("embed", fmt.Errorf("failed to create embedding: %w", err))
	}

	// Zero dimensions accepts whatever length the model produces.
	if len(embedding) == 0 || (c.dimensions > 0 && len(embedding) != c.dimensions) {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimensions, len(embedding), c.dimensions)
	}

	if c.cache != nil {
		c.cache.Add(text, embedding)
	}
	return embedding, nil
}
