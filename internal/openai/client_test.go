package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOpenAIAPI is a mock for the provider API
type MockOpenAIAPI struct {
	mock.Mock
}

func (m *MockOpenAIAPI) CreateEmbeddings(ctx context.Context, model, text string, dimensions int) ([]float32, error) {
	args := m.Called(ctx, model, text, dimensions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockOpenAIAPI) CreateChatCompletion(ctx context.Context, model, prompt string, maxTokens int) (ChatResult, error) {
	args := m.Called(ctx, model, prompt, maxTokens)
	return args.Get(0).(ChatResult), args.Error(1)
}

func vector(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(i) * 0.001
	}
	return v
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, Config{})

	ctx := context.Background()
	text := "This is a test document about Go programming."
	expected := vector(DefaultEmbeddingDimensions)

	mockAPI.On("CreateEmbeddings", ctx, string(DefaultEmbeddingModel), text, 0).Return(expected, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.NoError(t, err)
	assert.Equal(t, expected, embedding)
	assert.Equal(t, "text-embedding-3-small", client.Model())
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client := NewClient("")

	embedding, err := client.GenerateEmbedding(context.Background(), "")

	assert.Nil(t, embedding)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, Config{})

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, mock.Anything, "Test text", 0).Return(nil, errors.New("connection reset"))

	embedding, err := client.GenerateEmbedding(ctx, "Test text")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Contains(t, err.Error(), "failed to create embedding")
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, Config{EmbeddingDimensions: 768})

	mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything, "text", 768).Return(vector(1536), nil)

	_, err := client.GenerateEmbedding(context.Background(), "text")
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestClient_GenerateEmbedding_AnyLengthWhenDimensionsUnset(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, Config{EmbeddingModel: "text-embedding-004"})

	mockAPI.On("CreateEmbeddings", mock.Anything, "text-embedding-004", "text", 0).Return(vector(768), nil)
	mockAPI.On("CreateEmbeddings", mock.Anything, "text-embedding-004", "nothing", 0).Return([]float32{}, nil)

	embedding, err := client.GenerateEmbedding(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, embedding, 768)

	_, err = client.GenerateEmbedding(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestClient_GenerateEmbedding_Cache(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, Config{CacheSize: 8})

	mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything, "repeat", 0).Return(vector(DefaultEmbeddingDimensions), nil).Once()

	first, err := client.GenerateEmbedding(context.Background(), "repeat")
	require.NoError(t, err)
	second, err := client.GenerateEmbedding(context.Background(), "repeat")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	mockAPI.AssertNumberOfCalls(t, "CreateEmbeddings", 1)
}

func TestNewClient(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "test-api-key", BaseURL: "http://localhost:9999/v1", EmbeddingModel: "custom"})

	assert.NotNil(t, client.API())
	assert.Equal(t, "custom", client.Model())
}
