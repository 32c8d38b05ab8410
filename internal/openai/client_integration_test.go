//go:build integration

package openai

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_GenerateEmbedding_RealAPI(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}

	client := NewClient(apiKey)
	embedding, err := client.GenerateEmbedding(context.Background(), "This is a test document for generating embeddings.")

	require.NoError(t, err)
	assert.Len(t, embedding, DefaultEmbeddingDimensions)
}

func TestIntegration_ResolveChatModel_RealAPI(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}

	api := NewOpenAIAdapter(apiKey, os.Getenv("OPENAI_BASE_URL"))
	model, err := ResolveChatModel(context.Background(), api, []string{"gpt-4o-mini"}, DefaultProbeTimeout)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", model)

	answer, err := NewGenerator(api, model).Generate(context.Background(), "Say hello in one word.")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
}
