package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFallback struct {
	results []domain.RetrievalResult
	err     error
	calls   int
}

func (f *stubFallback) KeywordOnly(ctx context.Context, query string) ([]domain.RetrievalResult, error) {
	f.calls++
	return f.results, f.err
}

var sampleResults = []domain.RetrievalResult{
	{ChunkID: "c1", ItemID: "i1", Content: "The capital of France is Paris.", Source: "Text Note", Score: 0.82},
	{ChunkID: "c2", ItemID: "i2", Content: "Lyon is known for food.", Source: "https://example.com", Score: 0.61},
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("What is the capital?", sampleResults)

	assert.Contains(t, prompt, "Source 1 (Text Note):\nThe capital of France is Paris.")
	assert.Contains(t, prompt, "Source 2 (https://example.com):\nLyon is known for food.")
	assert.Contains(t, prompt, "ONLY on the provided context")
	assert.Contains(t, prompt, "not found")
	assert.Contains(t, prompt, "Question: What is the capital?")
}

func TestSynthesizer_Success(t *testing.T) {
	gen := &stubGenerator{text: "Paris [Source 1]."}
	fallback := &stubFallback{}
	s := NewSynthesizer(gen, fallback, time.Second)

	result, err := s.Synthesize(context.Background(), "What is the capital?", sampleResults)
	require.NoError(t, err)
	assert.Equal(t, "Paris [Source 1].", result.Answer)
	assert.False(t, result.Degraded)
	require.Len(t, result.Citations, 2)
	assert.Equal(t, domain.Citation{Content: "The capital of France is Paris.", Source: "Text Note", ItemID: "i1"}, result.Citations[0])
	assert.Equal(t, 0, fallback.calls)
	assert.Contains(t, gen.prompt, "Source 1")
}

func TestSynthesizer_FailureFallsBackToKeyword(t *testing.T) {
	keyword := []domain.RetrievalResult{{ChunkID: "k1", ItemID: "i9", Content: "keyword hit", Source: "Notes"}}

	tests := []struct {
		name   string
		err    error
		phrase string
	}{
		{"quota", domain.NewProviderError(domain.ProviderQuotaExceeded, "generate", errors.New("429")), "quota was exceeded"},
		{"safety", domain.NewProviderError(domain.ProviderSafetyBlocked, "generate", nil), "safety filters"},
		{"unavailable", domain.NewProviderError(domain.ProviderUnavailable, "generate", errors.New("503")), "currently unavailable"},
		{"untyped", errors.New("boom"), "currently unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := &stubFallback{results: keyword}
			s := NewSynthesizer(&stubGenerator{err: tt.err}, fallback, time.Second)

			result, err := s.Synthesize(context.Background(), "q", sampleResults)
			require.NoError(t, err)
			assert.True(t, result.Degraded)
			assert.Contains(t, result.Answer, tt.phrase)
			assert.Equal(t, domain.CitationsFromResults(keyword), result.Citations)
			assert.Equal(t, 1, fallback.calls)
		})
	}
}

func TestSynthesizer_Timeout(t *testing.T) {
	gen := &stubGenerator{block: true}
	fallback := &stubFallback{results: []domain.RetrievalResult{{ChunkID: "k1", ItemID: "i1", Content: "hit", Source: "S"}}}
	s := NewSynthesizer(gen, fallback, 20*time.Millisecond)

	start := time.Now()
	result, err := s.Synthesize(context.Background(), "q", sampleResults)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.Answer, "timed out")
	assert.Len(t, result.Citations, 1)
}

func TestSynthesizer_TimeoutWithUncooperativeGenerator(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	gen := generatorFunc(func(ctx context.Context, prompt string) (string, error) {
		<-release
		return "too late", nil
	})
	s := NewSynthesizer(gen, &stubFallback{}, 20*time.Millisecond)

	result, err := s.Synthesize(context.Background(), "q", sampleResults)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.Answer, "timed out")
}

func TestSynthesizer_MockModeSkipsProvider(t *testing.T) {
	fallback := &stubFallback{results: []domain.RetrievalResult{}}
	s := NewSynthesizer(nil, fallback, time.Second)
	assert.True(t, s.MockMode())

	result, err := s.Synthesize(context.Background(), "q", sampleResults)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.Answer, "mock mode")
	assert.NotNil(t, result.Citations)
	assert.Empty(t, result.Citations)
}

func TestSynthesizer_FallbackErrorSurfaces(t *testing.T) {
	s := NewSynthesizer(nil, &stubFallback{err: errors.New("db down")}, time.Second)
	_, err := s.Synthesize(context.Background(), "q", sampleResults)
	assert.Error(t, err)
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
