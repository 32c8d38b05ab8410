package openai

import (
	"context"
	"errors"

	"github.com/cloo-solutions/inbox/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultMaxAnswerTokens caps generated answers.
const DefaultMaxAnswerTokens = 1024

// ErrSafetyBlocked is the cause attached when the provider filtered the answer.
var ErrSafetyBlocked = errors.New("response blocked by content filter")

// Generator answers grounding prompts with one chat model, fixed at construction.
type Generator struct {
	api       API
	model     string
	maxTokens int
}

// NewGenerator creates a Generator bound to model.
func NewGenerator(api API, model string) *Generator {
	return &Generator{
		api:       api,
		model:     model,
		maxTokens: DefaultMaxAnswerTokens,
	}
}

// Model returns the chat model in use.
func (g *Generator) Model() string {
	return g.model
}

// Generate returns the model's answer. Errors are always *domain.ProviderError.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.api.CreateChatCompletion(ctx, g.model, prompt, g.maxTokens)
	if err != nil {
		return "", Classify("generate", err)
	}
	if result.FinishReason == openai.FinishReasonContentFilter {
		return "", domain.NewProviderError(domain.ProviderSafetyBlocked, "generate", ErrSafetyBlocked)
	}
	return result.Text, nil
}
