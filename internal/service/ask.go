package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/cloo-solutions/inbox/internal/telemetry"
)

// AnswerSynthesizer is the generation half of a question.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question string, results []domain.RetrievalResult) (*domain.AnswerResult, error)
}

// ContextRetriever is the retrieval half of a question.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) (*RetrievalOutcome, error)
}

// AskService answers questions over saved items.
type AskService struct {
	retriever   ContextRetriever
	synthesizer AnswerSynthesizer
}

// NewAskService creates a new AskService
func NewAskService(retriever ContextRetriever, synthesizer AnswerSynthesizer) *AskService {
	return &AskService{
		retriever:   retriever,
		synthesizer: synthesizer,
	}
}

// Ask retrieves context for question and synthesizes a cited answer. An empty
// retrieval yields the fixed no-information answer without calling the synthesizer.
func (s *AskService) Ask(ctx context.Context, question string) (*domain.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	ctx, span := telemetry.StartSpan(ctx, "AskService.Ask", telemetry.SpanAttributes{
		Operation: "ask",
	})
	defer span.End()

	outcome, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if outcome.Empty() {
		return &domain.AnswerResult{
			Answer:    domain.NoRelevantInformationAnswer,
			Citations: []domain.Citation{},
			Tier:      domain.RetrievalTierNone,
		}, nil
	}

	result, err := s.synthesizer.Synthesize(ctx, question, outcome.Results)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if !result.Degraded {
		result.Tier = outcome.Tier
		result.LowConfidence = outcome.Tier == domain.RetrievalTierRelaxed
	}
	span.SetTag("retrieval.tier", string(result.Tier))
	return result, nil
}
