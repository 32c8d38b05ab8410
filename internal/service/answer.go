package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/cloo-solutions/inbox/internal/telemetry"
)

// DefaultGenerationTimeout bounds a single generation call.
const DefaultGenerationTimeout = 30 * time.Second

// Generator produces free text from a grounding prompt. Failures are returned as
// *domain.ProviderError.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// KeywordFallback re-derives citations lexically when generation fails.
type KeywordFallback interface {
	KeywordOnly(ctx context.Context, query string) ([]domain.RetrievalResult, error)
}

// Synthesizer turns retrieved chunks into a cited answer.
type Synthesizer struct {
	generator Generator
	fallback  KeywordFallback
	timeout   time.Duration
}

// NewSynthesizer creates a Synthesizer. A nil generator puts it in mock mode.
func NewSynthesizer(generator Generator, fallback KeywordFallback, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &Synthesizer{
		generator: generator,
		fallback:  fallback,
		timeout:   timeout,
	}
}

// MockMode reports whether generation is disabled.
func (s *Synthesizer) MockMode() bool {
	return s.generator == nil
}

// Synthesize answers question from results. Provider failures never surface as
// errors; only a failing keyword fallback does.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []domain.RetrievalResult) (*domain.AnswerResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "Synthesizer.Synthesize", telemetry.SpanAttributes{
		Operation: "synthesize",
	})
	defer span.End()

	answer, err := s.generate(ctx, BuildPrompt(question, results))
	if err == nil {
		return &domain.AnswerResult{
			Answer:    answer,
			Citations: domain.CitationsFromResults(results),
		}, nil
	}

	if domain.IsMockMode(err) {
		log.Printf("synthesizer: mock mode, answering from keyword search")
	} else {
		log.Printf("synthesizer: generation failed (%s): %v", domain.ProviderErrorKindOf(err), err)
		telemetry.CaptureError(ctx, err)
	}
	span.SetTag("provider.error", string(domain.ProviderErrorKindOf(err)))
	telemetry.AddBreadcrumb(ctx, "answer", "degraded to keyword search: "+domain.DegradedReason(err))

	keyword, ferr := s.fallback.KeywordOnly(ctx, question)
	if ferr != nil {
		span.SetError(ferr)
		return nil, fmt.Errorf("keyword fallback failed: %w", ferr)
	}
	return &domain.AnswerResult{
		Answer:    domain.DegradedAnswer(err),
		Citations: domain.CitationsFromResults(keyword),
		Degraded:  true,
		Tier:      domain.RetrievalTierKeyword,
	}, nil
}

type generation struct {
	text string
	err  error
}

// generate races the provider call against the timeout. The call's context is
// cancelled when the timeout wins so a cooperative generator can stop early.
func (s *Synthesizer) generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", domain.NewProviderError(domain.ProviderUnavailable, "generate", domain.ErrMockMode)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		text, err := s.generator.Generate(ctx, prompt)
		done <- generation{text: text, err: err}
	}()

	select {
	case g := <-done:
		if g.err != nil {
			return "", g.err
		}
		return g.text, nil
	case <-ctx.Done():
		return "", domain.NewProviderError(domain.ProviderTimeout, "generate",
			fmt.Errorf("no response within %s: %w", s.timeout, ctx.Err()))
	}
}

// BuildPrompt enumerates results as numbered sources followed by the answering rules.
func BuildPrompt(question string, results []domain.RetrievalResult) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant answering questions using only the user's saved notes.\n\n")
	b.WriteString("Context:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "Source %d (%s):\n%s\n\n", i+1, r.Source, r.Content)
	}
	b.WriteString("Instructions:\n")
	b.WriteString("- Answer based ONLY on the provided context.\n")
	b.WriteString("- If the context does not contain the answer, say that the information was not found in the notes.\n")
	b.WriteString("- Cite the sources you use by number, for example [Source 1].\n")
	b.WriteString("- Be concise.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}
