package openai

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DefaultProbeTimeout bounds a single connectivity probe.
const DefaultProbeTimeout = 10 * time.Second

const probePrompt = "Reply with OK."

// Probe statuses reported by the provider health check.
const (
	StatusMockMode = "mock_mode"
	StatusHealthy  = "healthy"
	StatusError    = "error"
)

// ProbeResult is the outcome of a live connectivity check.
type ProbeResult struct {
	Connected bool   `json:"connected"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Model     string `json:"model,omitempty"`
}

// ResolveChatModel tries each candidate in order and returns the first that
// answers a probe. When none does it returns the first candidate and the last error,
// so generation still has a model to try and will fall back per request.
func ResolveChatModel(ctx context.Context, api API, models []string, timeout time.Duration) (string, error) {
	if len(models) == 0 {
		return "", fmt.Errorf("no chat models configured")
	}

	var lastErr error
	for _, model := range models {
		if err := probeModel(ctx, api, model, timeout); err != nil {
			log.Printf("openai: chat model %s unavailable: %v", model, err)
			lastErr = err
			continue
		}
		log.Printf("openai: using chat model %s", model)
		return model, nil
	}
	return models[0], lastErr
}

// Prober checks provider connectivity on demand.
type Prober struct {
	api     API
	model   string
	timeout time.Duration
}

// NewProber creates a Prober. A nil api means mock mode.
func NewProber(api API, model string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{api: api, model: model, timeout: timeout}
}

// Check performs one live call and reports the result. It never returns an error.
func (p *Prober) Check(ctx context.Context) ProbeResult {
	if p == nil || p.api == nil {
		return ProbeResult{
			Connected: false,
			Status:    StatusMockMode,
			Message:   "Running in mock mode (no valid API key)",
		}
	}

	if err := probeModel(ctx, p.api, p.model, p.timeout); err != nil {
		return ProbeResult{
			Connected: false,
			Status:    StatusError,
			Message:   err.Error(),
			Model:     p.model,
		}
	}
	return ProbeResult{
		Connected: true,
		Status:    StatusHealthy,
		Message:   "Connected to AI provider",
		Model:     p.model,
	}
}

func probeModel(ctx context.Context, api API, model string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := api.CreateChatCompletion(ctx, model, probePrompt, 5); err != nil {
		return Classify("probe", err)
	}
	return nil
}
