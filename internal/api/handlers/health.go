package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/inbox/internal/api"
	"github.com/cloo-solutions/inbox/internal/openai"
)

type ProviderChecker interface {
	Check(ctx context.Context) openai.ProbeResult
}

type HealthHandler struct {
	checker ProviderChecker
}

func NewHealthHandler(checker ProviderChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Provider runs a live probe against the configured chat model. A failed
// probe is still a 200: the server itself is fine and falls back to
// keyword answers.
func (h *HealthHandler) Provider(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.checker.Check(r.Context()))
}
