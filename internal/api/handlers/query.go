package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloo-solutions/inbox/internal/api"
	"github.com/cloo-solutions/inbox/internal/domain"
)

type Asker interface {
	Ask(ctx context.Context, question string) (*domain.AnswerResult, error)
}

// QueryHandler answers questions. Its response is not wrapped in the data
// envelope because the presentation layer consumes it directly.
type QueryHandler struct {
	asker Asker
}

func NewQueryHandler(asker Asker) *QueryHandler {
	return &QueryHandler{asker: asker}
}

type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the answer body. IsMock marks answers built from keyword
// search because generation was unavailable, from mock mode or a provider failure.
type QueryResponse struct {
	Answer        string            `json:"answer"`
	Sources       []domain.Citation `json:"sources"`
	IsMock        bool              `json:"isMock,omitempty"`
	LowConfidence bool              `json:"low_confidence,omitempty"`
	Tier          string            `json:"tier"`
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	result, err := h.asker.Ask(r.Context(), req.Question)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := result.Citations
	if sources == nil {
		sources = []domain.Citation{}
	}

	api.JSON(w, http.StatusOK, QueryResponse{
		Answer:        result.Answer,
		Sources:       sources,
		IsMock:        result.Degraded,
		LowConfidence: result.LowConfidence,
		Tier:          string(result.Tier),
	})
}
