package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAsker struct {
	mock.Mock
}

func (m *MockAsker) Ask(ctx context.Context, question string) (*domain.AnswerResult, error) {
	args := m.Called(ctx, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnswerResult), args.Error(1)
}

func postQuery(handler *QueryHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	handler.Query(w, req)
	return w
}

func TestQueryHandler_Answer(t *testing.T) {
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, "What is the capital of France?").Return(&domain.AnswerResult{
		Answer: "Paris [Source 1]",
		Citations: []domain.Citation{
			{Content: "The capital of France is Paris.", Source: "Text Note", ItemID: "item-1"},
		},
		Tier: domain.RetrievalTierSemantic,
	}, nil)

	w := postQuery(NewQueryHandler(asker), `{"question":"What is the capital of France?"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Paris [Source 1]", resp["answer"])
	assert.Equal(t, "semantic", resp["tier"])
	assert.NotContains(t, resp, "data")
	assert.NotContains(t, resp, "isMock")
	assert.NotContains(t, resp, "low_confidence")

	sources := resp["sources"].([]interface{})
	require.Len(t, sources, 1)
	src := sources[0].(map[string]interface{})
	assert.Equal(t, "item-1", src["item_id"])
	assert.Equal(t, "Text Note", src["source"])
}

func TestQueryHandler_DegradedAnswerIsFlagged(t *testing.T) {
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, mock.Anything).Return(&domain.AnswerResult{
		Answer:   "AI is unavailable",
		Degraded: true,
		Tier:     domain.RetrievalTierKeyword,
	}, nil)

	w := postQuery(NewQueryHandler(asker), `{"question":"anything"}`)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["isMock"])
	assert.Equal(t, []interface{}{}, resp["sources"])
}

func TestQueryHandler_ProviderFailureIsFlagged(t *testing.T) {
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, mock.Anything).Return(&domain.AnswerResult{
		Answer:    "the AI request timed out",
		Citations: []domain.Citation{{Content: "Paris", Source: "Text Note", ItemID: "item-1"}},
		Degraded:  true,
		Tier:      domain.RetrievalTierKeyword,
	}, nil)

	w := postQuery(NewQueryHandler(asker), `{"question":"capital of France"}`)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["isMock"])
	assert.Equal(t, "keyword", resp["tier"])
}

func TestQueryHandler_NothingFoundIsNotFlagged(t *testing.T) {
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, mock.Anything).Return(&domain.AnswerResult{
		Answer: "I couldn't find any relevant information",
		Tier:   domain.RetrievalTierNone,
	}, nil)

	w := postQuery(NewQueryHandler(asker), `{"question":"unrelated"}`)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "isMock")
	assert.Equal(t, []interface{}{}, resp["sources"])
}

func TestQueryHandler_LowConfidence(t *testing.T) {
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, mock.Anything).Return(&domain.AnswerResult{
		Answer:        "maybe",
		Citations:     []domain.Citation{},
		LowConfidence: true,
		Tier:          domain.RetrievalTierRelaxed,
	}, nil)

	w := postQuery(NewQueryHandler(asker), `{"question":"anything"}`)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["low_confidence"])
	assert.Equal(t, "relaxed", resp["tier"])
}

func TestQueryHandler_BadRequests(t *testing.T) {
	for _, body := range []string{`{bad`, `{}`, `{"question":"  "}`} {
		asker := new(MockAsker)
		w := postQuery(NewQueryHandler(asker), body)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["error"])
		asker.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
	}
}

func TestQueryHandler_HardFailure(t *testing.T) {
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	w := postQuery(NewQueryHandler(asker), `{"question":"anything"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
