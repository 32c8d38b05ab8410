package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cloo-solutions/inbox/internal/api"
	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/cloo-solutions/inbox/internal/service"
	"github.com/go-chi/chi/v5"
)

type ItemService interface {
	Ingest(ctx context.Context, req service.IngestRequest) (*domain.Item, int, error)
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, cursor string, limit int) (*service.ItemPageResult, error)
	Update(ctx context.Context, id string, req service.UpdateRequest) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
	SnapshotURL(ctx context.Context, id string) (string, error)
}

type ItemHandler struct {
	svc ItemService
}

func NewItemHandler(svc ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

type IngestRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type IngestResponse struct {
	ItemID        string `json:"item_id"`
	ChunksCreated int    `json:"chunks_created"`
}

type UpdateItemRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type ItemResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	Content     string `json:"content"`
	HasSnapshot bool   `json:"has_snapshot"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ItemListResponse struct {
	Items   []*ItemResponse `json:"items"`
	Cursor  string          `json:"cursor,omitempty"`
	HasMore bool            `json:"has_more"`
}

type SnapshotResponse struct {
	URL string `json:"url"`
}

func itemToResponse(i *domain.Item) *ItemResponse {
	return &ItemResponse{
		ID:          i.ID,
		Type:        string(i.Kind),
		Title:       i.Title,
		Source:      i.Source,
		Content:     i.Content,
		HasSnapshot: i.SnapshotKey != "",
		CreatedAt:   i.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   i.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ItemHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	if req.Type == "" || strings.TrimSpace(req.Content) == "" {
		api.Error(w, http.StatusBadRequest, "type and content are required")
		return
	}

	item, created, err := h.svc.Ingest(r.Context(), service.IngestRequest{
		Kind:    domain.ItemKind(req.Type),
		Content: req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, IngestResponse{ItemID: item.ID, ChunksCreated: created})
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	page, err := h.svc.List(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ItemResponse, len(page.Items))
	for i, item := range page.Items {
		responses[i] = itemToResponse(item)
	}

	api.Success(w, http.StatusOK, ItemListResponse{
		Items:   responses,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	})
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	item, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, itemToResponse(item))
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateItemRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	if req.Title == nil && req.Content == nil {
		api.Error(w, http.StatusBadRequest, "title or content is required")
		return
	}

	item, err := h.svc.Update(r.Context(), id, service.UpdateRequest{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, itemToResponse(item))
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	url, err := h.svc.SnapshotURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SnapshotResponse{URL: url})
}
