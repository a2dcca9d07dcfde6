package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/legadoapp/legado/internal/event"
	"github.com/legadoapp/legado/internal/middleware"
	"github.com/legadoapp/legado/internal/model"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	// List は期間フィルタに合致する今後のイベントを返す。
	List(ctx context.Context, rng model.EventRange) ([]*model.Event, error)
	// Get はイベント詳細を返す。
	Get(ctx context.Context, id string) (*model.Event, error)
	// Create はイベントを作成する。
	Create(ctx context.Context, creatorID string, in event.Input) (*model.Event, error)
	// Update はイベントを更新する。
	Update(ctx context.Context, id string, in event.Input) (*model.Event, error)
	// Delete はイベントを削除する。
	Delete(ctx context.Context, id string) error
}

// EventHandler はイベントカレンダーのHTTPハンドラー。
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{service: service}
}

// eventRequest はイベント作成・更新リクエストのボディ。
type eventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
}

// eventResponse はイベント情報のAPIレスポンス。
type eventResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	CreatedBy   string     `json:"created_by"`
}

// List は期間フィルタ付きのイベント一覧を処理する。
// GET /api/eventos?range=week
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("range")
	rng, ok := model.ParseEventRange(raw)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRangeError(raw))
		return
	}

	events, err := h.service.List(r.Context(), rng)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]eventResponse, len(events))
	for i, e := range events {
		results[i] = toEventResponse(e)
	}
	writeJSON(w, http.StatusOK, results)
}

// Get はイベント詳細を処理する。
// GET /api/eventos/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

// Create はイベント作成を処理する。
// POST /api/eventos
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	e, err := h.service.Create(r.Context(), creatorID, toEventInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(e))
}

// Update はイベント更新を処理する。
// PUT /api/eventos/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	e, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), toEventInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(e))
}

// Delete はイベント削除を処理する。
// DELETE /api/eventos/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toEventInput(req eventRequest) event.Input {
	return event.Input{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	}
}

func toEventResponse(e *model.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		CreatedBy:   e.CreatedBy,
	}
}
