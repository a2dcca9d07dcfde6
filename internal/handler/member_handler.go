package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/legadoapp/legado/internal/middleware"
	"github.com/legadoapp/legado/internal/model"
)

// MemberServiceInterface は会員ディレクトリハンドラーが必要とするサービスインターフェース。
type MemberServiceInterface interface {
	// List は会員一覧を返す。queryが空でない場合は部分一致で絞り込む。
	List(ctx context.Context, query string) ([]*model.Profile, error)
	// ChangeRole は対象会員のロールを変更する。
	ChangeRole(ctx context.Context, actorID, targetID, rawRole string) error
}

// MemberHandler は会員ディレクトリとロール管理のHTTPハンドラー。
type MemberHandler struct {
	service MemberServiceInterface
}

// NewMemberHandler はMemberHandlerを生成する。
func NewMemberHandler(service MemberServiceInterface) *MemberHandler {
	return &MemberHandler{service: service}
}

// memberResponse は会員一覧のAPIレスポンス。
type memberResponse struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	VestName    string  `json:"vest_name"`
	Phone       string  `json:"phone"`
	City        string  `json:"city"`
	LeaderName  string  `json:"leader_name"`
	PastorName  string  `json:"pastor_name"`
	MemberSince *string `json:"member_since"`
	Role        string  `json:"role"`
}

// changeRoleRequest はロール変更リクエストのボディ。
type changeRoleRequest struct {
	Role string `json:"role"`
}

// List は会員ディレクトリの一覧・検索を処理する。
// GET /api/membros?q=maria
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]memberResponse, len(profiles))
	for i, p := range profiles {
		results[i] = toMemberResponse(p)
	}
	writeJSON(w, http.StatusOK, results)
}

// ChangeRole は会員のロール変更を処理する。
// PUT /api/membros/{id}/role
func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	targetID := chi.URLParam(r, "id")

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.service.ChangeRole(r.Context(), actorID, targetID, req.Role); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toMemberResponse(p *model.Profile) memberResponse {
	return memberResponse{
		ID:          p.ID,
		FullName:    p.FullName,
		VestName:    p.VestName,
		Phone:       p.Phone,
		City:        p.City,
		LeaderName:  p.LeaderName,
		PastorName:  p.PastorName,
		MemberSince: formatDate(p.MemberSince),
		Role:        string(p.Role),
	}
}
