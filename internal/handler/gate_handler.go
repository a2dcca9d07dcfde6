package handler

import (
	"context"
	"net/http"

	"github.com/legadoapp/legado/internal/gate"
)

// GateServiceInterface はゲートハンドラーが必要とするサービスインターフェース。
type GateServiceInterface interface {
	// Evaluate はセッションIDとナビゲーション先パスから遷移判定を行う。
	Evaluate(ctx context.Context, sessionID, path string) gate.Evaluation
	// RequiredFields はオンボーディングの必須項目セットを返す。
	RequiredFields() []string
}

// GateHandler はフロントエンドのナビゲーションゲート判定を提供するHTTPハンドラー。
// セッションCookieが無い場合も判定対象（未ログイン扱い）のため、
// セッションミドルウェアの外に配置する。
type GateHandler struct {
	service GateServiceInterface
}

// NewGateHandler はGateHandlerを生成する。
func NewGateHandler(service GateServiceInterface) *GateHandler {
	return &GateHandler{service: service}
}

// gateEvaluationResponse はゲート判定のAPIレスポンス。
type gateEvaluationResponse struct {
	Allow         bool     `json:"allow"`
	RedirectTo    string   `json:"redirect_to,omitempty"`
	State         string   `json:"state"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// Evaluate はナビゲーション先パスに対する遷移判定を返す。
// GET /api/gate/evaluate?path=/eventos
func (h *GateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = gate.PathDashboard
	}

	var sessionID string
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	ev := h.service.Evaluate(r.Context(), sessionID, path)
	if !ev.Ready {
		// リクエストが途中で中断された。結果は破棄する。
		return
	}

	writeJSON(w, http.StatusOK, gateEvaluationResponse{
		Allow:         ev.Action.Allow,
		RedirectTo:    ev.Action.RedirectTo,
		State:         ev.State.String(),
		MissingFields: ev.MissingFields,
	})
}

// RequiredFields はオンボーディング画面が表示する必須項目を返す。
// GET /api/gate/required-fields
func (h *GateHandler) RequiredFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"required_fields": h.service.RequiredFields(),
	})
}
