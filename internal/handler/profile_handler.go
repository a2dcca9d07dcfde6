package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/legadoapp/legado/internal/middleware"
	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/profile"
)

// dateLayout はプロフィールの日付フィールドのワイヤ形式。
const dateLayout = "2006-01-02"

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	// GetOrCreate はプロフィールを返す。未作成の場合は初期行を作成する。
	GetOrCreate(ctx context.Context, userID string) (*profile.ProfileStatus, error)
	// Update はプロフィールを正規化して保存し、保存後の完了状態を返す。
	Update(ctx context.Context, userID string, in profile.UpdateInput) (*profile.ProfileStatus, error)
}

// ProfileHandler はプロフィール参照・更新のHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// updateProfileRequest はプロフィール更新リクエストのボディ。
// 日付は"2006-01-02"形式の文字列で受け取る。
type updateProfileRequest struct {
	FullName      string  `json:"full_name"`
	VestName      string  `json:"vest_name"`
	BirthDate     *string `json:"birth_date"`
	Phone         string  `json:"phone"`
	AddressStreet string  `json:"address_street"`
	City          string  `json:"city"`
	CEP           string  `json:"cep"`
	LeaderName    string  `json:"leader_name"`
	PastorName    string  `json:"pastor_name"`
	MemberSince   *string `json:"member_since"`
	Baptized      *bool   `json:"baptized"`
}

// profileResponse はプロフィール情報のAPIレスポンス。
type profileResponse struct {
	ID            string   `json:"id"`
	FullName      string   `json:"full_name"`
	VestName      string   `json:"vest_name"`
	BirthDate     *string  `json:"birth_date"`
	Phone         string   `json:"phone"`
	AddressStreet string   `json:"address_street"`
	City          string   `json:"city"`
	CEP           string   `json:"cep"`
	LeaderName    string   `json:"leader_name"`
	PastorName    string   `json:"pastor_name"`
	MemberSince   *string  `json:"member_since"`
	Baptized      *bool    `json:"baptized"`
	Role          string   `json:"role"`
	Complete      bool     `json:"complete"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// Get は現在のユーザーのプロフィールを返す。
// GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	status, err := h.service.GetOrCreate(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(status))
}

// Update は現在のユーザーのプロフィールを更新する。
// PUT /api/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	in := profile.UpdateInput{
		FullName:      req.FullName,
		VestName:      req.VestName,
		Phone:         req.Phone,
		AddressStreet: req.AddressStreet,
		City:          req.City,
		CEP:           req.CEP,
		LeaderName:    req.LeaderName,
		PastorName:    req.PastorName,
		Baptized:      req.Baptized,
	}

	if in.BirthDate, err = parseDate(req.BirthDate); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("data de nascimento inválida, use o formato AAAA-MM-DD"))
		return
	}
	if in.MemberSince, err = parseDate(req.MemberSince); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("data de membresia inválida, use o formato AAAA-MM-DD"))
		return
	}

	status, err := h.service.Update(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(status))
}

// parseDate は"2006-01-02"形式の日付文字列を解析する。nil・空文字は未入力。
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func toProfileResponse(status *profile.ProfileStatus) profileResponse {
	p := status.Profile
	return profileResponse{
		ID:            p.ID,
		FullName:      p.FullName,
		VestName:      p.VestName,
		BirthDate:     formatDate(p.BirthDate),
		Phone:         p.Phone,
		AddressStreet: p.AddressStreet,
		City:          p.City,
		CEP:           p.CEP,
		LeaderName:    p.LeaderName,
		PastorName:    p.PastorName,
		MemberSince:   formatDate(p.MemberSince),
		Baptized:      p.Baptized,
		Role:          string(p.Role),
		Complete:      status.Complete,
		MissingFields: status.MissingFields,
	}
}
