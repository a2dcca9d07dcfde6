package handler

import (
	"context"
	"net/http"

	"github.com/legadoapp/legado/internal/middleware"
	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/report"
)

// ReportServiceInterface はレポートハンドラーが必要とするサービスインターフェース。
type ReportServiceInterface interface {
	// Generate は閲覧者のロールに応じたスコープで人口統計レポートを生成する。
	Generate(ctx context.Context, viewer *model.Profile) (*report.Report, error)
}

// ReportHandler は会員人口統計レポートのHTTPハンドラー。
type ReportHandler struct {
	service ReportServiceInterface
}

// NewReportHandler はReportHandlerを生成する。
func NewReportHandler(service ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: service}
}

// Generate はレポート生成を処理する。スコープは閲覧者のロールで決まる:
// leaderは自都市、directorは自UF、adminは全体。
// GET /api/relatorios
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	viewer, err := middleware.ProfileFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	rep, err := h.service.Generate(r.Context(), viewer)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}
