package handler

import "net/http"

// documentResponse はミニストリー資料のレスポンス表現。
type documentResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// DocumentHandler はミニストリー資料（PDF等）の一覧を提供する。
// 資料の実体は外部の公開ストレージにあり、ここではリンク集のみを返す。
type DocumentHandler struct {
	documents []documentResponse
}

// NewDocumentHandler はDocumentHandlerを生成する。
func NewDocumentHandler() *DocumentHandler {
	return &DocumentHandler{
		documents: []documentResponse{
			{
				ID:          "apostila",
				Title:       "Apostila do Ministério Legado",
				Description: "Documento oficial do ministério (PDF).",
				URL:         "/docs/apostila-legado.pdf",
			},
		},
	}
}

// List は資料一覧を返す。
// GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": h.documents,
	})
}
