package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/legadoapp/legado/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーを返す。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeInvalidRequestBody はJSONボディの解析失敗を返す。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "Não foi possível interpretar o corpo da requisição.",
		Category: "validation",
		Action:   "Envie a requisição em formato JSON válido.",
	})
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// APIErrorはコードに応じたステータスで返し、それ以外は内部エラーとして扱う。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Ocorreu um erro interno.",
		Category: "system",
		Action:   "Aguarde um momento e tente novamente.",
	})
}

// mapAPIErrorToHTTPStatus はエラーコードをHTTPステータスに対応付ける。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden, model.ErrCodeProfileIncomplete:
		return http.StatusForbidden
	case model.ErrCodeEventNotFound, model.ErrCodeProductNotFound,
		model.ErrCodeOrderNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidCity, model.ErrCodeInvalidEventTime:
		return http.StatusUnprocessableEntity
	case model.ErrCodeInvalidRole, model.ErrCodeInvalidRange,
		model.ErrCodeMissingFields, model.ErrCodeEmptyOrder, model.ErrCodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
