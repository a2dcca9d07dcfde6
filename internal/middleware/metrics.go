package middleware

import "net/http"

// StatusRecorder はHTTPステータスコードのメトリクス記録を提供する。
type StatusRecorder interface {
	RecordHTTPStatus(statusCode int)
}

// NewMetricsMiddleware はレスポンスのステータスコードを記録するミドルウェアを返す。
func NewMetricsMiddleware(recorder StatusRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(sr, r)
			recorder.RecordHTTPStatus(sr.statusCode)
		})
	}
}
