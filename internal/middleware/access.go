package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/legadoapp/legado/internal/gate"
	"github.com/legadoapp/legado/internal/model"
)

// profileContextKey はリクエストコンテキストにプロフィールを格納するためのキー。
var profileContextKey = contextKey("profile")

// ProfileFinder はプロフィールの検索に必要なインターフェース。
type ProfileFinder interface {
	FindByID(ctx context.Context, userID string) (*model.Profile, error)
}

// NewProfileGateMiddleware はプロフィール完了を必須とするミドルウェアを返す。
// SessionMiddlewareの後に配置する。未完了の場合は403とPROFILE_INCOMPLETEを
// 返す（画面遷移のリダイレクトはフロントエンドがゲート判定APIで行う）。
// 完了済みプロフィールはコンテキストに注入され、後段のロール検証が参照する。
// プロフィール取得に失敗した場合も未完了として扱う。
func NewProfileGateMiddleware(profiles ProfileFinder, required []string) func(next http.Handler) http.Handler {
	if len(required) == 0 {
		required = gate.DefaultRequiredFields
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			profile, err := profiles.FindByID(r.Context(), userID)
			if err != nil {
				slog.Error("failed to find profile for access check",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewProfileIncompleteError(required))
				return
			}

			missing := gate.Missing(profile, required)
			if len(missing) > 0 {
				WriteErrorResponse(w, http.StatusForbidden, model.NewProfileIncompleteError(missing))
				return
			}

			ctx := context.WithValue(r.Context(), profileContextKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewCapabilityMiddleware は指定権限を持つロールのみ通すミドルウェアを返す。
// NewProfileGateMiddlewareの後に配置する。権限のないロールは403。
func NewCapabilityMiddleware(cap gate.Capability) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, err := ProfileFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			if !gate.Authorized(profile.Role, cap) {
				slog.Warn("capability denied",
					slog.String("user_id", profile.ID),
					slog.String("role", string(profile.Role)),
					slog.String("capability", string(cap)),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ProfileFromContext はリクエストコンテキストからプロフィールを取得する。
// NewProfileGateMiddlewareを通過したリクエストでのみ有効。
func ProfileFromContext(ctx context.Context) (*model.Profile, error) {
	profile, ok := ctx.Value(profileContextKey).(*model.Profile)
	if !ok || profile == nil {
		return nil, fmt.Errorf("profile not found in context")
	}
	return profile, nil
}

// ContextWithProfile はコンテキストにプロフィールを注入する。テスト用。
func ContextWithProfile(ctx context.Context, profile *model.Profile) context.Context {
	return context.WithValue(ctx, profileContextKey, profile)
}
