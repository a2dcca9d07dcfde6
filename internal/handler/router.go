package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/legadoapp/legado/internal/gate"
	"github.com/legadoapp/legado/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	ProfileFinder     middleware.ProfileFinder
	RequiredFields    []string
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	StatusRecorder    middleware.StatusRecorder // nil可
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// アクセスゲート
	GateService GateServiceInterface

	// プロフィール・会員
	ProfileService ProfileServiceInterface
	MemberService  MemberServiceInterface

	// イベント
	EventService EventServiceInterface

	// 商品・注文
	ProductService ProductServiceInterface
	OrderRecorder  OrderRecorder

	// レポート
	ReportService ReportServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → CSRF
//
// 認証が必要なルートはさらに Session → RateLimit(General) を通り、
// プロフィール完了が必要なルートは ProfileGate、ロール制限付きルートは
// Capability を通る。ゲート判定API（/api/gate/*）は未ログインでも判定対象
// のためセッションミドルウェアの外に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	gateHandler := NewGateHandler(deps.GateService)
	profileHandler := NewProfileHandler(deps.ProfileService)
	memberHandler := NewMemberHandler(deps.MemberService)
	eventHandler := NewEventHandler(deps.EventService)
	productHandler := NewProductHandler(deps.ProductService, deps.OrderRecorder)
	reportHandler := NewReportHandler(deps.ReportService)
	documentHandler := NewDocumentHandler()

	// --- 認証不要のルート ---

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// ゲート判定（セッションCookieは自前で読む）
	r.Route("/api/gate", func(r chi.Router) {
		r.Get("/evaluate", gateHandler.Evaluate)
		r.Get("/required-fields", gateHandler.RequiredFields)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// プロフィール（オンボーディング中もアクセス可能）
		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Update)
		})

		// --- プロフィール完了が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewProfileGateMiddleware(deps.ProfileFinder, deps.RequiredFields))

			// イベントカレンダー
			r.Route("/api/eventos", func(r chi.Router) {
				r.Get("/", eventHandler.List)
				r.Get("/{id}", eventHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.NewCapabilityMiddleware(gate.CapabilityManageEvents))
					r.Post("/", eventHandler.Create)
					r.Put("/{id}", eventHandler.Update)
					r.Delete("/{id}", eventHandler.Delete)
				})
			})

			// 会員ディレクトリ
			r.Route("/api/membros", func(r chi.Router) {
				r.Get("/", memberHandler.List)

				r.With(middleware.NewCapabilityMiddleware(gate.CapabilityAdministerMembers)).
					Put("/{id}/role", memberHandler.ChangeRole)
			})

			// 商品カタログ
			r.Route("/api/produtos", func(r chi.Router) {
				r.Get("/", productHandler.ListCatalog)

				r.Group(func(r chi.Router) {
					r.Use(middleware.NewCapabilityMiddleware(gate.CapabilityAdministerProducts))
					r.Get("/admin", productHandler.ListAll)
					r.Post("/", productHandler.Create)
					r.Put("/{id}", productHandler.Update)
					r.Delete("/{id}", productHandler.Delete)
				})
			})

			// 注文
			r.Route("/api/pedidos", func(r chi.Router) {
				// POST /api/pedidos - 注文作成（注文専用レート制限を追加）
				r.With(deps.RateLimiter.OrderMiddleware()).Post("/", productHandler.PlaceOrder)

				r.Group(func(r chi.Router) {
					r.Use(middleware.NewCapabilityMiddleware(gate.CapabilityAdministerProducts))
					r.Get("/", productHandler.ListOrders)
					r.Post("/{id}/finish", productHandler.FinishOrder)
					r.Delete("/{id}", productHandler.DeleteOrder)
				})
			})

			// ミニストリー資料
			r.Get("/api/documents", documentHandler.List)

			// レポート
			r.With(middleware.NewCapabilityMiddleware(gate.CapabilityViewReports)).
				Get("/api/relatorios", reportHandler.Generate)
		})
	})

	return r
}
