package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/legadoapp/legado/internal/auth"
	"github.com/legadoapp/legado/internal/config"
	"github.com/legadoapp/legado/internal/database"
	"github.com/legadoapp/legado/internal/event"
	"github.com/legadoapp/legado/internal/gate"
	"github.com/legadoapp/legado/internal/handler"
	"github.com/legadoapp/legado/internal/logger"
	"github.com/legadoapp/legado/internal/member"
	"github.com/legadoapp/legado/internal/metrics"
	"github.com/legadoapp/legado/internal/middleware"
	"github.com/legadoapp/legado/internal/product"
	"github.com/legadoapp/legado/internal/profile"
	"github.com/legadoapp/legado/internal/report"
	"github.com/legadoapp/legado/internal/repository"
	"github.com/legadoapp/legado/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// newSessionRepo はSESSION_STOREの設定に応じたセッションリポジトリを返す。
func newSessionRepo(cfg *config.Config, db *sql.DB) (repository.SessionRepository, error) {
	if cfg.SessionStore == "redis" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		slog.Info("using redis session store")
		return repository.NewRedisSessionRepo(client), nil
	}
	return repository.NewPostgresSessionRepo(db), nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	profileRepo := repository.NewPostgresProfileRepo(db)
	eventRepo := repository.NewPostgresEventRepo(db)
	productRepo := repository.NewPostgresProductRepo(db)
	orderRepo := repository.NewPostgresOrderRepo(db)

	sessionRepo, err := newSessionRepo(cfg, db)
	if err != nil {
		return err
	}

	// 3. メトリクスの初期化
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// 4. ドメインサービスの初期化
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, userRepo, identRepo, sessionRepo, profileRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	gateService := gate.NewService(
		sessionRepo, profileRepo, cfg.ProfileRequiredFields,
		cfg.GateTimeout, collector, slog.Default(),
	)

	profileService := profile.NewService(profileRepo, userRepo, cfg.ProfileRequiredFields)
	memberService := member.NewService(profileRepo)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Warn("failed to load timezone, falling back to UTC",
			slog.String("timezone", cfg.Timezone),
			slog.String("error", err.Error()),
		)
		loc = time.UTC
	}
	eventService := event.NewService(eventRepo, loc)

	productService := product.NewService(productRepo, orderRepo, profileRepo, cfg.StoragePublicBaseURL)
	reportService := report.NewService(profileRepo)

	// 5. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// configはreq/min単位なのでreq/secに変換する
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.OrderRate = rate.Limit(float64(cfg.RateLimitOrder) / 60.0)
	rateLimiterCfg.OrderBurst = cfg.RateLimitOrder

	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		ProfileFinder:     profileRepo,
		RequiredFields:    cfg.ProfileRequiredFields,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       middleware.NewRateLimiter(rateLimiterCfg),
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		StatusRecorder: collector,
		Logger:         slog.Default(),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		GateService:    gateService,
		ProfileService: profileService,
		MemberService:  memberService,
		EventService:   eventService,
		ProductService: productService,
		OrderRecorder:  collector,
		ReportService:  reportService,
	}

	router := handler.NewRouter(deps)

	// 6. メトリクスサーバーの起動（Prometheusスクレイプ用、別ポート）
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metrics.SetupMetricsRoute(reg),
	}
	go func() {
		slog.Info("metrics server starting", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := metricsServer.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", slog.String("error", err.Error()))
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションのクリーンアップジョブを定期実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	sessionRepo, err := newSessionRepo(cfg, db)
	if err != nil {
		return err
	}

	// 2. メトリクスの初期化
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metrics.SetupMetricsRoute(reg),
	}
	go func() {
		slog.Info("metrics server starting (worker)", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	// 3. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(sessionRepo, collector, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)

	// クリーンアップループをメインgoroutineで実行（ブロッキング）
	cleanupJob.RunLoop(ctx, cfg.SessionCleanupInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.String("error", err.Error()))
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
