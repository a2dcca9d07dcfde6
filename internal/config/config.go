// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Session
	SessionMaxAge int
	SessionStore  string // "postgres" または "redis"
	RedisURL      string

	// Access Gate
	GateTimeout           time.Duration // 外部フェッチのフェイルセーフタイムアウト
	ProfileRequiredFields []string      // プロフィール完了判定に使う必須フィールド集合

	// Storage（外部オブジェクトストレージの公開URL基底。画像パスと連結する）
	StoragePublicBaseURL string

	// Rate Limit（req/min/user）
	RateLimitGeneral int
	RateLimitOrder   int

	// Worker
	SessionCleanupInterval time.Duration

	// Events（期間フィルタの「今日」「今週」を計算するローカルタイムゾーン）
	Timezone string

	// Server
	ServerPort  string
	MetricsPort string
	BaseURL     string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// defaultRequiredFields はオンボーディングフォームの必須項目に対応する既定値。
// PROFILE_REQUIRED_FIELDSで差し替え可能。
var defaultRequiredFields = []string{"full_name", "city", "member_since", "baptized"}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	if cfg.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}

	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	if cfg.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}

	cfg.GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")
	if cfg.GoogleRedirectURL == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.SessionStore = getEnvString("SESSION_STORE", "postgres")
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.GateTimeout = getEnvDuration("GATE_TIMEOUT", 3*time.Second)
	cfg.ProfileRequiredFields = getEnvStringSlice("PROFILE_REQUIRED_FIELDS", defaultRequiredFields)
	cfg.StoragePublicBaseURL = getEnvString("STORAGE_PUBLIC_BASE_URL", "")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitOrder = getEnvInt("RATE_LIMIT_ORDER", 10)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", 1*time.Hour)
	cfg.Timezone = getEnvString("TIMEZONE", "America/Sao_Paulo")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if cfg.SessionStore != "postgres" && cfg.SessionStore != "redis" {
		return nil, fmt.Errorf("invalid SESSION_STORE: %q (must be postgres or redis)", cfg.SessionStore)
	}
	if cfg.SessionStore == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvStringSlice はカンマ区切りの環境変数をスライスとして読み込む。
// 空要素は除去し、前後の空白はトリムする。
func getEnvStringSlice(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
