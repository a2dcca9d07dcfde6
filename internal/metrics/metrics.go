// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ゲート判定やワーカー、サービス層から利用する。
type MetricsCollector interface {
	RecordGateDecision(state, outcome string)
	ObserveGateEvaluation(duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordOrderPlaced(itemCount int)
	RecordSessionsPurged(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	gateDecisions  *prometheus.CounterVec
	gateLatency    prometheus.Histogram
	httpStatus     *prometheus.CounterVec
	ordersPlaced   prometheus.Counter
	orderItems     prometheus.Counter
	sessionsPurged prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legado_gate_decisions_total",
			Help: "アクセスゲート判定の状態・結果別の合計数",
		}, []string{"state", "outcome"}),
		gateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "legado_gate_evaluation_seconds",
			Help:    "アクセスゲート判定のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legado_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "legado_orders_placed_total",
			Help: "作成された注文の合計数",
		}),
		orderItems: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "legado_order_items_total",
			Help: "注文された明細行の合計数",
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "legado_sessions_purged_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.gateDecisions,
		c.gateLatency,
		c.httpStatus,
		c.ordersPlaced,
		c.orderItems,
		c.sessionsPurged,
	)

	return c
}

// RecordGateDecision はゲート判定の結果を記録する。
// outcomeは"allow"またはリダイレクト先パス。
func (c *Collector) RecordGateDecision(state, outcome string) {
	c.gateDecisions.WithLabelValues(state, outcome).Inc()
}

// ObserveGateEvaluation はゲート判定のレイテンシを記録する。
func (c *Collector) ObserveGateEvaluation(duration time.Duration) {
	c.gateLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordOrderPlaced は注文の作成と明細行数を記録する。
func (c *Collector) RecordOrderPlaced(itemCount int) {
	c.ordersPlaced.Inc()
	c.orderItems.Add(float64(itemCount))
}

// RecordSessionsPurged は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
