// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/courseapi/internal/model"
)

// 講座操作の結果ラベル
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	courseOps        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courseapi_http_requests_total",
			Help: "HTTPメソッド・ステータスコード別のリクエスト数",
		}, []string{"code", "method"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courseapi_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courseapi_http_requests_in_flight",
			Help: "処理中のHTTPリクエスト数",
		}),
		courseOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courseapi_course_operations_total",
			Help: "講座操作の種類・結果別の実行数",
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.requestsInFlight,
		c.courseOps,
	)

	return c
}

// RecordCourseOperation は講座操作の結果を記録する。
// errがAPIErrorの場合はエラーコードを小文字にしたものを結果ラベルとする。
func (c *Collector) RecordCourseOperation(op string, err error) {
	c.courseOps.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return strings.ToLower(apiErr.Code)
	}
	return OutcomeError
}

// Middleware はリクエスト数・処理時間・処理中リクエスト数を計測するミドルウェアを返す。
func (c *Collector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerInFlight(c.requestsInFlight,
			promhttp.InstrumentHandlerDuration(c.requestDuration,
				promhttp.InstrumentHandlerCounter(c.requestsTotal, next),
			),
		)
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
