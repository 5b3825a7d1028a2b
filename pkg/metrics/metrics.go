// Package metrics 基于Prometheus的指标收集
//
// 指标分三类：
//   - HTTP请求：由middleware.Metrics记录
//   - 业务：图书入库、书架操作、书评操作
//   - 外部依赖：图书目录请求、熔断器状态、事件发布
//
// 所有指标通过promauto注册到默认Registry，由/metrics端点暴露。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，如/api/v1/shelves/:shelf）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// BooksIngestedTotal 图书入库次数
	// 标签：result（created=新建，existing=已存在直接返回，failed）
	BooksIngestedTotal *prometheus.CounterVec

	// ShelfOperationsTotal 书架操作次数
	// 标签：shelf（want_to_read/currently_reading/read/favorite）、op（add/remove）
	ShelfOperationsTotal *prometheus.CounterVec

	// ReviewsTotal 书评操作次数
	// 标签：op（create/update/delete）
	ReviewsTotal *prometheus.CounterVec

	// CatalogRequestsTotal 外部图书目录请求次数
	// 标签：op（search/volume）、result（success/failure/rejected/cache_hit）
	CatalogRequestsTotal *prometheus.CounterVec

	// CatalogRequestDuration 外部图书目录请求耗时
	CatalogRequestDuration *prometheus.HistogramVec

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// EventsPublishedTotal 领域事件发布次数
	// 标签：routing_key、result（success/failure）
	EventsPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标，重复调用无副作用
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	BooksIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_books_ingested_total",
			Help: "图书入库次数",
		},
		[]string{"result"},
	)

	ShelfOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_shelf_operations_total",
			Help: "书架操作次数",
		},
		[]string{"shelf", "op"},
	)

	ReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_reviews_total",
			Help: "书评操作次数",
		},
		[]string{"op"},
	)

	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_catalog_requests_total",
			Help: "外部图书目录请求次数",
		},
		[]string{"op", "result"},
	)

	// 外部HTTP调用，桶比本地请求粗
	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshelf_catalog_request_duration_seconds",
			Help:    "外部图书目录请求耗时（秒）",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_events_published_total",
			Help: "领域事件发布次数",
		},
		[]string{"routing_key", "result"},
	)
}

// ObserveShelfOp 记录书架操作
func ObserveShelfOp(shelf, op string) {
	if ShelfOperationsTotal == nil {
		return
	}
	ShelfOperationsTotal.WithLabelValues(shelf, op).Inc()
}

// ObserveReviewOp 记录书评操作
func ObserveReviewOp(op string) {
	if ReviewsTotal == nil {
		return
	}
	ReviewsTotal.WithLabelValues(op).Inc()
}

// ObserveIngest 记录图书入库结果
func ObserveIngest(result string) {
	if BooksIngestedTotal == nil {
		return
	}
	BooksIngestedTotal.WithLabelValues(result).Inc()
}

// ObserveCatalogRequest 记录外部目录请求结果与耗时（seconds<0时不记录耗时）
func ObserveCatalogRequest(op, result string, seconds float64) {
	if CatalogRequestsTotal == nil {
		return
	}
	CatalogRequestsTotal.WithLabelValues(op, result).Inc()
	if seconds >= 0 {
		CatalogRequestDuration.WithLabelValues(op).Observe(seconds)
	}
}

// SetBreakerState 更新熔断器状态
func SetBreakerState(name string, state int) {
	if CircuitBreakerState == nil {
		return
	}
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// ObservePublish 记录事件发布结果
func ObservePublish(routingKey string, err error) {
	if EventsPublishedTotal == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsPublishedTotal.WithLabelValues(routingKey, result).Inc()
}
