// Package metrics 提供 Embedding 服务的业务指标收集。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace 所有指标的前缀。
const Namespace = "embedding"

// 操作名称，用作 operation 标签。
const (
	OpEmbed      = "embed"
	OpSearch     = "search"
	OpChunk      = "chunk"
	OpOptimize   = "optimize"
	OpCollection = "collection"
)

// 存储操作名称，用作 store_errors_total 的 operation 标签。
const (
	StoreEnsure = "ensure_collection"
	StoreUpsert = "upsert"
	StoreSearch = "search"
)

// Metrics Embedding 服务业务指标。零值不可用，nil 接收者上的记录方法为空操作。
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	chunksEmbedded *prometheus.CounterVec
	pointsSaved    *prometheus.CounterVec
	encodeErrors   *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
}

// New 创建指标并注册到独立的 Registry，同时包含 Go 运行时与进程指标。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "requests_total",
			Help:      "Total number of service operations.",
		}, []string{"operation", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of service operations in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"operation"}),
		chunksEmbedded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "chunks_embedded_total",
			Help:      "Total number of chunks encoded into vectors.",
		}, []string{"model"}),
		pointsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "points_saved_total",
			Help:      "Total number of points written to the vector store.",
		}, []string{"backend"}),
		encodeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "encode_errors_total",
			Help:      "Total number of failed encoding calls.",
		}, []string{"model"}),
		storeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "store_errors_total",
			Help:      "Total number of failed vector store calls.",
		}, []string{"operation"}),
	}
}

// ObserveRequest 记录一次操作的结果与耗时。
func (m *Metrics) ObserveRequest(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.requests.WithLabelValues(op, status).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// AddChunks 记录编码成功的块数。
func (m *Metrics) AddChunks(model string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chunksEmbedded.WithLabelValues(model).Add(float64(n))
}

// AddSaved 记录写入存储的点数。
func (m *Metrics) AddSaved(backend string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pointsSaved.WithLabelValues(backend).Add(float64(n))
}

// EncodeError 记录一次编码失败。
func (m *Metrics) EncodeError(model string) {
	if m == nil {
		return
	}
	m.encodeErrors.WithLabelValues(model).Inc()
}

// StoreError 记录一次存储调用失败。
func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// Registry 返回指标注册表。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回以 Prometheus 文本格式导出指标的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
