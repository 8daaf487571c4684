// Package metrics 提供 Prometheus 指标采集功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "quire"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// 排版指标
	LayoutBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "builds_total",
			Help:      "Total number of layout computations by outcome",
		},
		[]string{"status"},
	)

	LayoutBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "build_duration_seconds",
			Help:      "Layout computation duration in seconds, measurement included",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	LayoutPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "pages",
			Help:      "Number of pages produced per layout",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	LayoutStaleDiscards = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "stale_discards_total",
			Help:      "Layouts dropped because a newer request superseded them",
		},
	)

	// 存储指标
	StorageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "failures_total",
			Help:      "Storage operations that failed and were swallowed",
		},
		[]string{"op"},
	)
)

// 排版结果状态
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusStale = "stale"
)

// ObserveBuild 记录一次排版计算
func ObserveBuild(status string, seconds float64, pages int) {
	LayoutBuildsTotal.WithLabelValues(status).Inc()
	LayoutBuildDuration.Observe(seconds)
	if status == StatusOK {
		LayoutPages.Observe(float64(pages))
	}
}
