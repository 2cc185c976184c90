// Package metrics holds the Prometheus collectors of the explorer service.
// They register on the default registry and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "explorer_sessions",
		Help: "Live engine sessions",
	})

	SessionEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explorer_session_evictions_total",
		Help: "Idle sessions evicted to make room for new ones",
	})

	GraphLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorer_graph_loads_total",
		Help: "Graph loads into a session by source and result",
	}, []string{"source", "result"})

	VisibleGraphDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "explorer_visible_graph_duration_seconds",
		Help:    "Time to compute the visible graph",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"mode"})

	VisibleGraphTruncated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorer_visible_graph_truncated_total",
		Help: "Visible graphs cut off by the edge governor",
	}, []string{"mode"})

	CatalogMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorer_catalog_messages_total",
		Help: "Graph ready messages by outcome",
	}, []string{"result"})
)

// LoadResult labels a graph load for GraphLoads.
func LoadResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
