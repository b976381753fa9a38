package navigation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine labels.
const (
	engineGrid      = "grid"
	engineWaypoints = "waypoints"
)

// Metrics records planner activity. A nil *Metrics records nothing.
type Metrics struct {
	searches   *prometheus.CounterVec
	expansions *prometheus.HistogramVec
	pending    prometheus.Gauge
}

// NewMetrics registers the planner collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// searches counts finished searches by engine and outcome
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pathfinder_searches_total",
			Help: "Total path searches by engine and outcome",
		}, []string{"engine", "outcome"}),

		expansions: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathfinder_search_expansions",
			Help:    "Nodes expanded per path search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9), // 1 to ~65k
		}, []string{"engine"}),

		pending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pathfinder_pending_requests",
			Help: "Path requests waiting for the next step",
		}),
	}
}

func (m *Metrics) observeSearch(engine, outcome string, expanded int) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(engine, outcome).Inc()
	m.expansions.WithLabelValues(engine).Observe(float64(expanded))
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
