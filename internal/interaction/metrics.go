package interaction

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for viewer sessions.
type Metrics struct {
	Active  prometheus.Gauge
	Opened  prometheus.Counter
	Evicted prometheus.Counter
}

// NewMetrics registers the session metrics once per process.
//
// Metrics:
//   - mindmapd_viewer_sessions_active - open sessions
//   - mindmapd_viewer_sessions_opened_total - sessions opened
//   - mindmapd_viewer_sessions_evicted_total - sessions evicted for idleness
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			Active: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "mindmapd_viewer_sessions_active",
				Help: "Number of open viewer sessions",
			}),
			Opened: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mindmapd_viewer_sessions_opened_total",
				Help: "Total number of viewer sessions opened",
			}),
			Evicted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mindmapd_viewer_sessions_evicted_total",
				Help: "Total number of viewer sessions evicted after the idle TTL",
			}),
		}
	})
	return globalMetrics
}
