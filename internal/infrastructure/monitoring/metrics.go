package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Session metrics
	SessionsActive prometheus.Gauge
	ViewsActive    prometheus.Gauge
	ViewsOpened    prometheus.Counter

	// Router metrics
	DispatchTotal  *prometheus.CounterVec
	DispatchErrors *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector with its own registry, so
// multiple instances (tests included) never collide.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "panelhost_sessions_active",
			Help: "Number of live sessions",
		}),
		ViewsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "panelhost_views_active",
			Help: "Number of tracked view surfaces",
		}),
		ViewsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "panelhost_views_opened_total",
			Help: "Total view surfaces created",
		}),
		DispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panelhost_dispatch_total",
				Help: "Requests dispatched by method",
			},
			[]string{"method"},
		),
		DispatchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panelhost_dispatch_errors_total",
				Help: "Dispatch failures by method",
			},
			[]string{"method"},
		),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "panelhost_ws_connections",
			Help: "Attached view streams",
		}),
		registry: registry,
	}
}

// Handler exposes the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
