// Package metrics provides Prometheus metrics collection for flyout.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the flyout service. It
// implements app.Metrics.
type Collector struct {
	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	SubmitsTotal   *prometheus.CounterVec
	SearchesTotal  *prometheus.CounterVec
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(nil)
}

// NewWithRegistry creates a collector on the given registry. Pass a fresh
// registry in tests to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	if reg == nil {
		factory = promauto.With(prometheus.DefaultRegisterer)
	}

	return &Collector{
		RendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flyout",
				Name:      "renders_total",
				Help:      "Total number of panel renders",
			},
			[]string{"panel"},
		),
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "flyout",
				Name:      "render_duration_seconds",
				Help:      "Panel render duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"panel"},
		),
		SubmitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flyout",
				Name:      "submits_total",
				Help:      "Total number of form submissions",
			},
			[]string{"panel", "result"},
		),
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flyout",
				Name:      "searches_total",
				Help:      "Total number of field searches",
			},
			[]string{"panel"},
		),
	}
}

// ObserveRender records a completed panel render.
func (c *Collector) ObserveRender(panel string, d time.Duration) {
	c.RendersTotal.WithLabelValues(panel).Inc()
	c.RenderDuration.WithLabelValues(panel).Observe(d.Seconds())
}

// ObserveSubmit records a form submission outcome.
func (c *Collector) ObserveSubmit(panel string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.SubmitsTotal.WithLabelValues(panel, result).Inc()
}

// ObserveSearch records a field search call.
func (c *Collector) ObserveSearch(panel string) {
	c.SearchesTotal.WithLabelValues(panel).Inc()
}
