// Package metrics exposes Prometheus metrics for dataset loading, rendering
// and hover lookups.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for edumap.
type Metrics struct {
	registry *prometheus.Registry

	// Dataset metrics
	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	// Render metrics
	RenderDuration   prometheus.Histogram
	CountiesRendered prometheus.Gauge
	JoinMisses       prometheus.Gauge

	// Server metrics
	HoversTotal   *prometheus.CounterVec
	RequestsTotal *prometheus.CounterVec
}

// New creates metrics registered on a fresh registry under namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_fetches_total",
			Help:      "Dataset fetches by dataset and outcome",
		}, []string{"dataset", "outcome"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_fetch_duration_seconds",
			Help:      "Dataset fetch and decode latency in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"dataset"}),

		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Scene build latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		CountiesRendered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counties_rendered",
			Help:      "Number of county shapes in the current scene",
		}),
		JoinMisses: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "join_misses",
			Help:      "Number of counties without an education record",
		}),

		HoversTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hovers_total",
			Help:      "Hover lookups by result",
		}, []string{"result"}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "status"}),
	}
}

// RecordFetch records one dataset fetch.
func (m *Metrics) RecordFetch(dataset string, err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FetchesTotal.WithLabelValues(dataset, outcome).Inc()
	m.FetchDuration.WithLabelValues(dataset).Observe(duration.Seconds())
}

// RecordRender records a completed scene build.
func (m *Metrics) RecordRender(counties, misses int, duration time.Duration) {
	m.RenderDuration.Observe(duration.Seconds())
	m.CountiesRendered.Set(float64(counties))
	m.JoinMisses.Set(float64(misses))
}

// RecordHover records a hover lookup.
func (m *Metrics) RecordHover(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.HoversTotal.WithLabelValues(result).Inc()
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
