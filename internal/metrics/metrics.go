// Package metrics provides Prometheus metrics for dataset loading
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

// Metrics holds the collectors for backend fetches and dataset loads. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchRows     *prometheus.HistogramVec
	loadsTotal    *prometheus.CounterVec

	collectors []prometheus.Collector
}

// New creates the collectors and registers them with registry
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acueducto",
				Name:      "backend_fetch_total",
				Help:      "Collection fetches by entity and status",
			},
			[]string{"entity", "status"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "acueducto",
				Name:      "backend_fetch_duration_seconds",
				Help:      "Duration of collection fetches",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity"},
		),
		fetchRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "acueducto",
				Name:      "backend_fetch_rows",
				Help:      "Rows returned per collection fetch",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"entity"},
		),
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acueducto",
				Name:      "dataset_loads_total",
				Help:      "Dataset loads by dataset and outcome (ok, error, stale)",
			},
			[]string{"dataset", "outcome"},
		),
	}
	m.collectors = []prometheus.Collector{m.fetchTotal, m.fetchDuration, m.fetchRows, m.loadsTotal}

	for _, c := range m.collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordFetch records one backend call for entity
func (m *Metrics) RecordFetch(entity string, took time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.fetchTotal.WithLabelValues(entity, status).Inc()
	m.fetchDuration.WithLabelValues(entity).Observe(took.Seconds())
	if err == nil {
		m.fetchRows.WithLabelValues(entity).Observe(float64(rows))
	}
}

// RecordLoad records the outcome of a dataset load
func (m *Metrics) RecordLoad(dataset, outcome string) {
	if m == nil {
		return
	}
	m.loadsTotal.WithLabelValues(dataset, outcome).Inc()
}

// FetchCounter exposes the fetch counter for tests
func (m *Metrics) FetchCounter() *prometheus.CounterVec {
	return m.fetchTotal
}

// LoadCounter exposes the load counter for tests
func (m *Metrics) LoadCounter() *prometheus.CounterVec {
	return m.loadsTotal
}
