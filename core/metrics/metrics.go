package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all Prometheus metrics for gar-builder.
type Metrics struct {
	// Registry owns every collector below; it is not the global default registry.
	Registry *prometheus.Registry

	// Region pipeline metrics
	RegionsTotal       *prometheus.CounterVec
	HousesLoadedTotal  prometheus.Counter
	RowsResolvedTotal  prometheus.Counter
	RankConflictsTotal prometheus.Counter

	// Change log metrics
	ChangelogRowsTotal    *prometheus.CounterVec
	ChangelogEntriesTotal *prometheus.CounterVec

	// Shared
	PhaseDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{Registry: reg}

	m.RegionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gar_regions_total",
			Help: "Number of regions processed, by outcome",
		},
		[]string{"status"},
	)

	m.HousesLoadedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "gar_houses_loaded_total",
			Help: "Number of houses left after filtering",
		},
	)

	m.RowsResolvedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "gar_rows_resolved_total",
			Help: "Number of flat rows produced by the hierarchy resolver",
		},
	)

	m.RankConflictsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "gar_hierarchy_rank_conflicts_total",
			Help: "Number of rows where two ancestors shared a rank",
		},
	)

	m.ChangelogRowsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gar_changelog_rows_read_total",
			Help: "Rows read by the change log engine, by dataset version",
		},
		[]string{"version"},
	)

	m.ChangelogEntriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gar_changelog_entries_total",
			Help: "Change log entries emitted, by status",
		},
		[]string{"status"},
	)

	m.PhaseDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gar_phase_duration_seconds",
			Help:    "Duration of pipeline phases in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"phase"},
	)

	reg.MustRegister(collectors.NewGoCollector())

	return m
}

// ObservePhase records the duration of a named phase started at start.
func (m *Metrics) ObservePhase(phase string, start time.Time) {
	if m == nil {
		return
	}
	m.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Push sends the registry to a Pushgateway. An empty cfg.PushURL is a no-op.
func (m *Metrics) Push(ctx context.Context, cfg Config) error {
	if cfg.PushURL == "" {
		return nil
	}
	if err := push.New(cfg.PushURL, cfg.Job).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
