// Package metrics exposes coordinator activity as Prometheus metrics.
package metrics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry, so several
// dashboards in one process (or tests) do not collide.
type Metrics struct {
	registry *prometheus.Registry

	triggers        *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
	slotFailures    *prometheus.CounterVec
	instances       *prometheus.CounterVec
	live            prometheus.Gauge
	debounced       prometheus.Counter
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_triggers_total",
			Help: "Trigger signals received by the coordinator.",
		}, []string{"kind"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_refreshes_total",
			Help: "Completed refresh cycles.",
		}, []string{"reason"}),
		refreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tally_refresh_duration_seconds",
			Help:    "Duration of refresh cycles.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"reason"}),
		slotFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_refresh_slot_failures_total",
			Help: "Slots that failed during a refresh.",
		}, []string{"slot"}),
		instances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_chart_instances_total",
			Help: "Chart instance creations and destructions.",
		}, []string{"slot", "op", "result"}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tally_live_charts",
			Help: "Chart instances currently live.",
		}),
		debounced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tally_resize_debounced_total",
			Help: "Resize signals absorbed by a later one.",
		}),
	}
	m.registry.MustRegister(
		m.triggers, m.refreshes, m.refreshDuration, m.slotFailures,
		m.instances, m.live, m.debounced,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks logs and records every lifecycle event.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return domain.LifecycleHooks{
		OnTrigger: func(ctx context.Context, t domain.Trigger) {
			logger.Debug("trigger", "kind", t.Kind, "source", t.Source)
			m.triggers.WithLabelValues(string(t.Kind)).Inc()
		},
		OnRefresh: func(ctx context.Context, e *domain.RefreshEvent) {
			logger.Info("refresh",
				"reason", e.Reason,
				"duration", e.Duration,
				"failed", e.Failed,
			)
			m.refreshes.WithLabelValues(e.Reason).Inc()
			m.refreshDuration.WithLabelValues(e.Reason).Observe(e.Duration.Seconds())
			for _, slot := range e.Failed {
				m.slotFailures.WithLabelValues(string(slot)).Inc()
			}
		},
		OnInstanceCreate: func(ctx context.Context, e *domain.InstanceEvent) {
			if e.Err != nil {
				logger.Warn("chart create failed", "slot", e.Slot, "err", e.Err)
				m.instances.WithLabelValues(string(e.Slot), "create", "error").Inc()
				return
			}
			m.instances.WithLabelValues(string(e.Slot), "create", "ok").Inc()
			m.live.Inc()
		},
		OnInstanceDestroy: func(ctx context.Context, e *domain.InstanceEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
				logger.Warn("chart destroy failed", "slot", e.Slot, "err", e.Err)
			}
			// The registry releases the slot even when destroy fails.
			m.instances.WithLabelValues(string(e.Slot), "destroy", result).Inc()
			m.live.Dec()
		},
		OnDebounced: func(ctx context.Context, t domain.Trigger) {
			m.debounced.Inc()
		},
	}
}
