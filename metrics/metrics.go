// Package metrics exposes the Prometheus collectors that report pipeline activity.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "medmesh"

// Metrics groups the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	inFlight        prometheus.Gauge
	nodeDuration    *prometheus.HistogramVec
	generation      *prometheus.HistogramVec
	repairOutcomes  *prometheus.CounterVec
	repairDropped   prometheus.Counter
	concurrencyWait prometheus.Histogram
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global Prometheus registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew constructs Metrics registered with reg. Collectors that are already
// registered are reused; any other registration error panics.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &Metrics{
		requests: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Analysis requests by routed task and outcome.",
			},
			[]string{"task", "status"},
		)),
		inFlight: register(reg, prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Analysis requests currently inside the pipeline.",
			},
		)),
		nodeDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "node_duration_seconds",
				Help:      "Duration of each pipeline node run.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"node", "status"},
		)),
		generation: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "generation_duration_seconds",
				Help:      "Duration of model generation calls.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"agent", "status"},
		)),
		repairOutcomes: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "repair",
				Name:      "outcomes_total",
				Help:      "Response repairs by the tier that produced the output.",
			},
			[]string{"agent", "tier"},
		)),
		repairDropped: register(reg, prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "repair",
				Name:      "dropped_entries_total",
				Help:      "Entries discarded for lacking a description.",
			},
		)),
		concurrencyWait: register(reg, prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "concurrency_wait_seconds",
				Help:      "Time requests waited for a free pipeline slot.",
				Buckets:   prometheus.DefBuckets,
			},
		)),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func status(failed bool) string {
	if failed {
		return "error"
	}
	return "success"
}

// ObserveRequest counts a completed request. Unrouted requests use task "none".
func (m *Metrics) ObserveRequest(task string, failed bool) {
	if m == nil {
		return
	}
	if task == "" {
		task = "none"
	}
	m.requests.WithLabelValues(task, status(failed)).Inc()
}

// RequestStarted increments the in-flight gauge and returns its decrement.
func (m *Metrics) RequestStarted() func() {
	if m == nil {
		return func() {}
	}
	m.inFlight.Inc()
	return m.inFlight.Dec
}

// ObserveNode records a node run.
func (m *Metrics) ObserveNode(node string, failed bool, d time.Duration) {
	if m == nil {
		return
	}
	m.nodeDuration.WithLabelValues(node, status(failed)).Observe(d.Seconds())
}

// ObserveGeneration records a model call made by agent.
func (m *Metrics) ObserveGeneration(agent string, failed bool, d time.Duration) {
	if m == nil {
		return
	}
	m.generation.WithLabelValues(agent, status(failed)).Observe(d.Seconds())
}

// ObserveRepair records the repair tier and dropped entries for agent.
func (m *Metrics) ObserveRepair(agent, tier string, dropped int) {
	if m == nil {
		return
	}
	m.repairOutcomes.WithLabelValues(agent, tier).Inc()
	if dropped > 0 {
		m.repairDropped.Add(float64(dropped))
	}
}

// ObserveWait records time spent waiting for the concurrency semaphore.
func (m *Metrics) ObserveWait(d time.Duration) {
	if m == nil {
		return
	}
	m.concurrencyWait.Observe(d.Seconds())
}
