// Package metrics holds the Prometheus collectors for the dashboard core.
//
// All methods are safe on a nil *Metrics, so components can be built without
// instrumentation (tests, the one-shot CLI commands).
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parceldash"

// Metrics is a private registry with the cache, operation and session
// collectors.
type Metrics struct {
	reg *prometheus.Registry

	cacheEvents  *prometheus.CounterVec   // parceldash_cache_events_total{op,result}
	cacheFlushes prometheus.Counter       // parceldash_cache_flushes_total
	opDuration   *prometheus.HistogramVec // parceldash_operation_duration_seconds{op,status}
	sessions     prometheus.Gauge         // parceldash_sessions
}

// New builds and registers the collectors.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	cacheEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Result cache lookups, partitioned by operation and hit/miss.",
		},
		[]string{"op", "result"},
	)
	cacheFlushes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_flushes_total",
		Help:      "Result cache flushes (variant switches and size bound).",
	})
	opDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of normalize, filter and projection work on a cache miss.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"op", "status"},
	)
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Open dashboard sessions.",
	})

	for name, c := range map[string]prometheus.Collector{
		"cache events":       cacheEvents,
		"cache flushes":      cacheFlushes,
		"operation duration": opDuration,
		"sessions":           sessions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", name, err)
		}
	}

	return &Metrics{
		reg:          reg,
		cacheEvents:  cacheEvents,
		cacheFlushes: cacheFlushes,
		opDuration:   opDuration,
		sessions:     sessions,
	}, nil
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheHit(op string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(op, "hit").Inc()
}

func (m *Metrics) CacheMiss(op string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(op, "miss").Inc()
}

func (m *Metrics) CacheFlush() {
	if m == nil {
		return
	}
	m.cacheFlushes.Inc()
}

// ObserveOp records how long a computation took and whether it failed.
func (m *Metrics) ObserveOp(op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.opDuration.WithLabelValues(op, status).Observe(d.Seconds())
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}
