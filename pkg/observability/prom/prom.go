// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/hexroute/pkg/observability"
)

// Metrics records pipeline, cache and server events.
type Metrics struct {
	StageDuration   *prometheus.HistogramVec
	StageErrors     *prometheus.CounterVec
	Chips           prometheus.Gauge
	Routes          prometheus.Gauge
	UnroutedSinks   prometheus.Gauge
	CacheEvents     *prometheus.CounterVec
	CacheBytes      *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hexroute_stage_duration_seconds",
				Help:    "Duration of pipeline stages.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"stage"},
		),
		StageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexroute_stage_errors_total",
				Help: "Number of failed pipeline stages.",
			},
			[]string{"stage"},
		),
		Chips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hexroute_chips",
			Help: "Chips in the most recently built board.",
		}),
		Routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hexroute_routes",
			Help: "Routes in the most recent routing pass.",
		}),
		UnroutedSinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hexroute_unrouted_sinks",
			Help: "Sinks that could not be reached in the most recent routing pass.",
		}),
		CacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexroute_cache_events_total",
				Help: "Cache lookups and writes by key type and result.",
			},
			[]string{"key_type", "result"},
		),
		CacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexroute_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type.",
			},
			[]string{"key_type"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexroute_http_requests_total",
				Help: "Requests served by the table server.",
			},
			[]string{"method", "route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hexroute_http_request_duration_seconds",
				Help:    "Table server request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.collectors()...)
	}
	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.StageDuration, m.StageErrors, m.Chips, m.Routes, m.UnroutedSinks,
		m.CacheEvents, m.CacheBytes, m.RequestsTotal, m.RequestDuration,
	}
}

// Register installs m as the pipeline, cache and server hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetServerHooks(m)
}

func (m *Metrics) stage(name string, d time.Duration, err error) {
	m.StageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		m.StageErrors.WithLabelValues(name).Inc()
	}
}

// OnBuild implements observability.PipelineHooks.
func (m *Metrics) OnBuild(_ context.Context, _ string, chips int, d time.Duration, err error) {
	m.stage("build", d, err)
	if err == nil {
		m.Chips.Set(float64(chips))
	}
}

// OnRoute implements observability.PipelineHooks.
func (m *Metrics) OnRoute(_ context.Context, _ string, routes, unrouted int, d time.Duration, err error) {
	m.stage("route", d, err)
	if err == nil {
		m.Routes.Set(float64(routes))
		m.UnroutedSinks.Set(float64(unrouted))
	}
}

// OnTables implements observability.PipelineHooks.
func (m *Metrics) OnTables(_ context.Context, _ int, _ []string, d time.Duration, err error) {
	m.stage("tables", d, err)
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheEvents.WithLabelValues(keyType, "set").Inc()
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.ServerHooks.
func (m *Metrics) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.ServerHooks   = (*Metrics)(nil)
)
