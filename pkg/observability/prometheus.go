package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/symlump/pkg/errors"
)

const namespace = "symlump"

// PrometheusHooks records every hook event as Prometheus metrics on its own
// registry. It implements PipelineHooks, OracleHooks, CacheHooks and APIHooks.
type PrometheusHooks struct {
	registry *prometheus.Registry

	networks        *prometheus.CounterVec
	networkDuration prometheus.Histogram
	inflight        prometheus.Gauge
	batches         prometheus.Counter
	oracleCalls     *prometheus.CounterVec
	oracleDuration  *prometheus.HistogramVec
	cacheEvents     *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusHooks creates the metrics and registers them, together with
// the Go runtime and process collectors, on a fresh registry.
func NewPrometheusHooks() *PrometheusHooks {
	h := &PrometheusHooks{
		registry: prometheus.NewRegistry(),
		networks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "networks_total",
			Help:      "Networks processed, by outcome (ok, cached, or the error code).",
		}, []string{"outcome"}),
		networkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "network_duration_seconds",
			Help:      "Wall time spent per network.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "networks_inflight",
			Help:      "Networks currently being analyzed.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches started.",
		}),
		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_calls_total",
			Help:      "Group oracle calls, by oracle and outcome.",
		}, []string{"oracle", "outcome"}),
		oracleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_duration_seconds",
			Help:      "Group oracle call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"oracle"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes, by key type and event.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	h.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		h.networks, h.networkDuration, h.inflight, h.batches,
		h.oracleCalls, h.oracleDuration,
		h.cacheEvents, h.cacheBytes,
		h.requests, h.requestDuration,
	)
	return h
}

// Registry returns the registry holding the metrics.
func (h *PrometheusHooks) Registry() *prometheus.Registry { return h.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (h *PrometheusHooks) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
}

// outcome labels an error by its code.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

func (h *PrometheusHooks) OnBatchStart(context.Context, string, int) {
	h.batches.Inc()
}

func (h *PrometheusHooks) OnNetworkStart(context.Context, string) {
	h.inflight.Inc()
}

func (h *PrometheusHooks) OnNetworkComplete(_ context.Context, _ string, d time.Duration, cached bool, err error) {
	h.inflight.Dec()
	label := outcome(err)
	if err == nil && cached {
		label = "cached"
	}
	h.networks.WithLabelValues(label).Inc()
	h.networkDuration.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnBatchComplete(context.Context, string, time.Duration, error) {}

func (h *PrometheusHooks) OnOracleStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnOracleComplete(_ context.Context, oracle string, d time.Duration, err error) {
	h.oracleCalls.WithLabelValues(oracle, outcome(err)).Inc()
	h.oracleDuration.WithLabelValues(oracle).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ OracleHooks   = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ APIHooks      = (*PrometheusHooks)(nil)
)
