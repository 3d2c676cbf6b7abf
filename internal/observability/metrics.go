// Package observability exposes Prometheus collectors for the agent pipeline.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics reports pipeline activity: chat requests, clamp corrections, HCM
// call outcomes, and language-model latency.
type Metrics struct {
	chatRequests  *prometheus.CounterVec
	clampedFields *prometheus.CounterVec
	hcmCalls      *prometheus.CounterVec
	llmDuration   *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the package-level metrics registered with the global
// registry. Collectors are created once so repeated construction (tests,
// multiple servers) cannot trigger duplicate-registration panics.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = MustNew(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// MustNew constructs Metrics against the given registerer, panicking on
// registration conflicts the way promauto does. Tests pass a fresh registry.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		chatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hcm_agent",
				Name:      "chat_requests_total",
				Help:      "Chat requests by outcome.",
			},
			[]string{"outcome"},
		),
		clampedFields: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hcm_agent",
				Name:      "plan_clamped_total",
				Help:      "Plan corrections applied by the catalog clamp.",
			},
			[]string{"kind"},
		),
		hcmCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hcm_agent",
				Name:      "hcm_calls_total",
				Help:      "Executed HCM API calls by method and status.",
			},
			[]string{"method", "status"},
		),
		llmDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hcm_agent",
				Name:      "llm_request_duration_seconds",
				Help:      "Latency of language-model calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}

	reg.MustRegister(m.chatRequests, m.clampedFields, m.hcmCalls, m.llmDuration)
	return m
}

// ChatRequest counts one finished chat request ("ok", "bad_request",
// "plan_error", "error").
func (m *Metrics) ChatRequest(outcome string) {
	m.chatRequests.WithLabelValues(outcome).Inc()
}

// Clamped counts clamp corrections by kind ("version", "param", "body",
// "unmatched").
func (m *Metrics) Clamped(kind string, n int) {
	if n > 0 {
		m.clampedFields.WithLabelValues(kind).Add(float64(n))
	}
}

// HCMCall counts one executed API call ("ok" or "error").
func (m *Metrics) HCMCall(method, status string) {
	m.hcmCalls.WithLabelValues(method, status).Inc()
}

// ObserveLLM records the latency of one model call for a pipeline stage
// ("plan" or "respond").
func (m *Metrics) ObserveLLM(stage string, elapsed time.Duration) {
	m.llmDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}
