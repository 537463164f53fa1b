// ABOUTME: This file defines Prometheus metrics for fetch, cache, and fallback activity
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates the service's Prometheus instruments. One instance is
// created during wiring and shared by the orchestrator and handlers.
type Metrics struct {
	FetchTotal    *prometheus.CounterVec
	CacheLookups  *prometheus.CounterVec
	FallbackTier  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
}

// New registers the service instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contenthub_fetch_total",
			Help: "Adapter fetches by adapter name and result (success, failure).",
		}, []string{"adapter", "result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contenthub_cache_lookups_total",
			Help: "Cache lookups by result (hit, miss).",
		}, []string{"result"}),
		FallbackTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contenthub_fallback_tier_total",
			Help: "Fallback tier activations by tier (1, 2, 3).",
		}, []string{"tier"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contenthub_fetch_duration_seconds",
			Help:    "Adapter fetch latency including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"adapter"}),
	}

	reg.MustRegister(m.FetchTotal, m.CacheLookups, m.FallbackTier, m.FetchDuration)
	return m
}
