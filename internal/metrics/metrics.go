// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalyzeLatency   prometheus.Histogram
	CacheHits        prometheus.Counter
	RegistryChecks   prometheus.Counter
	RegistryChanges  prometheus.Counter
	AlertsCreated    prometheus.Counter
	CustomRulesFired *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "younghome_analyses_total",
			Help: "Total number of lease analyses, labeled by risk level",
		}, []string{"level"}),
		AnalyzeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "younghome_analyze_latency_seconds",
			Help:    "Latency of lease risk analyses in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "younghome_analysis_cache_hits_total",
			Help: "Total number of analyses served from cache",
		}),
		RegistryChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "younghome_registry_checks_total",
			Help: "Total number of registry monitoring checks",
		}),
		RegistryChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "younghome_registry_changes_total",
			Help: "Total number of detected registry changes",
		}),
		AlertsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "younghome_alerts_created_total",
			Help: "Total number of subscription alerts created",
		}),
		CustomRulesFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "younghome_custom_rules_fired_total",
			Help: "Total number of custom rule matches, labeled by rule category",
		}, []string{"rule"}),
	}
}

// ObserveAnalysis records one completed analysis.
func (m *Metrics) ObserveAnalysis(level string, durationSeconds float64) {
	m.AnalysesTotal.WithLabelValues(level).Inc()
	m.AnalyzeLatency.Observe(durationSeconds)
}

// IncrementCacheHits increments the analysis cache hit counter.
func (m *Metrics) IncrementCacheHits() {
	m.CacheHits.Inc()
}

// ObserveRegistryCheck records one registry check and whether it moved.
func (m *Metrics) ObserveRegistryCheck(changed bool) {
	m.RegistryChecks.Inc()
	if changed {
		m.RegistryChanges.Inc()
	}
}

// IncrementAlertsCreated increments the alert counter.
func (m *Metrics) IncrementAlertsCreated() {
	m.AlertsCreated.Inc()
}

// IncrementCustomRuleFired increments the counter for a custom rule match.
func (m *Metrics) IncrementCustomRuleFired(category string) {
	m.CustomRulesFired.WithLabelValues(category).Inc()
}
