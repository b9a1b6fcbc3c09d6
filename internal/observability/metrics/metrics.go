package metrics

import "github.com/prometheus/client_golang/prometheus"

// FusionMetrics exposes counters/histograms for the fusion pipeline.
type FusionMetrics struct {
	orchestrationsTotal  *prometheus.CounterVec
	branchFailuresTotal  *prometheus.CounterVec
	narrativeTotal       *prometheus.CounterVec
	quantFallbacksTotal  prometheus.Counter
	orchestrationLatency prometheus.Histogram
}

func NewFusionMetrics(reg prometheus.Registerer) *FusionMetrics {
	m := &FusionMetrics{
		orchestrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "health",
			Subsystem: "fusion",
			Name:      "orchestrations_total",
			Help:      "Total orchestration requests",
		}, []string{"status"}),
		branchFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "health",
			Subsystem: "fusion",
			Name:      "branch_failures_total",
			Help:      "Fan-out branches dropped from the unified result",
		}, []string{"branch"}),
		narrativeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "health",
			Subsystem: "narrative",
			Name:      "requests_total",
			Help:      "Narrative synthesis calls by mode and outcome",
		}, []string{"mode", "outcome"}),
		quantFallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "health",
			Subsystem: "biorisk",
			Name:      "remote_fallbacks_total",
			Help:      "Remote quantitative model failures recovered locally",
		}),
		orchestrationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "health",
			Subsystem: "fusion",
			Name:      "orchestration_latency_seconds",
			Help:      "End-to-end latency of one orchestration",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.orchestrationsTotal,
		m.branchFailuresTotal,
		m.narrativeTotal,
		m.quantFallbacksTotal,
		m.orchestrationLatency,
	)
	return m
}

func (m *FusionMetrics) ObserveOrchestration(status string, seconds float64) {
	if m == nil {
		return
	}
	m.orchestrationsTotal.WithLabelValues(status).Inc()
	m.orchestrationLatency.Observe(seconds)
}

func (m *FusionMetrics) ObserveBranchFailure(branch string) {
	if m == nil {
		return
	}
	m.branchFailuresTotal.WithLabelValues(branch).Inc()
}

func (m *FusionMetrics) ObserveNarrative(mode, outcome string) {
	if m == nil {
		return
	}
	m.narrativeTotal.WithLabelValues(mode, outcome).Inc()
}

func (m *FusionMetrics) ObserveQuantFallback() {
	if m == nil {
		return
	}
	m.quantFallbacksTotal.Inc()
}
