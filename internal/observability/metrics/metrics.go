package metrics

import "github.com/prometheus/client_golang/prometheus"

// Resolution sources.
const (
	SourceAgent    = "agent"
	SourceFallback = "fallback"
)

// Scan outcomes.
const (
	ScanIdentified   = "identified"
	ScanUnidentified = "unidentified"
	ScanUploadFailed = "upload_failed"
	ScanAgentFailed  = "agent_failed"
)

// CompanionMetrics exposes counters for chat resolution and scan flows.
type CompanionMetrics struct {
	resolutionTotal *prometheus.CounterVec
	scanTotal       *prometheus.CounterVec
}

func NewCompanionMetrics(reg prometheus.Registerer) *CompanionMetrics {
	m := &CompanionMetrics{
		resolutionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medimart",
			Subsystem: "chat",
			Name:      "resolution_total",
			Help:      "Chat resolutions by source (remote agent vs local fallback)",
		}, []string{"source"}),
		scanTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medimart",
			Subsystem: "scan",
			Name:      "total",
			Help:      "Medicine scans by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.resolutionTotal, m.scanTotal)
	return m
}

func (m *CompanionMetrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.resolutionTotal.WithLabelValues(source).Inc()
}

func (m *CompanionMetrics) ObserveScan(outcome string) {
	if m == nil {
		return
	}
	m.scanTotal.WithLabelValues(outcome).Inc()
}
