package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCompanionMetrics(reg)

	m.ObserveResolution(SourceAgent)
	m.ObserveResolution(SourceFallback)
	m.ObserveResolution(SourceFallback)
	m.ObserveScan(ScanIdentified)

	if got := testutil.ToFloat64(m.resolutionTotal.WithLabelValues(SourceAgent)); got != 1 {
		t.Errorf("agent resolutions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.resolutionTotal.WithLabelValues(SourceFallback)); got != 2 {
		t.Errorf("fallback resolutions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.scanTotal.WithLabelValues(ScanIdentified)); got != 1 {
		t.Errorf("identified scans = %v, want 1", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *CompanionMetrics
	m.ObserveResolution(SourceAgent)
	m.ObserveScan(ScanUploadFailed)
}
