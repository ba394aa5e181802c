package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAccessMetricsCountsVerdicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAccessMetrics(reg)
	m.IncVerdict("org-admin", "redirect")
	m.IncVerdict("org-admin", "redirect")
	m.IncVerdict("", "allow")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "access_gate_verdicts_total", map[string]string{"group": "org-admin", "verdict": "redirect"}); err != nil {
		t.Fatalf("fetch verdicts: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 redirects, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "access_gate_verdicts_total", map[string]string{"group": "unknown", "verdict": "allow"}); err != nil {
		t.Fatalf("fetch verdicts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected blank group to be labelled unknown, got %f", got)
	}
}

func TestPointsMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPointsMetrics(reg)
	m.ObserveFetch(OutcomeOK, 20*time.Millisecond)
	m.ObserveFetch(OutcomeError, 5*time.Millisecond)
	m.ObserveAward("day_completed", OutcomeOK, 10)
	m.ObserveAward("day_completed", OutcomeZero, 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "points_total_fetches_total", map[string]string{"outcome": OutcomeOK}); err != nil || got != 1 {
		t.Fatalf("expected one ok fetch, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "points_awards_total", map[string]string{"event": "day_completed", "outcome": OutcomeZero}); err != nil || got != 1 {
		t.Fatalf("expected one zero award, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "points_awarded_sum", map[string]string{"event": "day_completed"}); err != nil || got != 10 {
		t.Fatalf("expected 10 points awarded, got %f err=%v", got, err)
	}

	mf := findMetricFamily(mfs, "points_total_fetch_duration_seconds")
	if mf == nil {
		t.Fatal("fetch histogram missing")
	}
	if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 2 {
		t.Fatalf("expected 2 samples, got %d", count)
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/v1/me", 200, 30*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "http_request_duration_seconds")
	if mf == nil {
		t.Fatal("histogram missing")
	}
	metric := mf.GetMetric()[0]
	if !matchesLabels(metric.GetLabel(), map[string]string{"method": "GET", "route": "/api/v1/me", "status": "200"}) {
		t.Fatalf("unexpected labels %v", metric.GetLabel())
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	NewAccessMetrics(nil).IncVerdict("index", "allow")
	NewPointsMetrics(nil).ObserveAward("quiz_passed", OutcomeOK, 15)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)

	var m *PointsMetrics
	m.ObserveFetch(OutcomeOK, time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if pair.GetValue() != v {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
