package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-topsis/internal/ports"
)

// newTestMetrics returns a collector registered on a fresh registry so
// tests never collide on metric names.
func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

// family gathers reg and returns the named metric family.
func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	require.Failf(t, "metric not found", "no family named %s", name)
	return nil
}

// labelValue returns the value of label name on m.
func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm, _ := newTestMetrics(t)

	assert.NotNil(t, pm.rankTotal)
	assert.NotNil(t, pm.rankDuration)
	assert.NotNil(t, pm.stageDuration)
	assert.NotNil(t, pm.alternatives)
	assert.NotNil(t, pm.scores)
	assert.NotNil(t, pm.rowsDropped)

	var _ ports.MetricsCollector = pm
}

func TestNewPrometheusMetrics_NilRegistererDoesNotRegister(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusMetrics(nil)
		NewPrometheusMetrics(nil)
	})
}

func TestPrometheusMetrics_RankTotal(t *testing.T) {
	pm, reg := newTestMetrics(t)

	pm.RecordCounter("rank_total", 1, map[string]string{"status": "success"})
	pm.RecordCounter("rank_total", 1, map[string]string{"status": "success"})
	pm.RecordCounter("rank_total", 1, map[string]string{"status": "input_shape"})
	pm.RecordCounter("rank_total", 1, nil)

	got := map[string]float64{}
	for _, m := range family(t, reg, "topsis_rank_total").GetMetric() {
		got[labelValue(m, "status")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"success": 3, "input_shape": 1}, got)
}

func TestPrometheusMetrics_RecordLatency(t *testing.T) {
	pm, reg := newTestMetrics(t)

	tests := []struct {
		name      string
		operation string
		labels    map[string]string
		wantStage string
	}{
		{name: "stage with label", operation: "stage", labels: map[string]string{"stage": "normalize"}, wantStage: "normalize"},
		{name: "stage without label", operation: "stage", labels: nil, wantStage: "unknown"},
		{name: "stage with empty label", operation: "stage", labels: map[string]string{"stage": ""}, wantStage: "unknown"},
		{name: "other operation", operation: "read", labels: nil, wantStage: "read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm.RecordLatency(tt.operation, 5*time.Millisecond, tt.labels)
		})
	}
	pm.RecordLatency("rank", 20*time.Millisecond, nil)

	counts := map[string]uint64{}
	for _, m := range family(t, reg, "topsis_stage_duration_seconds").GetMetric() {
		counts[labelValue(m, "stage")] = m.GetHistogram().GetSampleCount()
	}
	assert.Equal(t, map[string]uint64{"normalize": 1, "unknown": 2, "read": 1}, counts)

	rank := family(t, reg, "topsis_rank_duration_seconds").GetMetric()
	require.Len(t, rank, 1)
	assert.Equal(t, uint64(1), rank[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.02, rank[0].GetHistogram().GetSampleSum(), 1e-9)
}

func TestPrometheusMetrics_GaugesAndHistograms(t *testing.T) {
	pm, reg := newTestMetrics(t)

	pm.RecordGauge("alternatives", 3, nil)
	pm.RecordGauge("alternatives", 5, nil)
	pm.RecordGauge("criteria", 2, nil)
	for _, s := range []float64{0.5, 0.61, 0.39} {
		pm.RecordHistogram("score", s, nil)
	}
	pm.RecordHistogram("distance", 0.2, nil)
	pm.RecordCounter("rows_dropped_total", 2, nil)
	pm.RecordCounter("retries", 1, nil)

	assert.Equal(t, 5.0, family(t, reg, "topsis_alternatives").GetMetric()[0].GetGauge().GetValue())

	score := family(t, reg, "topsis_score").GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(3), score.GetSampleCount())
	assert.InDelta(t, 1.5, score.GetSampleSum(), 1e-9)

	assert.Equal(t, 2.0, family(t, reg, "topsis_rows_dropped_total").GetMetric()[0].GetCounter().GetValue())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.ElementsMatch(t, []string{
		"topsis_alternatives",
		"topsis_rank_duration_seconds",
		"topsis_score",
		"topsis_rows_dropped_total",
	}, names, "unknown metric names are ignored")
}
