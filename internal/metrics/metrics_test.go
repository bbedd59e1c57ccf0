package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counter(t *testing.T, f *dto.MetricFamily, label string) float64 {
	t.Helper()
	require.NotNil(t, f)
	for _, m := range f.GetMetric() {
		if label == "" && len(m.GetLabel()) == 0 {
			return m.GetCounter().GetValue()
		}
		for _, lp := range m.GetLabel() {
			if lp.GetValue() == label {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("no series with label %q in %s", label, f.GetName())
	return 0
}

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest(OutcomeCreated, 3)
	m.ObserveRequest(OutcomeCreated, 2)
	m.ObserveRequest(OutcomeQuotaExceeded, 9)
	m.ObserveRequest("", 0)

	families := gather(t, reg)
	assert.Equal(t, 2.0, counter(t, families["uniform_requests_total"], OutcomeCreated))
	assert.Equal(t, 1.0, counter(t, families["uniform_requests_total"], OutcomeQuotaExceeded))
	assert.Equal(t, 1.0, counter(t, families["uniform_requests_total"], "unknown"))
	assert.Equal(t, 5.0, counter(t, families["uniform_items_requested_total"], ""))
}

func TestCooldownAndStatusCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncCooldownOpened()
	m.IncCooldownOpened()
	m.IncCooldownExpired()
	m.IncStatusChange("DISPATCHED")
	m.IncReconciled(true)
	m.IncReconciled(false)
	m.IncReconciled(false)

	families := gather(t, reg)
	assert.Equal(t, 2.0, counter(t, families["uniform_cooldowns_opened_total"], ""))
	assert.Equal(t, 1.0, counter(t, families["uniform_cooldowns_expired_total"], ""))
	assert.Equal(t, 1.0, counter(t, families["uniform_request_status_changes_total"], "DISPATCHED"))
	assert.Equal(t, 1.0, counter(t, families["uniform_role_reconciled_staff_total"], "true"))
	assert.Equal(t, 2.0, counter(t, families["uniform_role_reconciled_staff_total"], "false"))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *UniformMetrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(OutcomeCreated, 1)
		m.IncCooldownOpened()
		m.IncCooldownExpired()
		m.IncStatusChange("ARRIVED")
		m.IncReconciled(true)
	})

	unregistered := New(nil)
	assert.NotPanics(t, func() { unregistered.ObserveRequest(OutcomeError, 0) })
}
