package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeCreated           = "created"
	OutcomeCooldownActive    = "cooldown_active"
	OutcomeQuotaExceeded     = "quota_exceeded"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeInvalidQuantity   = "invalid_quantity"
	OutcomeNotFound          = "not_found"
	OutcomeRejected          = "rejected"
	OutcomeError             = "error"
)

// UniformMetrics records request workflow and role reconciliation activity.
// A nil *UniformMetrics is valid and records nothing.
type UniformMetrics struct {
	requests         *prometheus.CounterVec
	quantity         prometheus.Counter
	cooldownsOpened  prometheus.Counter
	cooldownsExpired prometheus.Counter
	statusChanges    *prometheus.CounterVec
	reconciled       *prometheus.CounterVec
}

// New registers the uniform metrics on the provided registerer.
func New(reg prometheus.Registerer) *UniformMetrics {
	if reg == nil {
		return &UniformMetrics{}
	}
	m := &UniformMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uniform_requests_total",
			Help: "Uniform request submissions by outcome.",
		}, []string{"outcome"}),
		quantity: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uniform_items_requested_total",
			Help: "Total uniform item quantity across accepted requests.",
		}),
		cooldownsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uniform_cooldowns_opened_total",
			Help: "Staff members placed into cooldown by a request.",
		}),
		cooldownsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uniform_cooldowns_expired_total",
			Help: "Stale cooldowns cleared lazily during validation.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uniform_request_status_changes_total",
			Help: "Request status transitions by target status.",
		}, []string{"status"}),
		reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uniform_role_reconciled_staff_total",
			Help: "Staff cooldown flags recomputed after a role policy change, by resulting flag.",
		}, []string{"is_cooldown"}),
	}
	reg.MustRegister(m.requests, m.quantity, m.cooldownsOpened, m.cooldownsExpired, m.statusChanges, m.reconciled)
	return m
}

func (m *UniformMetrics) ObserveRequest(outcome string, quantity int64) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(outcome)).Inc()
	if outcome == OutcomeCreated && quantity > 0 {
		m.quantity.Add(float64(quantity))
	}
}

func (m *UniformMetrics) IncCooldownOpened() {
	if m == nil || m.cooldownsOpened == nil {
		return
	}
	m.cooldownsOpened.Inc()
}

func (m *UniformMetrics) IncCooldownExpired() {
	if m == nil || m.cooldownsExpired == nil {
		return
	}
	m.cooldownsExpired.Inc()
}

func (m *UniformMetrics) IncStatusChange(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *UniformMetrics) IncReconciled(isCooldown bool) {
	if m == nil || m.reconciled == nil {
		return
	}
	label := "false"
	if isCooldown {
		label = "true"
	}
	m.reconciled.WithLabelValues(label).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
