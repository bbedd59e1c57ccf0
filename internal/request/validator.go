package request

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/common/validation"
	"github.com/frahmantamala/uniform-manager/internal/metrics"
	"github.com/frahmantamala/uniform-manager/internal/role"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/frahmantamala/uniform-manager/internal/stock"
	"github.com/google/uuid"
)

type StaffUpdater interface {
	Update(ctx context.Context, id uuid.UUID, u staff.Updates) error
}

type ItemLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*stock.UniformItem, error)
}

type QuantityCounter interface {
	SumRequestedQuantity(ctx context.Context, staffID uuid.UUID, since time.Time) (int64, error)
}

// Assessment is what a passing validation learned about the request.
type Assessment struct {
	Items             map[uuid.UUID]*stock.UniformItem
	PreviousQuantity  int64
	RequestedQuantity int64
}

// Validator decides whether a staff member may place a request right now.
type Validator struct {
	staffRepo StaffUpdater
	items     ItemLookup
	counter   QuantityCounter
	metrics   *metrics.UniformMetrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewValidator(staffRepo StaffUpdater, items ItemLookup, counter QuantityCounter, m *metrics.UniformMetrics, logger *slog.Logger) *Validator {
	return &Validator{
		staffRepo: staffRepo,
		items:     items,
		counter:   counter,
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// ExpireCooldownIfDue rejects with CooldownActive while the cooldown of s is
// running. Once it has run out the flag and window are cleared in the store
// and on s. Staff not in cooldown are left untouched.
func (v *Validator) ExpireCooldownIfDue(ctx context.Context, s *staff.Staff, r *role.Role) error {
	if !s.IsCooldown {
		return nil
	}

	now := v.now()
	if s.LastRequestDate != nil {
		endsAt := s.CooldownEndsAt(r.CooldownDays)
		if now.Before(endsAt) {
			return internal.ErrCooldownActive.WithDetails(map[string]interface{}{
				"cooldown_ends_at": endsAt.UTC(),
				"remaining_days":   remainingDays(endsAt.Sub(now)),
			})
		}
	}

	expire := staff.ExpireCooldown()
	if err := v.staffRepo.Update(ctx, s.ID, expire); err != nil {
		v.logger.Error("failed to expire cooldown", "staff_id", s.ID, "error", err)
		return internal.NewStoreError("expire cooldown", err)
	}
	s.Apply(expire)
	v.metrics.IncCooldownExpired()
	v.logger.Info("cooldown expired", "staff_id", s.ID, "role", r.Name)
	return nil
}

// Validate runs the cooldown gate, per-item checks and the quota check in that order.
func (v *Validator) Validate(ctx context.Context, s *staff.Staff, r *role.Role, items []Item) (*Assessment, error) {
	if err := v.ExpireCooldownIfDue(ctx, s, r); err != nil {
		return nil, err
	}

	assessment := &Assessment{Items: make(map[uuid.UUID]*stock.UniformItem, len(items))}
	for _, it := range items {
		if appErr := validation.ValidateQuantity(it.Quantity); appErr != nil {
			return nil, appErr.WithDetails(map[string]interface{}{
				"uniform_item_id": it.UniformItemID,
				"quantity":        it.Quantity,
			})
		}

		item, ok := assessment.Items[it.UniformItemID]
		if !ok {
			var err error
			item, err = v.items.GetByID(ctx, it.UniformItemID)
			if err != nil {
				return nil, internal.NewStoreError("get uniform item", err)
			}
			assessment.Items[it.UniformItemID] = item
		}

		if !item.CanFulfil(it.Quantity) {
			return nil, internal.ErrInsufficientStock.WithDetails(map[string]interface{}{
				"uniform_item_id": item.ID,
				"item":            item.DisplayName(),
				"requested":       it.Quantity,
				"available":       item.StockOnHand,
			})
		}
		assessment.RequestedQuantity += it.Quantity
	}

	if !r.HasLimit() {
		return assessment, nil
	}

	if s.LastRequestDate != nil {
		previous, err := v.counter.SumRequestedQuantity(ctx, s.ID, *s.LastRequestDate)
		if err != nil {
			return nil, internal.NewStoreError("sum requested quantity", err)
		}
		assessment.PreviousQuantity = previous
	}

	if r.Exceeds(assessment.PreviousQuantity, assessment.RequestedQuantity) {
		return nil, internal.ErrQuotaExceeded.WithDetails(map[string]interface{}{
			"limit":     *r.UniformLimit,
			"requested": assessment.RequestedQuantity,
			"remaining": r.Remaining(assessment.PreviousQuantity),
		})
	}
	return assessment, nil
}

func remainingDays(d time.Duration) int64 {
	return int64(math.Ceil(d.Hours() / 24))
}
