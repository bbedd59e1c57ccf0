package role

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/events"
	"github.com/frahmantamala/uniform-manager/internal/metrics"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	UpdatePolicy(ctx context.Context, id uuid.UUID, policy PolicyUpdate) error
	// GetOrCreateByName looks roles up by lower-cased name, inserting an
	// unlimited role without cooldown when missing.
	GetOrCreateByName(ctx context.Context, name string) (*Role, error)
}

type StaffRepository interface {
	ListByRoleWithOpenWindow(ctx context.Context, roleID uuid.UUID) ([]*staff.Staff, error)
	Update(ctx context.Context, id uuid.UUID, u staff.Updates) error
}

// QuantityCounter sums requested quantities of a staff member since a point in time.
type QuantityCounter interface {
	SumRequestedQuantity(ctx context.Context, staffID uuid.UUID, since time.Time) (int64, error)
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo      RepositoryAPI
	staffRepo StaffRepository
	counter   QuantityCounter
	tx        TxManager
	publisher events.Publisher
	metrics   *metrics.UniformMetrics
	logger    *slog.Logger
}

func NewService(
	repo RepositoryAPI,
	staffRepo StaffRepository,
	counter QuantityCounter,
	tx TxManager,
	publisher events.Publisher,
	m *metrics.UniformMetrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		staffRepo: staffRepo,
		counter:   counter,
		tx:        tx,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func (s *Service) ListRoles(ctx context.Context) ([]RoleSettings, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.NewStoreError("list roles", err)
	}

	rows := make([]RoleSettings, 0, len(roles))
	for _, r := range roles {
		rows = append(rows, r.ToSettingsRow())
	}
	return rows, nil
}

// UpdateRolePolicy persists a new policy and recomputes the cooldown flag of
// every holder with an open window against the new limit. Both happen in one
// transaction.
func (s *Service) UpdateRolePolicy(ctx context.Context, roleID uuid.UUID, dto UpdateRolePolicyDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("invalid role policy", "role_id", roleID, "error", err)
		return nil, err
	}

	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	current, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		s.logger.Warn("role lookup failed", "role_id", roleID, "error", err)
		return nil, internal.NewStoreError("get role", err)
	}

	policy := PolicyUpdate{
		UniformLimit: current.UniformLimit,
		CooldownDays: current.CooldownDays,
	}
	if dto.UniformLimit.Set {
		policy.UniformLimit = dto.UniformLimit.Value
	}
	if dto.CooldownDays != nil {
		policy.CooldownDays = *dto.CooldownDays
	}

	var flags []bool
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		flags = flags[:0]
		holders, err := s.staffRepo.ListByRoleWithOpenWindow(ctx, roleID)
		if err != nil {
			return internal.NewStoreError("list role holders", err)
		}

		for _, holder := range holders {
			cumulative, err := s.counter.SumRequestedQuantity(ctx, holder.ID, *holder.LastRequestDate)
			if err != nil {
				return internal.NewStoreError("sum requested quantity", err)
			}

			onCooldown := LimitReached(policy.UniformLimit, cumulative)
			if err := s.staffRepo.Update(ctx, holder.ID, staff.SetCooldown(onCooldown)); err != nil {
				return internal.NewStoreError("update staff cooldown", err)
			}
			flags = append(flags, onCooldown)
		}

		if err := s.repo.UpdatePolicy(ctx, roleID, policy); err != nil {
			return internal.NewStoreError("update role policy", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("role policy update rolled back", "role_id", roleID, "error", err)
		return nil, err
	}

	for _, f := range flags {
		s.metrics.IncReconciled(f)
	}

	updated := *current
	updated.UniformLimit = policy.UniformLimit
	updated.CooldownDays = policy.CooldownDays

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.NewRolePolicyUpdatedEvent(roleID.String(), policy.UniformLimit, policy.CooldownDays, len(flags)))
	}

	s.logger.Info("role policy updated",
		"role_id", roleID,
		"role", updated.Name,
		"uniform_limit", limitLabel(policy.UniformLimit),
		"cooldown_days", policy.CooldownDays,
		"reconciled_staff", len(flags))

	return &updated, nil
}

func limitLabel(limit *int64) interface{} {
	if limit == nil {
		return "unlimited"
	}
	return *limit
}
