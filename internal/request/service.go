package request

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/common/validation"
	"github.com/frahmantamala/uniform-manager/internal/core/events"
	"github.com/frahmantamala/uniform-manager/internal/metrics"
	"github.com/frahmantamala/uniform-manager/internal/role"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/frahmantamala/uniform-manager/internal/stock"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	// Insert stores the header and all of its items together.
	Insert(ctx context.Context, r *Request) error
	SumRequestedQuantity(ctx context.Context, staffID uuid.UUID, since time.Time) (int64, error)
	UpdateStatus(ctx context.Context, trackingNumber, status string) error
	GetStatus(ctx context.Context, trackingNumber string) (string, error)
}

type QueryAPI interface {
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
}

type StaffRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*staff.Staff, error)
	Update(ctx context.Context, id uuid.UUID, u staff.Updates) error
}

type RoleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*role.Role, error)
}

type StockRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*stock.UniformItem, error)
	Decrement(ctx context.Context, id uuid.UUID, quantity int64) error
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Options struct {
	LowStockThreshold int64
	DefaultListLimit  int
	Metrics           *metrics.UniformMetrics
	Publisher         events.Publisher
	Now               func() time.Time
	// StoreTimeout bounds the store calls of one operation; zero means 5s.
	StoreTimeout time.Duration
}

type Service struct {
	repo      RepositoryAPI
	query     QueryAPI
	staffRepo StaffRepository
	roleRepo  RoleRepository
	stockRepo StockRepository
	tx        TxManager
	validator *Validator
	opts      Options
	logger    *slog.Logger
}

func NewService(
	repo RepositoryAPI,
	query QueryAPI,
	staffRepo StaffRepository,
	roleRepo RoleRepository,
	stockRepo StockRepository,
	tx TxManager,
	opts Options,
	logger *slog.Logger,
) *Service {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.DefaultListLimit <= 0 {
		opts.DefaultListLimit = 50
	}

	return &Service{
		repo:      repo,
		query:     query,
		staffRepo: staffRepo,
		roleRepo:  roleRepo,
		stockRepo: stockRepo,
		tx:        tx,
		validator: NewValidator(staffRepo, stockRepo, repo, opts.Metrics, logger).WithClock(opts.Now),
		opts:      opts,
		logger:    logger,
	}
}

// Validator exposes the request validator sharing this service's stores and clock.
func (s *Service) Validator() *Validator {
	return s.validator
}

func (s *Service) now() time.Time {
	// Postgres keeps microseconds; window bounds must round-trip exactly
	return s.opts.Now().UTC().Truncate(time.Microsecond)
}

// CreateRequest validates and records a uniform request. Inserting the
// request, decrementing stock and updating the staff cooldown state commit
// or roll back together.
func (s *Service) CreateRequest(ctx context.Context, dto CreateRequestDTO) (*RequestView, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	view, total, err := s.createRequest(ctx, dto)
	if err != nil {
		s.opts.Metrics.ObserveRequest(outcomeFor(err), 0)
		return nil, err
	}
	s.opts.Metrics.ObserveRequest(metrics.OutcomeCreated, total)
	return view, nil
}

func (s *Service) createRequest(ctx context.Context, dto CreateRequestDTO) (*RequestView, int64, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("invalid uniform request", "staff_id", dto.StaffID, "error", err)
		return nil, 0, err
	}

	member, err := s.staffRepo.GetByID(ctx, dto.StaffID)
	if err != nil {
		s.logger.Warn("staff lookup failed", "staff_id", dto.StaffID, "error", err)
		return nil, 0, internal.NewStoreError("get staff", err)
	}

	policy, err := s.roleRepo.GetByID(ctx, member.RoleID)
	if err != nil {
		s.logger.Warn("role lookup failed", "staff_id", member.ID, "role_id", member.RoleID, "error", err)
		return nil, 0, internal.NewStoreError("get role", err)
	}

	items := dto.ToItems()
	assessment, err := s.validator.Validate(ctx, member, policy, items)
	if err != nil {
		s.logger.Info("uniform request rejected",
			"staff_id", member.ID,
			"code", internal.ErrorCodeOf(err),
			"error", err)
		return nil, 0, err
	}

	now := s.now()
	req := &Request{
		TrackingNumber: NewTrackingNumber(),
		StaffID:        member.ID,
		Status:         StatusRequested,
		Reason:         dto.NormalizedReason(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Items:          items,
	}

	var cooldownOpened bool
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cooldownOpened = false
		if err := s.repo.Insert(ctx, req); err != nil {
			return internal.NewStoreError("insert request", err)
		}

		for _, it := range items {
			if err := s.stockRepo.Decrement(ctx, it.UniformItemID, it.Quantity); err != nil {
				if internal.ErrorCodeOf(err) == internal.ErrCodeInsufficientStock {
					return insufficientStockFor(assessment, it)
				}
				return internal.NewStoreError("decrement stock", err)
			}
		}

		updates, err := s.cooldownUpdates(ctx, member, policy, now)
		if err != nil {
			return err
		}
		if updates.IsEmpty() {
			return nil
		}
		if err := s.staffRepo.Update(ctx, member.ID, updates); err != nil {
			return internal.NewStoreError("update staff", err)
		}
		cooldownOpened = updates.IsCooldown != nil && *updates.IsCooldown
		return nil
	})
	if err != nil {
		s.logger.Error("uniform request rolled back",
			"staff_id", member.ID,
			"tracking_number", req.TrackingNumber,
			"error", err)
		return nil, 0, err
	}

	total := req.TotalQuantity()
	if cooldownOpened {
		s.opts.Metrics.IncCooldownOpened()
	}
	s.publishCreated(ctx, req, assessment, cooldownOpened)

	s.logger.Info("uniform request created",
		"tracking_number", req.TrackingNumber,
		"staff_id", member.ID,
		"total_quantity", total,
		"cooldown_opened", cooldownOpened)

	view, err := s.GetRequestByTrackingNumber(ctx, req.TrackingNumber)
	if err != nil {
		return nil, 0, err
	}
	return view, total, nil
}

// cooldownUpdates opens a window for first requests and flags the member
// once cumulative usage in the window reaches the limit. Only fields that
// actually change are returned.
func (s *Service) cooldownUpdates(ctx context.Context, member *staff.Staff, policy *role.Role, now time.Time) (staff.Updates, error) {
	var updates staff.Updates

	windowStart := member.LastRequestDate
	if windowStart == nil {
		windowStart = &now
		updates.LastRequestDate = &now
	}

	if !policy.HasLimit() {
		return updates, nil
	}

	cumulative, err := s.repo.SumRequestedQuantity(ctx, member.ID, *windowStart)
	if err != nil {
		return updates, internal.NewStoreError("sum requested quantity", err)
	}
	if role.LimitReached(policy.UniformLimit, cumulative) && !member.IsCooldown {
		on := true
		updates.IsCooldown = &on
	}
	return updates, nil
}

func (s *Service) publishCreated(ctx context.Context, req *Request, assessment *Assessment, cooldownOpened bool) {
	if s.opts.Publisher == nil {
		return
	}

	_ = s.opts.Publisher.Publish(ctx, events.NewRequestCreatedEvent(req.TrackingNumber, req.StaffID.String(), req.TotalQuantity(), cooldownOpened))

	requested := make(map[uuid.UUID]int64, len(req.Items))
	for _, it := range req.Items {
		requested[it.UniformItemID] += it.Quantity
	}
	for id, qty := range requested {
		item, ok := assessment.Items[id]
		if !ok {
			continue
		}
		remaining := item.StockOnHand - qty
		if remaining < s.opts.LowStockThreshold {
			_ = s.opts.Publisher.Publish(ctx, events.NewStockLowEvent(id.String(), item.DisplayName(), remaining, s.opts.LowStockThreshold))
		}
	}
}

// ChangeRequestStatus sets the status of a request. Repeating the current
// status succeeds without writing.
func (s *Service) ChangeRequestStatus(ctx context.Context, trackingNumber, status string) (*RequestView, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if err := requireTrackingNumber(trackingNumber); err != nil {
		return nil, err
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if appErr := validation.ValidateRequestStatus(status, Statuses); appErr != nil {
		s.logger.Warn("invalid request status", "tracking_number", trackingNumber, "status", status)
		return nil, appErr
	}

	ctx, cancel := internal.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	current, err := s.repo.GetStatus(ctx, trackingNumber)
	if err != nil {
		s.logger.Warn("request status lookup failed", "tracking_number", trackingNumber, "error", err)
		return nil, internal.NewStoreError("get request status", err)
	}

	if current != status {
		if err := s.repo.UpdateStatus(ctx, trackingNumber, status); err != nil {
			s.logger.Error("failed to update request status", "tracking_number", trackingNumber, "error", err)
			return nil, internal.NewStoreError("update request status", err)
		}
		s.opts.Metrics.IncStatusChange(status)
		if s.opts.Publisher != nil {
			_ = s.opts.Publisher.Publish(ctx, events.NewRequestStatusChangedEvent(trackingNumber, current, status))
		}
		s.logger.Info("request status changed", "tracking_number", trackingNumber, "from", current, "to", status)
	}

	return s.GetRequestByTrackingNumber(ctx, trackingNumber)
}

func (s *Service) GetRequestByTrackingNumber(ctx context.Context, trackingNumber string) (*RequestView, error) {
	if err := requireTrackingNumber(trackingNumber); err != nil {
		return nil, err
	}

	rec, err := s.query.GetByTrackingNumber(ctx, strings.TrimSpace(trackingNumber))
	if err != nil {
		return nil, internal.NewStoreError("get request", err)
	}
	return ToView(rec, s.opts.LowStockThreshold), nil
}

// ListRequests returns requests newest first.
func (s *Service) ListRequests(ctx context.Context, filter ListFilter) ([]*RequestView, ListFilter, error) {
	filter, err := filter.Normalize(s.opts.DefaultListLimit)
	if err != nil {
		return nil, filter, err
	}

	records, err := s.query.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list requests", "error", err)
		return nil, filter, internal.NewStoreError("list requests", err)
	}

	views := make([]*RequestView, 0, len(records))
	for _, rec := range records {
		views = append(views, ToView(rec, s.opts.LowStockThreshold))
	}
	return views, filter, nil
}

func insufficientStockFor(assessment *Assessment, it Item) error {
	details := map[string]interface{}{
		"uniform_item_id": it.UniformItemID,
		"requested":       it.Quantity,
	}
	if item, ok := assessment.Items[it.UniformItemID]; ok {
		details["item"] = item.DisplayName()
	}
	return internal.ErrInsufficientStock.WithDetails(details)
}

func outcomeFor(err error) string {
	switch internal.ErrorCodeOf(err) {
	case internal.ErrCodeCooldownActive:
		return metrics.OutcomeCooldownActive
	case internal.ErrCodeQuotaExceeded:
		return metrics.OutcomeQuotaExceeded
	case internal.ErrCodeInsufficientStock:
		return metrics.OutcomeInsufficientStock
	case internal.ErrCodeInvalidQuantity:
		return metrics.OutcomeInvalidQuantity
	case internal.ErrCodeStaffNotFound, internal.ErrCodeRoleNotFound, internal.ErrCodeUniformItemNotFound:
		return metrics.OutcomeNotFound
	case internal.ErrCodeValidationFailed:
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}
