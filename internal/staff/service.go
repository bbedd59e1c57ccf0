package staff

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	// Update writes only the fields set in u.
	Update(ctx context.Context, id uuid.UUID, u Updates) error
	// ListByRoleWithOpenWindow returns staff of the role whose last_request_date is set.
	ListByRoleWithOpenWindow(ctx context.Context, roleID uuid.UUID) ([]*Staff, error)
	List(ctx context.Context) ([]*Staff, error)
	Create(ctx context.Context, s *Staff) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListStaff(ctx context.Context) ([]StaffOption, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list staff", "error", err)
		return nil, internal.NewStoreError("list staff", err)
	}

	options := make([]StaffOption, 0, len(members))
	for _, m := range members {
		options = append(options, m.ToOption())
	}
	return options, nil
}
