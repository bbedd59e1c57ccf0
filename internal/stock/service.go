package stock

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id uuid.UUID) (*UniformItem, error)
	GetByEAN(ctx context.Context, ean string) (*UniformItem, error)
	List(ctx context.Context) ([]*UniformItem, error)
	Create(ctx context.Context, item *UniformItem) error
	// Decrement subtracts quantity only while enough stock remains; otherwise
	// it returns internal.ErrInsufficientStock and leaves the row untouched.
	Decrement(ctx context.Context, id uuid.UUID, quantity int64) error
}

type Service struct {
	repo              RepositoryAPI
	lowStockThreshold int64
	logger            *slog.Logger
}

func NewService(repo RepositoryAPI, lowStockThreshold int64, logger *slog.Logger) *Service {
	return &Service{
		repo:              repo,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

func (s *Service) ListUniforms(ctx context.Context) ([]UniformItemOption, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list uniform items", "error", err)
		return nil, internal.NewStoreError("list uniform items", err)
	}

	options := make([]UniformItemOption, 0, len(items))
	low := 0
	for _, item := range items {
		opt := item.ToOption(s.lowStockThreshold)
		if opt.LowStock {
			low++
		}
		options = append(options, opt)
	}

	s.logger.Debug("listed uniform items", "count", len(options), "low_stock", low)
	return options, nil
}
