package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/database"
	uniformDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/uniform"
	"github.com/frahmantamala/uniform-manager/internal/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UniformRepository implements stock.RepositoryAPI using GORM
type UniformRepository struct {
	db *gorm.DB
}

func NewUniformRepository(db *gorm.DB) *UniformRepository {
	return &UniformRepository{db: db}
}

func (r *UniformRepository) GetByID(ctx context.Context, id uuid.UUID) (*stock.UniformItem, error) {
	var row uniformDatamodel.UniformItem
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUniformItemNotFound
		}
		return nil, err
	}
	return stock.FromDataModel(&row), nil
}

func (r *UniformRepository) GetByEAN(ctx context.Context, ean string) (*stock.UniformItem, error) {
	var row uniformDatamodel.UniformItem
	err := database.Conn(ctx, r.db).Where("ean = ?", ean).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUniformItemNotFound
		}
		return nil, err
	}
	return stock.FromDataModel(&row), nil
}

func (r *UniformRepository) List(ctx context.Context) ([]*stock.UniformItem, error) {
	var rows []*uniformDatamodel.UniformItem
	err := database.Conn(ctx, r.db).
		Order("name ASC").
		Order("size ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return stock.FromDataModelSlice(rows), nil
}

func (r *UniformRepository) Create(ctx context.Context, item *stock.UniformItem) error {
	row := stock.ToDataModel(item)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	item.ID = row.ID
	item.CreatedAt = row.CreatedAt
	item.UpdatedAt = row.UpdatedAt
	return nil
}

// Decrement is a single guarded UPDATE so concurrent decrements can never
// take stock below zero.
func (r *UniformRepository) Decrement(ctx context.Context, id uuid.UUID, quantity int64) error {
	res := database.Conn(ctx, r.db).
		Model(&uniformDatamodel.UniformItem{}).
		Where("id = ? AND stock_on_hand >= ?", id, quantity).
		UpdateColumn("stock_on_hand", gorm.Expr("stock_on_hand - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// distinguish a missing row from an exhausted one
	var count int64
	if err := database.Conn(ctx, r.db).Model(&uniformDatamodel.UniformItem{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return internal.ErrUniformItemNotFound
	}
	return internal.ErrInsufficientStock.WithDetails(map[string]interface{}{
		"uniform_item_id": id.String(),
		"requested":       quantity,
	})
}
