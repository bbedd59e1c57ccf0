package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/database"
	requestDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/request"
	"github.com/frahmantamala/uniform-manager/internal/request"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestRepository is the write side of the request history.
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Insert(ctx context.Context, req *request.Request) error {
	row := request.ToDataModel(req)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	req.ID = row.ID
	return nil
}

// SumRequestedQuantity totals item quantities of requests created at or after since.
func (r *RequestRepository) SumRequestedQuantity(ctx context.Context, staffID uuid.UUID, since time.Time) (int64, error) {
	var total int64
	err := database.Conn(ctx, r.db).
		Model(&requestDatamodel.RequestItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("staff_id = ? AND created_at >= ?", staffID, since.UTC()).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, trackingNumber, status string) error {
	res := database.Conn(ctx, r.db).
		Model(&requestDatamodel.Request{}).
		Where("tracking_number = ?", trackingNumber).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) GetStatus(ctx context.Context, trackingNumber string) (string, error) {
	var row requestDatamodel.Request
	err := database.Conn(ctx, r.db).
		Select("status").
		Where("tracking_number = ?", trackingNumber).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", internal.ErrRequestNotFound
		}
		return "", err
	}
	return row.Status, nil
}
