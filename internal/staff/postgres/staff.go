package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/database"
	staffDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/staff"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*staff.Staff, error) {
	var row staffDatamodel.Staff
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrStaffNotFound
		}
		return nil, err
	}
	return staff.FromDataModel(&row), nil
}

func (r *StaffRepository) Update(ctx context.Context, id uuid.UUID, u staff.Updates) error {
	if u.IsEmpty() {
		return nil
	}

	fields := map[string]interface{}{}
	if u.ClearLastRequestDate {
		fields["last_request_date"] = nil
	} else if u.LastRequestDate != nil {
		fields["last_request_date"] = u.LastRequestDate.UTC()
	}
	if u.IsCooldown != nil {
		fields["is_cooldown"] = *u.IsCooldown
	}

	res := database.Conn(ctx, r.db).
		Model(&staffDatamodel.Staff{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrStaffNotFound
	}
	return nil
}

func (r *StaffRepository) ListByRoleWithOpenWindow(ctx context.Context, roleID uuid.UUID) ([]*staff.Staff, error) {
	var rows []*staffDatamodel.Staff
	err := database.Conn(ctx, r.db).
		Where("role_id = ? AND last_request_date IS NOT NULL", roleID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*staff.Staff, len(rows))
	for i, row := range rows {
		out[i] = staff.FromDataModel(row)
	}
	return out, nil
}

func (r *StaffRepository) List(ctx context.Context) ([]*staff.Staff, error) {
	var rows []*staffDatamodel.StaffWithRole
	err := database.Conn(ctx, r.db).
		Table("staff").
		Select("staff.*, roles.name AS role_name").
		Joins("LEFT JOIN roles ON roles.id = staff.role_id").
		Order("staff.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*staff.Staff, len(rows))
	for i, row := range rows {
		out[i] = staff.FromDataModelWithRole(row)
	}
	return out, nil
}

func (r *StaffRepository) Create(ctx context.Context, s *staff.Staff) error {
	row := staff.ToDataModel(s)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	s.ID = row.ID
	s.CreatedAt = row.CreatedAt
	s.UpdatedAt = row.UpdatedAt
	return nil
}
