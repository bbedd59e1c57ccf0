package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/database"
	roleDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/role"
	"github.com/frahmantamala/uniform-manager/internal/role"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*role.Role, error) {
	var row roleDatamodel.Role
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}
	return role.FromDataModel(&row), nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*role.Role, error) {
	var rows []*roleDatamodel.Role
	if err := database.Conn(ctx, r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*role.Role, len(rows))
	for i, row := range rows {
		out[i] = role.FromDataModel(row)
	}
	return out, nil
}

// UpdatePolicy writes both policy columns; a nil limit stores NULL.
func (r *RoleRepository) UpdatePolicy(ctx context.Context, id uuid.UUID, policy role.PolicyUpdate) error {
	res := database.Conn(ctx, r.db).
		Model(&roleDatamodel.Role{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"uniform_limit": policy.UniformLimit,
			"cooldown_days": policy.CooldownDays,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) GetOrCreateByName(ctx context.Context, name string) (*role.Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	conn := database.Conn(ctx, r.db)

	row := roleDatamodel.Role{Name: name}
	err := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var stored roleDatamodel.Role
	if err := conn.Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	return role.FromDataModel(&stored), nil
}

func (r *RoleRepository) Create(ctx context.Context, ro *role.Role) error {
	row := role.ToDataModel(ro)
	row.Name = strings.ToLower(strings.TrimSpace(row.Name))
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	ro.ID = row.ID
	ro.Name = row.Name
	ro.CreatedAt = row.CreatedAt
	ro.UpdatedAt = row.UpdatedAt
	return nil
}
