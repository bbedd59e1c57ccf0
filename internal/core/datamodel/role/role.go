package role

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the persisted uniform policy of a staff role. A nil UniformLimit means unlimited.
type Role struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;not null;uniqueIndex"`
	UniformLimit *int64    `gorm:"column:uniform_limit"`
	CooldownDays int64     `gorm:"column:cooldown_days;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}

func (r *Role) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
