package staff

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Staff struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name            string     `gorm:"column:name;not null"`
	RoleID          uuid.UUID  `gorm:"column:role_id;type:uuid;not null;index"`
	Store           string     `gorm:"column:store"`
	LastRequestDate *time.Time `gorm:"column:last_request_date"`
	IsCooldown      bool       `gorm:"column:is_cooldown;not null;default:false"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Staff) TableName() string {
	return "staff"
}

func (s *Staff) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StaffWithRole is the read shape used by listings.
type StaffWithRole struct {
	Staff
	RoleName string `gorm:"column:role_name"`
}
