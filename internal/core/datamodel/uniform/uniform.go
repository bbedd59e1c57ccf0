package uniform

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UniformItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Size        *string   `gorm:"column:size"`
	EAN         string    `gorm:"column:ean;not null;uniqueIndex"`
	StockOnHand int64     `gorm:"column:stock_on_hand;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UniformItem) TableName() string {
	return "uniform_items"
}

func (u *UniformItem) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
