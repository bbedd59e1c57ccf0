package request

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Request struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	TrackingNumber string        `gorm:"column:tracking_number;not null;uniqueIndex"`
	StaffID        uuid.UUID     `gorm:"column:staff_id;type:uuid;not null;index"`
	Status         string        `gorm:"column:status;not null;default:REQUESTED"`
	Reason         *string       `gorm:"column:reason"`
	CreatedAt      time.Time     `gorm:"column:created_at"`
	UpdatedAt      time.Time     `gorm:"column:updated_at"`
	Items          []RequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

func (Request) TableName() string {
	return "requests"
}

func (r *Request) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RequestItem carries the parent's staff_id and created_at so quota windows
// can be summed from this table alone.
type RequestItem struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	RequestID     uuid.UUID `gorm:"column:request_id;type:uuid;not null;index"`
	StaffID       uuid.UUID `gorm:"column:staff_id;type:uuid;not null;index:idx_request_items_staff_created"`
	UniformItemID uuid.UUID `gorm:"column:uniform_item_id;type:uuid;not null"`
	Quantity      int64     `gorm:"column:quantity;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;index:idx_request_items_staff_created"`
}

func (RequestItem) TableName() string {
	return "request_items"
}

func (i *RequestItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
