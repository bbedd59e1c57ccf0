package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/common/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxReasonLength = 500
	MaxListLimit    = 200
)

// ItemDTO keeps the quantity as a decimal so 2.5 is rejected rather than truncated.
type ItemDTO struct {
	UniformItemID uuid.UUID       `json:"uniform_item_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
}

type CreateRequestDTO struct {
	StaffID uuid.UUID `json:"staff_id" validate:"required"`
	Items   []ItemDTO `json:"items" validate:"required,min=1,dive"`
	Reason  *string   `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func (d CreateRequestDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("staff_id", d.StaffID).Required()
	v.Field("items", len(d.Items)).MinItems(1)
	for i, it := range d.Items {
		v.Field(fmt.Sprintf("items[%d].uniform_item_id", i), it.UniformItemID).Required()
		v.Field(fmt.Sprintf("items[%d].quantity", i), it.Quantity).PositiveInteger()
	}
	v.Field("reason", d.Reason).MaxLength(MaxReasonLength)

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ToItems assumes Validate passed.
func (d CreateRequestDTO) ToItems() []Item {
	items := make([]Item, len(d.Items))
	for i, it := range d.Items {
		items[i] = Item{UniformItemID: it.UniformItemID, Quantity: it.Quantity.IntPart()}
	}
	return items
}

// NormalizedReason trims the reason and drops it when blank.
func (d CreateRequestDTO) NormalizedReason() *string {
	if d.Reason == nil {
		return nil
	}
	r := strings.TrimSpace(*d.Reason)
	if r == "" {
		return nil
	}
	return &r
}

type ChangeStatusDTO struct {
	Status string `json:"status" validate:"required"`
}

type ListFilter struct {
	Status  string
	StaffID *uuid.UUID
	Limit   int
	Offset  int
}

// Normalize applies the default limit, caps it and validates the status filter.
func (f ListFilter) Normalize(defaultLimit int) (ListFilter, error) {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Status = strings.ToUpper(strings.TrimSpace(f.Status))
	if f.Status != "" {
		if appErr := validation.ValidateRequestStatus(f.Status, Statuses); appErr != nil {
			return f, appErr
		}
	}
	return f, nil
}

type StaffSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Store      string    `json:"store"`
	OnCooldown bool      `json:"on_cooldown"`
}

type ItemView struct {
	UniformItemID uuid.UUID `json:"uniform_item_id"`
	Name          string    `json:"name"`
	Size          *string   `json:"size"`
	Quantity      int64     `json:"quantity"`
	LowStock      bool      `json:"low_stock"`
}

// RequestView is the formatted request returned by every workflow operation.
type RequestView struct {
	TrackingNumber string       `json:"tracking_number"`
	Status         string       `json:"status"`
	Reason         *string      `json:"reason"`
	CreatedAt      time.Time    `json:"created_at"`
	Staff          StaffSummary `json:"staff"`
	Items          []ItemView   `json:"items"`
}

type RequestResponse struct {
	Request *RequestView `json:"request"`
}

type RequestsResponse struct {
	Requests []*RequestView `json:"requests"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
}

func ToView(rec *Record, lowStockThreshold int64) *RequestView {
	view := &RequestView{
		TrackingNumber: rec.TrackingNumber,
		Status:         rec.Status,
		Reason:         rec.Reason,
		CreatedAt:      rec.CreatedAt.UTC(),
		Staff: StaffSummary{
			ID:         rec.StaffID,
			Name:       rec.StaffName,
			Role:       rec.RoleName,
			Store:      rec.Store,
			OnCooldown: rec.IsCooldown,
		},
		Items: make([]ItemView, len(rec.Items)),
	}
	for i, it := range rec.Items {
		view.Items[i] = ItemView{
			UniformItemID: it.UniformItemID,
			Name:          it.Name,
			Size:          it.Size,
			Quantity:      it.Quantity,
			LowStock:      it.StockOnHand < lowStockThreshold,
		}
	}
	return view
}

func requireTrackingNumber(trackingNumber string) error {
	if strings.TrimSpace(trackingNumber) == "" {
		return internal.NewValidationFieldError("tracking_number", "tracking_number is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
