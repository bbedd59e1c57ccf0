package stock

import (
	"time"

	uniformDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/uniform"
	"github.com/google/uuid"
)

type UniformItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        *string   `json:"size,omitempty"`
	EAN         string    `json:"ean"`
	StockOnHand int64     `json:"stock_on_hand"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName renders "Polo Shirt (M)" when a size is known.
func (u *UniformItem) DisplayName() string {
	if u.Size == nil || *u.Size == "" {
		return u.Name
	}
	return u.Name + " (" + *u.Size + ")"
}

func (u *UniformItem) CanFulfil(quantity int64) bool {
	return quantity <= u.StockOnHand
}

func (u *UniformItem) IsLowStock(threshold int64) bool {
	return u.StockOnHand < threshold
}

func (u *UniformItem) ToOption(threshold int64) UniformItemOption {
	return UniformItemOption{
		ID:          u.ID,
		Name:        u.Name,
		Size:        u.Size,
		EAN:         u.EAN,
		StockOnHand: u.StockOnHand,
		LowStock:    u.IsLowStock(threshold),
	}
}

func ToDataModel(u *UniformItem) *uniformDatamodel.UniformItem {
	return &uniformDatamodel.UniformItem{
		ID:          u.ID,
		Name:        u.Name,
		Size:        u.Size,
		EAN:         u.EAN,
		StockOnHand: u.StockOnHand,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FromDataModel(u *uniformDatamodel.UniformItem) *UniformItem {
	return &UniformItem{
		ID:          u.ID,
		Name:        u.Name,
		Size:        u.Size,
		EAN:         u.EAN,
		StockOnHand: u.StockOnHand,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FromDataModelSlice(items []*uniformDatamodel.UniformItem) []*UniformItem {
	result := make([]*UniformItem, len(items))
	for i, u := range items {
		result[i] = FromDataModel(u)
	}
	return result
}
