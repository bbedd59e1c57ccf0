package stock

import "github.com/google/uuid"

// UniformItemOption is the listing shape consumed by the dashboard.
type UniformItemOption struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        *string   `json:"size"`
	EAN         string    `json:"ean"`
	StockOnHand int64     `json:"stock_on_hand"`
	LowStock    bool      `json:"low_stock"`
}

type UniformsResponse struct {
	Uniforms []UniformItemOption `json:"uniforms"`
}
