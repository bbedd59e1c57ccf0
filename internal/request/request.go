package request

import (
	"strings"
	"time"

	requestDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/request"
	"github.com/google/uuid"
)

const (
	StatusRequested  = "REQUESTED"
	StatusDispatched = "DISPATCHED"
	StatusArrived    = "ARRIVED"
	StatusCollected  = "COLLECTED"
)

// Statuses lists every recognized status. Transitions between them are not ordered.
var Statuses = []string{StatusRequested, StatusDispatched, StatusArrived, StatusCollected}

const trackingPrefix = "UR-"

// NewTrackingNumber returns "UR-" followed by 12 upper-case hex characters.
func NewTrackingNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return trackingPrefix + strings.ToUpper(hex[:12])
}

type Request struct {
	ID             uuid.UUID
	TrackingNumber string
	StaffID        uuid.UUID
	Status         string
	Reason         *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []Item
}

// Item is one requested line.
type Item struct {
	UniformItemID uuid.UUID `json:"uniform_item_id"`
	Quantity      int64     `json:"quantity"`
}

func TotalQuantity(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

func (r *Request) TotalQuantity() int64 {
	return TotalQuantity(r.Items)
}

// ToDataModel copies the header's staff and timestamp onto every item row.
func ToDataModel(r *Request) *requestDatamodel.Request {
	row := &requestDatamodel.Request{
		ID:             r.ID,
		TrackingNumber: r.TrackingNumber,
		StaffID:        r.StaffID,
		Status:         r.Status,
		Reason:         r.Reason,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Items:          make([]requestDatamodel.RequestItem, len(r.Items)),
	}
	for i, it := range r.Items {
		row.Items[i] = requestDatamodel.RequestItem{
			StaffID:       r.StaffID,
			UniformItemID: it.UniformItemID,
			Quantity:      it.Quantity,
			CreatedAt:     r.CreatedAt,
		}
	}
	return row
}

// Record is the joined read model of a request used to build views.
type Record struct {
	ID             uuid.UUID
	TrackingNumber string
	Status         string
	Reason         *string
	CreatedAt      time.Time
	StaffID        uuid.UUID
	StaffName      string
	RoleName       string
	Store          string
	IsCooldown     bool
	Items          []RecordItem
}

type RecordItem struct {
	UniformItemID uuid.UUID
	Name          string
	Size          *string
	Quantity      int64
	StockOnHand   int64
}
