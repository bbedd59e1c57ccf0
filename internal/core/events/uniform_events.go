package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestCreated       = "request.created"
	EventTypeRequestStatusChanged = "request.status_changed"
	EventTypeRolePolicyUpdated    = "role.policy_updated"
	EventTypeStockLow             = "stock.low"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type RequestCreatedEvent struct {
	BaseEvent
	TrackingNumber string `json:"tracking_number"`
	StaffID        string `json:"staff_id"`
	TotalQuantity  int64  `json:"total_quantity"`
	CooldownOpened bool   `json:"cooldown_opened"`
}

func NewRequestCreatedEvent(trackingNumber, staffID string, totalQuantity int64, cooldownOpened bool) *RequestCreatedEvent {
	return &RequestCreatedEvent{
		BaseEvent: newBase(EventTypeRequestCreated, map[string]interface{}{
			"tracking_number": trackingNumber,
			"staff_id":        staffID,
			"total_quantity":  totalQuantity,
			"cooldown_opened": cooldownOpened,
		}),
		TrackingNumber: trackingNumber,
		StaffID:        staffID,
		TotalQuantity:  totalQuantity,
		CooldownOpened: cooldownOpened,
	}
}

type RequestStatusChangedEvent struct {
	BaseEvent
	TrackingNumber string `json:"tracking_number"`
	From           string `json:"from"`
	To             string `json:"to"`
}

func NewRequestStatusChangedEvent(trackingNumber, from, to string) *RequestStatusChangedEvent {
	return &RequestStatusChangedEvent{
		BaseEvent: newBase(EventTypeRequestStatusChanged, map[string]interface{}{
			"tracking_number": trackingNumber,
			"from":            from,
			"to":              to,
		}),
		TrackingNumber: trackingNumber,
		From:           from,
		To:             to,
	}
}

type RolePolicyUpdatedEvent struct {
	BaseEvent
	RoleID          string `json:"role_id"`
	UniformLimit    *int64 `json:"uniform_limit"`
	CooldownDays    int64  `json:"cooldown_days"`
	ReconciledStaff int    `json:"reconciled_staff"`
}

func NewRolePolicyUpdatedEvent(roleID string, uniformLimit *int64, cooldownDays int64, reconciled int) *RolePolicyUpdatedEvent {
	return &RolePolicyUpdatedEvent{
		BaseEvent: newBase(EventTypeRolePolicyUpdated, map[string]interface{}{
			"role_id":          roleID,
			"uniform_limit":    uniformLimit,
			"cooldown_days":    cooldownDays,
			"reconciled_staff": reconciled,
		}),
		RoleID:          roleID,
		UniformLimit:    uniformLimit,
		CooldownDays:    cooldownDays,
		ReconciledStaff: reconciled,
	}
}

type StockLowEvent struct {
	BaseEvent
	UniformItemID string `json:"uniform_item_id"`
	Name          string `json:"name"`
	Remaining     int64  `json:"remaining"`
	Threshold     int64  `json:"threshold"`
}

func NewStockLowEvent(itemID, name string, remaining, threshold int64) *StockLowEvent {
	return &StockLowEvent{
		BaseEvent: newBase(EventTypeStockLow, map[string]interface{}{
			"uniform_item_id": itemID,
			"name":            name,
			"remaining":       remaining,
			"threshold":       threshold,
		}),
		UniformItemID: itemID,
		Name:          name,
		Remaining:     remaining,
		Threshold:     threshold,
	}
}
