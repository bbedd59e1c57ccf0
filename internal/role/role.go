package role

import (
	"time"

	roleDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/role"
	"github.com/google/uuid"
)

// Role carries the uniform policy applied to every staff member holding it.
// A nil UniformLimit means the role may request without limit.
type Role struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	UniformLimit *int64    `json:"uniform_limit"`
	CooldownDays int64     `json:"cooldown_days"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *Role) HasLimit() bool {
	return r.UniformLimit != nil
}

// Exceeds reports whether requesting another requested units on top of
// previous would go past the limit.
func (r *Role) Exceeds(previous, requested int64) bool {
	if r.UniformLimit == nil {
		return false
	}
	return previous+requested > *r.UniformLimit
}

// Remaining is the quantity still allowed in the current window, never negative.
// It is only meaningful when the role has a limit.
func (r *Role) Remaining(previous int64) int64 {
	if r.UniformLimit == nil {
		return 0
	}
	if left := *r.UniformLimit - previous; left > 0 {
		return left
	}
	return 0
}

// LimitReached reports whether cumulative usage puts a holder into cooldown.
func LimitReached(limit *int64, cumulative int64) bool {
	return limit != nil && cumulative >= *limit
}

func (r *Role) ToSettingsRow() RoleSettings {
	return RoleSettings{
		ID:           r.ID,
		Name:         r.Name,
		UniformLimit: r.UniformLimit,
		CooldownDays: r.CooldownDays,
	}
}

func ToDataModel(r *Role) *roleDatamodel.Role {
	return &roleDatamodel.Role{
		ID:           r.ID,
		Name:         r.Name,
		UniformLimit: r.UniformLimit,
		CooldownDays: r.CooldownDays,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func FromDataModel(r *roleDatamodel.Role) *Role {
	return &Role{
		ID:           r.ID,
		Name:         r.Name,
		UniformLimit: r.UniformLimit,
		CooldownDays: r.CooldownDays,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
