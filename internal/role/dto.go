package role

import (
	"bytes"
	"encoding/json"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/common/validation"
	"github.com/google/uuid"
)

// NullableInt tells an absent JSON field (Set false) apart from an explicit
// null (Set true, Value nil).
type NullableInt struct {
	Set   bool
	Value *int64
}

func (n *NullableInt) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n NullableInt) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

func Limit(v int64) NullableInt {
	return NullableInt{Set: true, Value: &v}
}

func Unlimited() NullableInt {
	return NullableInt{Set: true}
}

// UpdateRolePolicyDTO is a partial policy change. Absent fields keep their
// current value; uniform_limit null switches the role to unlimited.
type UpdateRolePolicyDTO struct {
	UniformLimit NullableInt `json:"uniform_limit"`
	CooldownDays *int64      `json:"cooldown_days"`
}

func (d UpdateRolePolicyDTO) Validate() error {
	if d.IsEmpty() {
		return internal.ErrInvalidRolePolicy.WithDetails(map[string]interface{}{
			"fields": []string{"uniform_limit", "cooldown_days"},
			"reason": "at least one field must be provided",
		})
	}

	v := validation.NewValidator()
	v.Field("uniform_limit", d.UniformLimit.Value).MinInt(0, internal.ErrCodeInvalidRolePolicy)
	v.Field("cooldown_days", d.CooldownDays).MinInt(0, internal.ErrCodeInvalidRolePolicy)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d UpdateRolePolicyDTO) IsEmpty() bool {
	return !d.UniformLimit.Set && d.CooldownDays == nil
}

// PolicyUpdate is the complete policy persisted for a role.
type PolicyUpdate struct {
	UniformLimit *int64
	CooldownDays int64
}

type RoleSettings struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	UniformLimit *int64    `json:"uniform_limit"`
	CooldownDays int64     `json:"cooldown_days"`
}

type RolesResponse struct {
	Roles []RoleSettings `json:"roles"`
}

type UpdateRolePolicyResponse struct {
	Role RoleSettings `json:"role"`
}
