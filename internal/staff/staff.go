package staff

import (
	"time"

	staffDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/staff"
	"github.com/google/uuid"
)

// Staff is a member whose uniform requests are governed by the policy of
// their role. IsCooldown implies LastRequestDate is set.
type Staff struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	RoleID          uuid.UUID  `json:"role_id"`
	RoleName        string     `json:"role,omitempty"`
	Store           string     `json:"store"`
	LastRequestDate *time.Time `json:"last_request_date"`
	IsCooldown      bool       `json:"is_cooldown"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasOpenWindow reports whether an eligibility window has been started.
func (s *Staff) HasOpenWindow() bool {
	return s.LastRequestDate != nil
}

// CooldownEndsAt is last_request_date + cooldownDays whole days. The zero
// time is returned when no window is open.
func (s *Staff) CooldownEndsAt(cooldownDays int64) time.Time {
	if s.LastRequestDate == nil {
		return time.Time{}
	}
	return s.LastRequestDate.Add(time.Duration(cooldownDays) * 24 * time.Hour)
}

// Apply copies the set fields of u onto s.
func (s *Staff) Apply(u Updates) {
	if u.ClearLastRequestDate {
		s.LastRequestDate = nil
	} else if u.LastRequestDate != nil {
		t := *u.LastRequestDate
		s.LastRequestDate = &t
	}
	if u.IsCooldown != nil {
		s.IsCooldown = *u.IsCooldown
	}
}

// Updates is a partial write of the cooldown fields. ClearLastRequestDate
// wins over LastRequestDate.
type Updates struct {
	LastRequestDate      *time.Time
	ClearLastRequestDate bool
	IsCooldown           *bool
}

func (u Updates) IsEmpty() bool {
	return u.LastRequestDate == nil && !u.ClearLastRequestDate && u.IsCooldown == nil
}

// ExpireCooldown clears the flag and closes the window.
func ExpireCooldown() Updates {
	off := false
	return Updates{ClearLastRequestDate: true, IsCooldown: &off}
}

func SetCooldown(on bool) Updates {
	return Updates{IsCooldown: &on}
}

func ToDataModel(s *Staff) *staffDatamodel.Staff {
	return &staffDatamodel.Staff{
		ID:              s.ID,
		Name:            s.Name,
		RoleID:          s.RoleID,
		Store:           s.Store,
		LastRequestDate: s.LastRequestDate,
		IsCooldown:      s.IsCooldown,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func FromDataModel(s *staffDatamodel.Staff) *Staff {
	return &Staff{
		ID:              s.ID,
		Name:            s.Name,
		RoleID:          s.RoleID,
		Store:           s.Store,
		LastRequestDate: toUTC(s.LastRequestDate),
		IsCooldown:      s.IsCooldown,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func FromDataModelWithRole(s *staffDatamodel.StaffWithRole) *Staff {
	out := FromDataModel(&s.Staff)
	out.RoleName = s.RoleName
	return out
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
