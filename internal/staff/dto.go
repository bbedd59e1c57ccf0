package staff

import (
	"time"

	"github.com/google/uuid"
)

type StaffOption struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Role            string     `json:"role"`
	Store           string     `json:"store"`
	LastRequestDate *time.Time `json:"last_request_date"`
	IsCooldown      bool       `json:"is_cooldown"`
}

type StaffResponse struct {
	Staff []StaffOption `json:"staff"`
}

func (s *Staff) ToOption() StaffOption {
	return StaffOption{
		ID:              s.ID,
		Name:            s.Name,
		Role:            s.RoleName,
		Store:           s.Store,
		LastRequestDate: s.LastRequestDate,
		IsCooldown:      s.IsCooldown,
	}
}
