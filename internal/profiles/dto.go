package profiles

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
)

// ProfileDTO is the transport shape of a profile.
type ProfileDTO struct {
	ID       uuid.UUID  `json:"id"`
	OrgID    *uuid.UUID `json:"org_id,omitempty"`
	Role     enums.Role `json:"role"`
	FullName string     `json:"full_name"`
	Email    string     `json:"email"`
}

// MemberDTO is a profile with its points total, as listed to org admins.
type MemberDTO struct {
	ProfileDTO
	TotalPoints int64 `json:"total_points"`
}

// CreateProfileDTO holds the data required to persist a new profile.
type CreateProfileDTO struct {
	ID       uuid.UUID
	OrgID    *uuid.UUID
	Role     enums.Role
	FullName string
	Email    string
}

func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:       p.ID,
		OrgID:    p.OrgID,
		Role:     p.Role,
		FullName: p.FullName,
		Email:    p.Email,
	}
}

func (d CreateProfileDTO) ToModel() *models.Profile {
	return &models.Profile{
		ID:       d.ID,
		OrgID:    d.OrgID,
		Role:     d.Role,
		FullName: d.FullName,
		Email:    d.Email,
	}
}
