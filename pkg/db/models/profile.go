package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/finpilot-backend/pkg/enums"
)

// Profile holds identity and authorization attributes of a signed-in user.
// OrgID is nil only for super admins acting outside any organization.
type Profile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrgID     *uuid.UUID `gorm:"column:org_id;type:uuid;index"`
	Role      enums.Role `gorm:"column:role;type:text;not null"`
	FullName  string     `gorm:"column:full_name;not null;default:''"`
	Email     string     `gorm:"column:email;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
