package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization is the employer that buys the course for its employees.
type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Organization) TableName() string { return "organizations" }

func (o *Organization) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
