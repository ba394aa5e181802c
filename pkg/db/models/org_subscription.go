package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/finpilot-backend/pkg/enums"
)

// OrgSubscription persists billing/access state per organization.
// PeriodEnd is only meaningful while Status is trial.
type OrgSubscription struct {
	OrgID     uuid.UUID                `gorm:"column:org_id;type:uuid;primaryKey"`
	Status    enums.SubscriptionStatus `gorm:"column:status;type:text;not null"`
	PeriodEnd *time.Time               `gorm:"column:period_end"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (OrgSubscription) TableName() string { return "org_subscriptions" }
