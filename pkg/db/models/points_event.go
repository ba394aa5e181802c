package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsEvent is one row of the append-only award ledger behind points_totals.
type PointsEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrgID     uuid.UUID `gorm:"column:org_id;type:uuid;not null;index:idx_points_events_identity"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_points_events_identity"`
	EventKey  string    `gorm:"column:event_key;not null"`
	RefTable  *string   `gorm:"column:ref_table"`
	RefID     *string   `gorm:"column:ref_id"`
	Points    int       `gorm:"column:points;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PointsEvent) TableName() string { return "points_events" }

func (e *PointsEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// PointsTotal maps the read-only points_totals view.
type PointsTotal struct {
	OrgID       uuid.UUID `gorm:"column:org_id;type:uuid"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid"`
	TotalPoints int64     `gorm:"column:total_points"`
}

func (PointsTotal) TableName() string { return "points_totals" }

// PointsTotalsViewSQL is the portable definition of the points_totals view.
const PointsTotalsViewSQL = `CREATE VIEW points_totals AS
SELECT org_id, user_id, SUM(points) AS total_points
FROM points_events
GROUP BY org_id, user_id`
