package subscriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/finpilot-backend/internal/repo"
	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrganizationRow joins an organization with its subscription, if any.
type OrganizationRow struct {
	OrgID     uuid.UUID `gorm:"column:org_id"`
	Name      string    `gorm:"column:name"`
	Status    *string   `gorm:"column:status"`
	PeriodEnd *time.Time
}

// Repository handles org subscription persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to subscription operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByOrgID loads the subscription row for an organization.
func (r *Repository) FindByOrgID(ctx context.Context, orgID uuid.UUID) (*models.OrgSubscription, error) {
	var sub models.OrgSubscription
	if err := r.DB(ctx).Where("org_id = ?", orgID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert writes the subscription state for its organization.
func (r *Repository) Upsert(ctx context.Context, sub *models.OrgSubscription) error {
	if sub == nil {
		return fmt.Errorf("subscription is required")
	}
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "period_end", "updated_at"}),
		}).
		Create(sub).Error
}

// ListOrganizations returns every organization with its subscription columns,
// ordered by name.
func (r *Repository) ListOrganizations(ctx context.Context) ([]OrganizationRow, error) {
	var rows []OrganizationRow
	err := r.DB(ctx).
		Table("organizations AS o").
		Select("o.id AS org_id, o.name AS name, s.status AS status, s.period_end AS period_end").
		Joins("LEFT JOIN org_subscriptions AS s ON s.org_id = o.id").
		Order("o.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
