package points

import (
	"context"
	"fmt"

	"github.com/angelmondragon/finpilot-backend/internal/repo"
	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads the points_totals view and calls award_points.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to points operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindTotal returns the total for (orgID, userID). A missing row is found=false.
func (r *Repository) FindTotal(ctx context.Context, orgID, userID uuid.UUID) (int64, bool, error) {
	var row models.PointsTotal
	found, err := r.FindOne(ctx, &row, "org_id = ? AND user_id = ?", orgID, userID)
	if err != nil || !found {
		return 0, found, err
	}
	return row.TotalPoints, true, nil
}

// ListByOrg returns every member total of an organization, highest first.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.PointsTotal, error) {
	var rows []models.PointsTotal
	if err := r.DB(ctx).
		Where("org_id = ?", orgID).
		Order("total_points DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AwardPoints calls the award_points SQL function. It returns 0 when the
// function deduplicated the event.
func (r *Repository) AwardPoints(ctx context.Context, in AwardInput) (int, error) {
	var awarded int
	row := r.DB(ctx).
		Raw("SELECT award_points(?, ?, ?, ?, ?)", in.OrgID, in.UserID, string(in.EventKey), in.RefTable, in.RefID).
		Row()
	if err := row.Scan(&awarded); err != nil {
		return 0, fmt.Errorf("award_points: %w", err)
	}
	return awarded, nil
}
