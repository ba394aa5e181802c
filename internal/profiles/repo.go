package profiles

import (
	"context"
	"fmt"

	"github.com/angelmondragon/finpilot-backend/internal/repo"
	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes profile persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new profile and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateProfileDTO) (*models.Profile, error) {
	if !dto.Role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", dto.Role)
	}
	profile := dto.ToModel()
	if err := r.DB(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByID loads a profile by its user id. A missing profile is found=false.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, bool, error) {
	var profile models.Profile
	found, err := r.FindOne(ctx, &profile, "id = ?", id)
	if err != nil || !found {
		return nil, found, err
	}
	return &profile, true, nil
}

// ListByOrg returns the profiles of an organization ordered by name.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Profile, error) {
	var out []models.Profile
	if err := r.DB(ctx).
		Where("org_id = ?", orgID).
		Order("full_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
